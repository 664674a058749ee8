package annotation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// DefaultExtension is the file suffix of VOC annotation documents.
const DefaultExtension = ".xml"

// Config holds configuration for the Loader.
type Config struct {
	// Extension selects annotation files by suffix, compared case-insensitively.
	Extension string
	// Logger receives one entry per skipped document or object. Nil discards.
	Logger logrus.FieldLogger
}

// Loader reads annotation directories into Stores.
type Loader struct {
	config Config
}

// NewLoader creates a Loader with default configuration.
func NewLoader() *Loader {
	return NewLoaderWithConfig(Config{})
}

// NewLoaderWithConfig creates a Loader with custom configuration.
func NewLoaderWithConfig(config Config) *Loader {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	config.Extension = strings.ToLower(config.Extension)
	if config.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		config.Logger = discard
	}
	return &Loader{config: config}
}

// Load reads dir with a default Loader.
func Load(dir string) (*Store, []Failure, error) {
	return NewLoader().Load(dir)
}

// Load parses every annotation document in dir. Files are visited in name
// order. The returned failures list every document or entry that was
// skipped; the only error returned is for a directory that is missing or
// cannot be listed, in which case no store is returned.
func (l *Loader) Load(dir string) (*Store, []Failure, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrDirectoryMissing, dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list annotation directory: %w", err)
	}

	var (
		records  []Record
		failures []Failure
		files    int
	)
	for _, entry := range entries {
		if entry.IsDir() || !l.isAnnotationFile(entry.Name()) {
			continue
		}
		files++
		recs, fails := l.loadFile(filepath.Join(dir, entry.Name()))
		records = append(records, recs...)
		failures = append(failures, fails...)
	}

	l.config.Logger.WithFields(logrus.Fields{
		"dir":      dir,
		"files":    files,
		"records":  len(records),
		"failures": len(failures),
	}).Debug("loaded annotations")

	return newStore(records, files), failures, nil
}

func (l *Loader) isAnnotationFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), l.config.Extension)
}

// loadFile decodes one document. The file is closed before returning,
// whether or not decoding succeeded.
func (l *Loader) loadFile(path string) ([]Record, []Failure) {
	base := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, []Failure{l.fail(Failure{Kind: MalformedDocument, File: base, Entry: -1, Err: err})}
	}
	defer f.Close()

	doc, err := decodeDocument(f)
	if err != nil {
		return nil, []Failure{l.fail(Failure{Kind: MalformedDocument, File: base, Entry: -1, Err: err})}
	}
	if doc.Filename == nil || strings.TrimSpace(*doc.Filename) == "" {
		return nil, []Failure{l.fail(Failure{
			Kind:  MalformedDocument,
			File:  base,
			Entry: -1,
			Field: "filename",
			Err:   ErrMissingField,
		})}
	}

	var failures []Failure
	imageID := strings.TrimSpace(*doc.Filename)

	width, height, fail := doc.size()
	if fail != nil {
		fail.File = base
		failures = append(failures, l.fail(*fail))
	}

	records := make([]Record, 0, len(doc.Objects))
	for i, obj := range doc.Objects {
		rec, fail := obj.record()
		if fail != nil {
			fail.File = base
			fail.Entry = i
			failures = append(failures, l.fail(*fail))
			continue
		}
		rec.ImageID = imageID
		rec.Width = width
		rec.Height = height
		rec.Source = base
		records = append(records, rec)
	}
	return records, failures
}

func (l *Loader) fail(f Failure) Failure {
	entry := l.config.Logger.WithFields(logrus.Fields{
		"file":  f.File,
		"kind":  f.Kind.String(),
		"field": f.Field,
	})
	if f.Err != nil {
		entry = entry.WithError(f.Err)
	}
	if f.Kind == MalformedDocument {
		entry.Warn("skipped annotation document")
	} else {
		entry.WithField("entry", f.Entry).Debug("skipped annotation entry")
	}
	return f
}

type xmlDocument struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename *string     `xml:"filename"`
	Size     *xmlSize    `xml:"size"`
	Objects  []xmlObject `xml:"object"`
}

type xmlSize struct {
	Width  *string `xml:"width"`
	Height *string `xml:"height"`
}

type xmlObject struct {
	Name      *string `xml:"name"`
	BndBox    *xmlBox `xml:"bndbox"`
	Difficult *string `xml:"difficult"`
	Truncated *string `xml:"truncated"`
	Occluded  *string `xml:"occluded"`
}

type xmlBox struct {
	XMin *string `xml:"xmin"`
	YMin *string `xml:"ymin"`
	XMax *string `xml:"xmax"`
	YMax *string `xml:"ymax"`
}

// decodeDocument accepts any encoding the XML declaration names, e.g.
// ISO-8859-1 in older exports.
func decodeDocument(r io.Reader) (*xmlDocument, error) {
	var doc xmlDocument
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("failed to decode annotation: %w", err)
	}
	return &doc, nil
}

// size returns the declared image size, or zeros when the block is absent.
// A present but unusable size is dropped and reported.
func (d *xmlDocument) size() (int, int, *Failure) {
	if d.Size == nil || (d.Size.Width == nil && d.Size.Height == nil) {
		return 0, 0, nil
	}
	sizeFail := func(err error) *Failure {
		return &Failure{Kind: MalformedEntry, Entry: -1, Field: "size", Err: err}
	}
	if d.Size.Width == nil || d.Size.Height == nil {
		return 0, 0, sizeFail(ErrMissingField)
	}
	w, err := ParseCoordinate(*d.Size.Width)
	if err != nil {
		return 0, 0, sizeFail(err)
	}
	h, err := ParseCoordinate(*d.Size.Height)
	if err != nil {
		return 0, 0, sizeFail(err)
	}
	// VOC files with missing image data carry <width>0</width>.
	if w <= 0 || h <= 0 {
		return 0, 0, sizeFail(fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h))
	}
	return w, h, nil
}

func (o xmlObject) record() (Record, *Failure) {
	if o.Name == nil || strings.TrimSpace(*o.Name) == "" {
		return Record{}, &Failure{Kind: MalformedEntry, Field: "name", Err: ErrMissingField}
	}
	if o.BndBox == nil {
		return Record{}, &Failure{Kind: MalformedEntry, Field: "bndbox", Err: ErrMissingField}
	}

	rec := Record{Label: strings.TrimSpace(*o.Name)}
	coords := [...]struct {
		name string
		raw  *string
		dst  *int
	}{
		{"xmin", o.BndBox.XMin, &rec.XMin},
		{"ymin", o.BndBox.YMin, &rec.YMin},
		{"xmax", o.BndBox.XMax, &rec.XMax},
		{"ymax", o.BndBox.YMax, &rec.YMax},
	}

	for _, f := range coords {
		if f.raw == nil {
			return Record{}, &Failure{Kind: MalformedEntry, Field: f.name, Err: ErrMissingField}
		}
		v, err := ParseCoordinate(*f.raw)
		if err != nil {
			return Record{}, &Failure{Kind: NumericParseFailure, Field: f.name, Err: err}
		}
		*f.dst = v
	}
	if rec.XMin >= rec.XMax || rec.YMin >= rec.YMax {
		return Record{}, &Failure{
			Kind:  MalformedEntry,
			Field: "bndbox",
			Err:   fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrDegenerateBox, rec.XMin, rec.YMin, rec.XMax, rec.YMax),
		}
	}

	rec.Difficult = parseFlag(o.Difficult)
	rec.Truncated = parseFlag(o.Truncated)
	rec.Occluded = parseFlag(o.Occluded)
	return rec, nil
}
