// Package vocinspector loads Pascal VOC annotations and renders them for
// visual inspection.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//		"os"
//
//		vocinspector "github.com/menta2k/voc-inspector"
//		"github.com/menta2k/voc-inspector/pkg/dataset"
//	)
//
//	func main() {
//		layout, err := dataset.Discover([]string{os.Getenv("VOC_ROOT")}, "", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//		inspector := vocinspector.New(layout)
//
//		store, failures, err := inspector.Load()
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%d records, %d skipped", store.Len(), len(failures))
//
//		vis, paths, err := inspector.ProcessImage(store, "2007_000027.jpg", vocinspector.SaveOptions{Dir: "out", Format: "png"})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("%dx%d %s, wrote %v", vis.Info.Width, vis.Info.Height, vis.Info.Mode, paths)
//	}
//
// The package wires together four components:
//
// 1. Annotation (pkg/annotation): parses XML documents into a queryable store
// 2. Dataset (pkg/dataset): resolves the Annotations/ and JPEGImages/ layout
// 3. Render (pkg/render): draws boxes and labels, crops objects, saves images
// 4. Report (pkg/report): class frequency and dataset statistics
//
// The annotation store never touches images and the renderer never parses
// annotations; this package is the only place the two meet.
package vocinspector

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/voc-inspector/internal/utils"
	"github.com/menta2k/voc-inspector/pkg/annotation"
	"github.com/menta2k/voc-inspector/pkg/dataset"
	"github.com/menta2k/voc-inspector/pkg/render"
	"github.com/menta2k/voc-inspector/pkg/report"
)

// Version of the voc-inspector library
const Version = "1.0.0"

// ErrImageNotFound is returned when an annotated image has no file in the images directory.
var ErrImageNotFound = errors.New("image not found")

// Inspector provides a high-level interface over one dataset layout
type Inspector struct {
	layout   dataset.Layout
	loader   *annotation.Loader
	renderer *render.Renderer
	logger   logrus.FieldLogger
}

// New creates an Inspector with default configuration
func New(layout dataset.Layout) *Inspector {
	return NewWithConfig(layout, annotation.Config{}, render.DefaultConfig())
}

// NewWithConfig creates an Inspector with custom configuration. The loader
// logger, when set, is also used for rendering warnings.
func NewWithConfig(layout dataset.Layout, loaderConfig annotation.Config, renderConfig render.Config) *Inspector {
	logger := loaderConfig.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Inspector{
		layout:   layout,
		loader:   annotation.NewLoaderWithConfig(loaderConfig),
		renderer: render.NewWithConfig(renderConfig),
		logger:   logger,
	}
}

// Layout returns the dataset layout the inspector reads from
func (in *Inspector) Layout() dataset.Layout {
	return in.layout
}

// Load parses the annotations directory of the layout
func (in *Inspector) Load() (*annotation.Store, []annotation.Failure, error) {
	return in.loader.Load(in.layout.Annotations())
}

// Summarize computes dataset statistics
func (in *Inspector) Summarize(store *annotation.Store, failures []annotation.Failure, topN int) report.Summary {
	return report.Summarize(store, failures, topN)
}

// Sample picks an image id at random. Every record is equally likely, so
// images with more objects are picked more often. It returns false for an
// empty store.
func (in *Inspector) Sample(store *annotation.Store, rng *rand.Rand) (string, bool) {
	records := store.Records()
	if len(records) == 0 {
		return "", false
	}
	return records[rng.IntN(len(records))].ImageID, true
}

// Visualization is an image with its records drawn on it
type Visualization struct {
	ImageID string
	Path    string
	Info    render.ImageInfo
	Records []annotation.Record
	Image   *image.NRGBA
	// Source is the undecorated image, kept for cropping.
	Source image.Image
}

// Visualize loads the image behind imageID and draws its records. An image
// with no records is still returned, undecorated.
func (in *Inspector) Visualize(store *annotation.Store, imageID string) (*Visualization, error) {
	path := in.layout.ImageFile(imageID)
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}

	img, err := in.renderer.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	records := store.RecordsFor(imageID)
	for _, r := range records {
		if !render.SizeMatches(img, r) {
			b := img.Bounds()
			in.logger.WithFields(logrus.Fields{
				"image":    imageID,
				"declared": fmt.Sprintf("%dx%d", r.Width, r.Height),
				"actual":   fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			}).Warn("annotation size does not match image")
			break
		}
	}

	return &Visualization{
		ImageID: imageID,
		Path:    path,
		Info:    render.Info(img),
		Records: records,
		Image:   in.renderer.DrawAnnotations(img, records),
		Source:  img,
	}, nil
}

// DefaultSuffix is appended to the image name of the saved overlay.
const DefaultSuffix = "_boxes"

// SaveOptions controls where ProcessImage writes its files
type SaveOptions struct {
	Dir    string
	Format string
	// Suffix is appended to the overlay file name, DefaultSuffix when empty.
	Suffix string
	// Crops also writes one file per object.
	Crops bool
}

// ProcessImage is a convenience function that visualizes an image and saves
// the overlay, plus one file per object when opts.Crops is set. It returns
// the visualization and the written paths.
func (in *Inspector) ProcessImage(store *annotation.Store, imageID string, opts SaveOptions) (*Visualization, []string, error) {
	vis, err := in.Visualize(store, imageID)
	if err != nil {
		return nil, nil, err
	}
	if err := utils.EnsureDir(opts.Dir); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}

	var written []string
	overlayPath := utils.GenerateOutputFilename(imageID, opts.Dir, opts.Suffix, opts.Format)
	if err := in.renderer.SaveImage(vis.Image, overlayPath); err != nil {
		return nil, nil, fmt.Errorf("failed to save overlay: %w", err)
	}
	written = append(written, overlayPath)

	if !opts.Crops {
		return vis, written, nil
	}

	objects, errs := in.renderer.CropObjects(vis.Source, vis.Records)
	for _, err := range errs {
		in.logger.WithError(err).Warn("skipped object crop")
	}
	for i, c := range objects {
		suffix := fmt.Sprintf("_%02d_%s", i, utils.SanitizeFilename(c.Record.Label))
		cropPath := utils.GenerateOutputFilename(imageID, opts.Dir, suffix, opts.Format)
		if err := in.renderer.SaveImage(c.Image, cropPath); err != nil {
			return vis, written, fmt.Errorf("failed to save crop %s: %w", filepath.Base(cropPath), err)
		}
		written = append(written, cropPath)
	}
	return vis, written, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

// IsImageNotFound reports whether err means the image file is missing.
func IsImageNotFound(err error) bool {
	return errors.Is(err, ErrImageNotFound) || errors.Is(err, os.ErrNotExist)
}
