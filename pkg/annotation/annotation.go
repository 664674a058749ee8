// Package annotation loads Pascal VOC style XML annotation documents into an
// in-memory store of bounding-box records.
//
// A directory is read in a single pass. Every file whose name ends with the
// annotation extension is decoded, and each <object> entry with a label and a
// complete <bndbox> becomes one Record. Documents or entries that cannot be
// used are skipped and reported as Failures; only a missing directory aborts
// the load.
//
// Basic usage:
//
//	store, failures, err := annotation.Load("VOC2012/Annotations")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range failures {
//		log.Println("skipped:", f)
//	}
//	for _, r := range store.RecordsFor("2007_000027.jpg") {
//		fmt.Println(r.Label, r.Rect())
//	}
package annotation

import (
	"image"
	"math"
	"strconv"
	"strings"
)

// Record is a single labelled bounding box within an image.
type Record struct {
	ImageID string `json:"image_id"`
	Label   string `json:"label"`
	XMin    int    `json:"xmin"`
	YMin    int    `json:"ymin"`
	XMax    int    `json:"xmax"`
	YMax    int    `json:"ymax"`

	// Width and Height are zero when the document declares no size.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Optional VOC flags, nil when the entry does not carry them.
	Difficult *bool `json:"difficult,omitempty"`
	Truncated *bool `json:"truncated,omitempty"`
	Occluded  *bool `json:"occluded,omitempty"`

	// Source is the base name of the annotation file.
	Source string `json:"source"`
}

// Rect returns the bounding box as an image rectangle.
func (r Record) Rect() image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax, r.YMax)
}

// HasSize reports whether the source document declared the image size.
func (r Record) HasSize() bool {
	return r.Width > 0 && r.Height > 0
}

// IsDifficult reports whether the entry is flagged as difficult.
func (r Record) IsDifficult() bool { return r.Difficult != nil && *r.Difficult }

// IsTruncated reports whether the entry is flagged as truncated.
func (r Record) IsTruncated() bool { return r.Truncated != nil && *r.Truncated }

// IsOccluded reports whether the entry is flagged as occluded.
func (r Record) IsOccluded() bool { return r.Occluded != nil && *r.Occluded }

// clone returns r with its flag pointers copied, so the result shares no
// memory with the store.
func (r Record) clone() Record {
	r.Difficult = copyFlag(r.Difficult)
	r.Truncated = copyFlag(r.Truncated)
	r.Occluded = copyFlag(r.Occluded)
	return r
}

func copyFlag(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// ParseCoordinate parses a pixel coordinate that may be written as an integer
// ("12") or as a decimal ("12.0", "12.9"). The value is always parsed as a
// float first and then truncated toward zero.
func ParseCoordinate(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, ErrOutOfRange
	}
	return int(v), nil
}

func parseFlag(s *string) *bool {
	if s == nil {
		return nil
	}
	v, err := ParseCoordinate(*s)
	if err != nil {
		return nil
	}
	b := v != 0
	return &b
}
