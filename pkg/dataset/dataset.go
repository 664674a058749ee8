// Package dataset resolves the on-disk layout of a Pascal VOC dataset.
//
// Candidate roots are supplied by the caller (configuration, VOC_ROOT, or a
// command-line flag); nothing here knows about deployment specific paths.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/menta2k/voc-inspector/internal/utils"
)

// Standard VOC subdirectory names.
const (
	DefaultAnnotationsDir = "Annotations"
	DefaultImagesDir      = "JPEGImages"
)

// ErrNotFound is returned by Discover when no candidate holds a complete layout.
var ErrNotFound = errors.New("VOC dataset not found")

// Layout locates the annotation and image directories of one dataset.
type Layout struct {
	Root           string
	AnnotationsDir string
	ImagesDir      string
}

// NewLayout returns the layout under root. Empty names fall back to the VOC defaults.
func NewLayout(root, annotationsDir, imagesDir string) Layout {
	if annotationsDir == "" {
		annotationsDir = DefaultAnnotationsDir
	}
	if imagesDir == "" {
		imagesDir = DefaultImagesDir
	}
	return Layout{Root: root, AnnotationsDir: annotationsDir, ImagesDir: imagesDir}
}

// Annotations returns <root>/<annotations dir>.
func (l Layout) Annotations() string {
	return filepath.Join(l.Root, l.AnnotationsDir)
}

// Images returns <root>/<images dir>.
func (l Layout) Images() string {
	return filepath.Join(l.Root, l.ImagesDir)
}

// ImageFile returns the path of the image an annotation refers to. VOC
// documents normally declare "2007_000027.jpg"; ids without an image
// extension get ".jpg".
func (l Layout) ImageFile(imageID string) string {
	name := filepath.Base(imageID)
	if !utils.IsImageFile(name) {
		name += ".jpg"
	}
	return filepath.Join(l.Images(), name)
}

// Validate checks that both subdirectories exist.
func (l Layout) Validate() error {
	if !utils.DirExists(l.Annotations()) {
		return fmt.Errorf("annotations directory not found: %s", l.Annotations())
	}
	if !utils.DirExists(l.Images()) {
		return fmt.Errorf("images directory not found: %s", l.Images())
	}
	return nil
}

// Discover returns the layout of the first candidate root that contains
// both the annotations and the images directory. Blank candidates are skipped.
func Discover(candidates []string, annotationsDir, imagesDir string) (Layout, error) {
	var tried []string
	for _, root := range candidates {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		l := NewLayout(root, annotationsDir, imagesDir)
		if l.Validate() == nil {
			return l, nil
		}
		tried = append(tried, root)
	}
	return Layout{}, fmt.Errorf("%w (tried %s)", ErrNotFound, strings.Join(tried, ", "))
}
