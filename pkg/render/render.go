// Package render draws annotation records onto images for visual inspection.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/voc-inspector/internal/utils"
	"github.com/menta2k/voc-inspector/pkg/annotation"
)

// Config holds configuration for the renderer
type Config struct {
	Color       color.NRGBA
	StrokeWidth int
	// LabelOffset is how far above the box top the label is placed.
	LabelOffset int
	// CropSize bounds the longest side of object crops; 0 keeps crops at native size.
	CropSize int
	Quality  int
	Lossless bool
}

// DefaultConfig returns red three pixel boxes with labels 20px above them.
func DefaultConfig() Config {
	return Config{
		Color:       color.NRGBA{255, 0, 0, 255},
		StrokeWidth: 3,
		LabelOffset: 20,
		Quality:     90,
	}
}

// Renderer loads images, overlays records and saves the result
type Renderer struct {
	config Config
}

// New creates a renderer with default configuration
func New() *Renderer {
	return &Renderer{config: DefaultConfig()}
}

// NewWithConfig creates a renderer with custom configuration
func NewWithConfig(config Config) *Renderer {
	if config.StrokeWidth < 1 {
		config.StrokeWidth = 1
	}
	if config.Quality < 1 || config.Quality > 100 {
		config.Quality = DefaultConfig().Quality
	}
	return &Renderer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Mode        string
}

// Info returns basic information about an image
func Info(img image.Image) ImageInfo {
	bounds := img.Bounds()
	info := ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Mode:   colorMode(img),
	}
	if info.Height > 0 {
		info.AspectRatio = float64(info.Width) / float64(info.Height)
	}
	return info
}

func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.YCbCr:
		return "YCbCr"
	case *image.Gray, *image.Gray16:
		return "L"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	default:
		return "RGBA"
	}
}

// SizeMatches reports whether a record's declared size, if any, agrees with the image.
func SizeMatches(img image.Image, r annotation.Record) bool {
	if !r.HasSize() {
		return true
	}
	b := img.Bounds()
	return b.Dx() == r.Width && b.Dy() == r.Height
}

// LoadImage loads an image from a file path with WebP support
func (r *Renderer) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	// Fallback: explicit WebP decode, then whatever image.Decode knows
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// SaveImage saves an image, choosing the encoder from the file extension
func (r *Renderer) SaveImage(img image.Image, path string) error {
	switch utils.GetFileExtension(path) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		opts := &webp.Options{Lossless: r.config.Lossless, Quality: float32(r.config.Quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(r.config.Quality))
	default:
		return fmt.Errorf("unsupported output format: %s", strings.ToLower(path))
	}
}
