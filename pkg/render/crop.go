package render

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/voc-inspector/pkg/annotation"
)

// Crop is the image region covered by one record.
type Crop struct {
	Record annotation.Record
	Image  image.Image
}

// CropObjects cuts every record's box out of img. Boxes are clipped to the
// image; a record whose box lies entirely outside is returned as an error
// alongside the crops that did succeed.
func (r *Renderer) CropObjects(img image.Image, records []annotation.Record) ([]Crop, []error) {
	var (
		crops []Crop
		errs  []error
	)
	bounds := img.Bounds()
	for _, rec := range records {
		// VOC max coordinates are inclusive.
		rect := image.Rect(rec.XMin, rec.YMin, rec.XMax+1, rec.YMax+1).Add(bounds.Min).Intersect(bounds)
		if rect.Empty() {
			errs = append(errs, fmt.Errorf("%s %s: box %v outside image %v", rec.ImageID, rec.Label, rec.Rect(), bounds))
			continue
		}

		cropped := imaging.Crop(img, rect)
		if size := r.config.CropSize; size > 0 {
			cropped = imaging.Fit(cropped, size, size, imaging.Lanczos)
		}
		crops = append(crops, Crop{Record: rec, Image: cropped})
	}
	return crops, errs
}
