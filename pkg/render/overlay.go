package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/voc-inspector/pkg/annotation"
)

// DrawAnnotations returns a copy of img with every record drawn as a box
// outline and its label written just above the box.
func (r *Renderer) DrawAnnotations(img image.Image, records []annotation.Record) *image.NRGBA {
	nrgba := imaging.Clone(img)
	for _, rec := range records {
		drawBox(nrgba, rec.Rect(), r.config.Color, r.config.StrokeWidth)
		y := rec.YMin - r.config.LabelOffset
		if y < 0 {
			y = 0
		}
		drawLabel(nrgba, rec.Label, rec.XMin, y, r.config.Color)
	}
	return nrgba
}

// drawBox outlines rect, treating Max as inclusive like VOC pixel
// coordinates. The stroke grows inward.
func drawBox(img *image.NRGBA, rect image.Rectangle, c color.NRGBA, stroke int) {
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y
	for s := 0; s < stroke; s++ {
		if x0+s > x1-s || y0+s > y1-s {
			break
		}
		drawHLine(img, y0+s, x0, x1+1, c)
		drawHLine(img, y1-s, x0, x1+1, c)
		drawVLine(img, x0+s, y0, y1+1, c)
		drawVLine(img, x1-s, y0, y1+1, c)
	}
}

// drawLabel writes text with its top-left corner at (x, y).
func drawLabel(img *image.NRGBA, text string, x, y int, c color.NRGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
