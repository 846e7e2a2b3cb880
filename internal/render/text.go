package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Subtitles are rendered with the bitmap face and integer-upscaled. The
// chunky result fits the stick-figure look and keeps rendering fully
// deterministic.

const (
	glyphH  = 13
	outline = 1
)

// renderText rasterizes text with a 1px outline at 1x, then scales by the
// integer factor with nearest-neighbor.
func renderText(text string, fill, edge color.RGBA, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()

	small := image.NewRGBA(image.Rect(0, 0, width+2*outline, glyphH+2*outline))
	drawString := func(x, y int, col color.RGBA) {
		d := font.Drawer{
			Dst:  small,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(text)
	}
	for dx := -outline; dx <= outline; dx++ {
		for dy := -outline; dy <= outline; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(outline+dx, outline+dy, edge)
		}
	}
	drawString(outline, outline, fill)

	if scale == 1 {
		return small
	}
	b := small.Bounds()
	big := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < big.Rect.Dy(); y++ {
		for x := 0; x < big.Rect.Dx(); x++ {
			big.SetRGBA(x, y, small.RGBAAt(x/scale, y/scale))
		}
	}
	return big
}

// drawTextCentered composites pre-rendered text centered at (cx, cy).
func drawTextCentered(dst *image.RGBA, text *image.RGBA, cx, cy int) {
	b := text.Bounds()
	at := image.Rect(cx-b.Dx()/2, cy-b.Dy()/2, cx+b.Dx()-b.Dx()/2, cy+b.Dy()-b.Dy()/2)
	draw.Draw(dst, at, text, b.Min, draw.Over)
}
