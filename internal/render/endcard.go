package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

// EndCard renders a closing frame with a centered QR code pointing at link
// and a caption below it. Returned image is w x h.
func EndCard(w, h int, link, caption string) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	top := color.RGBA{R: 25, G: 25, B: 45, A: 255}
	bottom := color.RGBA{R: 45, G: 30, B: 70, A: 255}
	for y := 0; y < h; y++ {
		hLine(img, 0, w-1, y, lerpColor(top, bottom, float64(y)/float64(h)))
	}

	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	side := h / 2
	if w/2 < side {
		side = w / 2
	}
	qrImg := q.Image(side)

	qx := (w - side) / 2
	qy := (h - side) / 2
	// White frame so the code scans against the dark backdrop.
	fillRect(img, qx-12, qy-12, side+24, side+24, white)
	draw.Draw(img, image.Rect(qx, qy, qx+side, qy+side), qrImg, qrImg.Bounds().Min, draw.Src)

	if caption != "" {
		label := renderText(caption, white, color.RGBA{R: 60, G: 60, B: 60, A: 255}, 3)
		drawTextCentered(img, label, w/2, qy+side+50)
	}
	return img, nil
}
