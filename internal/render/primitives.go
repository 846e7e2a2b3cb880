package render

import (
	"image"
	"image/color"
	"math"
)

// Pixel-pushing helpers for the procedural stage. Everything draws straight
// into an *image.RGBA; no anti-aliasing, the skit's look is deliberately
// chunky.

func setPx(dst *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	dst.SetRGBA(x, y, c)
}

func blendPx(dst *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if alpha <= 0 || !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	if alpha >= 1 {
		dst.SetRGBA(x, y, c)
		return
	}
	old := dst.RGBAAt(x, y)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(b)*(1-alpha) + float64(a)*alpha)
	}
	dst.SetRGBA(x, y, color.RGBA{
		R: mix(c.R, old.R),
		G: mix(c.G, old.G),
		B: mix(c.B, old.B),
		A: 255,
	})
}

func fillRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			setPx(dst, xx, yy, c)
		}
	}
}

func hLine(dst *image.RGBA, x0, x1, y int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		setPx(dst, x, y, c)
	}
}

func fillCircle(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		dx := int(math.Sqrt(float64(r*r - dy*dy)))
		hLine(dst, cx-dx, cx+dx, cy+dy, c)
	}
}

func strokeCircle(dst *image.RGBA, cx, cy, r, thickness int, c color.RGBA) {
	outer := float64(r)
	inner := float64(r - thickness)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d <= outer && d > inner {
				setPx(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

// line stamps discs along the segment, giving a rounded stroke of the given
// thickness.
func line(dst *image.RGBA, x0, y0, x1, y1 int, thickness int, c color.RGBA) {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	length := math.Hypot(dx, dy)
	steps := int(length) + 1
	r := thickness / 2
	if r < 1 {
		r = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(dx*t)
		y := y0 + int(dy*t)
		fillCircle(dst, x, y, r, c)
	}
}

// fillEllipse fills an axis-aligned ellipse bounded by (x, y, w, h).
func fillEllipse(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rx := float64(w) / 2
	ry := float64(h) / 2
	cx := float64(x) + rx
	cy := float64(y) + ry
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			nx := (float64(xx) + 0.5 - cx) / rx
			ny := (float64(yy) + 0.5 - cy) / ry
			if nx*nx+ny*ny <= 1 {
				setPx(dst, xx, yy, c)
			}
		}
	}
}

func strokeEllipse(dst *image.RGBA, x, y, w, h, thickness int, c color.RGBA) {
	rx := float64(w) / 2
	ry := float64(h) / 2
	cx := float64(x) + rx
	cy := float64(y) + ry
	t := float64(thickness)
	for yy := y - thickness; yy < y+h+thickness; yy++ {
		for xx := x - thickness; xx < x+w+thickness; xx++ {
			nx := (float64(xx) + 0.5 - cx)
			ny := (float64(yy) + 0.5 - cy)
			outer := (nx*nx)/(rx*rx) + (ny*ny)/(ry*ry)
			ix := rx - t
			iy := ry - t
			inner := 2.0
			if ix > 0 && iy > 0 {
				inner = (nx*nx)/(ix*ix) + (ny*ny)/(iy*iy)
			}
			if outer <= 1 && inner > 1 {
				setPx(dst, xx, yy, c)
			}
		}
	}
}

// smileArc draws the lower half of an ellipse, the skit's universal mouth.
func smileArc(dst *image.RGBA, x, y, w, h, thickness int, c color.RGBA) {
	rx := float64(w) / 2
	ry := float64(h) / 2
	cx := float64(x) + rx
	cy := float64(y) + ry
	steps := w * 4
	r := thickness / 2
	if r < 1 {
		r = 1
	}
	for i := 0; i <= steps; i++ {
		theta := math.Pi * float64(i) / float64(steps) // 0..pi, lower half
		px := cx + rx*math.Cos(theta)
		py := cy + ry*math.Sin(theta)
		fillCircle(dst, int(px), int(py), r, c)
	}
}

func fillTriangle(dst *image.RGBA, p0, p1, p2 image.Point, c color.RGBA) {
	minY := min3(p0.Y, p1.Y, p2.Y)
	maxY := max3(p0.Y, p1.Y, p2.Y)
	minX := min3(p0.X, p1.X, p2.X)
	maxX := max3(p0.X, p1.X, p2.X)
	edge := func(a, b, p image.Point) int {
		return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := image.Point{X: x, Y: y}
			e0 := edge(p0, p1, p)
			e1 := edge(p1, p2, p)
			e2 := edge(p2, p0, p)
			if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
				setPx(dst, x, y, c)
			}
		}
	}
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
