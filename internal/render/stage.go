// Package render rasterizes skit frames into RGBA images for the encoder.
// It is a pure function of the controller's snapshot: same frame in, same
// pixels out.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ivlev/skit2video/internal/skit"
)

var (
	black    = color.RGBA{A: 255}
	white    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	catFur   = color.RGBA{R: 255, G: 140, A: 255}
	catEdge  = color.RGBA{R: 200, G: 100, A: 255}
	beamTint = color.RGBA{R: 150, G: 255, B: 150, A: 255}
)

// Renderer draws snapshots onto a fixed-size stage. The background (park or
// a custom backdrop) is rasterized once and blitted per frame.
type Renderer struct {
	w, h int
	bg   *image.RGBA
}

// NewRenderer builds a renderer for a w x h stage. A nil backdrop gets the
// procedural park.
func NewRenderer(w, h int, backdrop *image.RGBA) *Renderer {
	bg := backdrop
	if bg == nil {
		bg = Park(w, h)
	}
	return &Renderer{w: w, h: h, bg: bg}
}

// Size returns the stage dimensions.
func (r *Renderer) Size() (int, int) { return r.w, r.h }

// Draw renders one snapshot into dst, which must be w x h.
func (r *Renderer) Draw(dst *image.RGBA, f skit.Frame) {
	draw.Draw(dst, dst.Bounds(), r.bg, r.bg.Bounds().Min, draw.Src)

	if f.Cat.Visible {
		r.drawCat(dst, f)
	}
	if f.UFO.Visible {
		r.drawUFO(dst, f)
	}
	r.drawCharacter(dst, f.Char1, f.TimeMS)
	r.drawCharacter(dst, f.Char2, f.TimeMS)
	r.drawDialogue(dst, f)
}

// Park draws the default backdrop: sky and grass gradients, a path, trees,
// clouds, sun and flowers.
func Park(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	skyTop := color.RGBA{R: 135, G: 206, B: 235, A: 255}
	skyBottom := color.RGBA{R: 180, G: 220, B: 245, A: 255}
	for y := 0; y < h/2; y++ {
		hLine(img, 0, w-1, y, lerpColor(skyTop, skyBottom, float64(y)/float64(h/2)))
	}

	grassTop := color.RGBA{R: 100, G: 180, B: 100, A: 255}
	grassBottom := color.RGBA{R: 80, G: 150, B: 80, A: 255}
	for y := h / 2; y < h; y++ {
		t := float64(y-h/2) / float64(h-h/2)
		hLine(img, 0, w-1, y, lerpColor(grassTop, grassBottom, t))
	}

	pathY := h - 200
	fillRect(img, 0, pathY, w, 120, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	pathEdge := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	fillRect(img, 0, pathY-1, w, 3, pathEdge)
	fillRect(img, 0, pathY+119, w, 3, pathEdge)

	trunk := color.RGBA{R: 101, G: 67, B: 33, A: 255}
	leaves := color.RGBA{R: 34, G: 139, B: 34, A: 255}
	leavesLight := color.RGBA{R: 50, G: 150, B: 50, A: 255}
	for _, tx := range []int{100, 300, 500, 700} {
		trunkY := h/2 + 40
		fillRect(img, tx-10, trunkY, 20, 60, trunk)
		foliageY := trunkY - 20
		fillCircle(img, tx, foliageY, 40, leaves)
		fillCircle(img, tx-20, foliageY+10, 30, leavesLight)
		fillCircle(img, tx+20, foliageY+10, 30, leavesLight)
	}

	for _, p := range [][2]int{{150, 80}, {400, 60}, {650, 90}} {
		fillCircle(img, p[0], p[1], 30, white)
		fillCircle(img, p[0]+25, p[1], 25, white)
		fillCircle(img, p[0]-25, p[1], 25, white)
		fillCircle(img, p[0]+10, p[1]-15, 20, white)
	}

	sunX, sunY := 700, 100
	for i := 5; i > 0; i-- {
		for dy := -55; dy <= 55; dy++ {
			for dx := -55; dx <= 55; dx++ {
				d := math.Hypot(float64(dx), float64(dy))
				if d <= float64(30+i*5) {
					blendPx(img, sunX+dx, sunY+dy, color.RGBA{R: 255, G: 255, A: 255}, 30.0/255)
				}
			}
		}
	}
	fillCircle(img, sunX, sunY, 30, color.RGBA{R: 255, G: 255, A: 255})
	fillCircle(img, sunX, sunY, 25, color.RGBA{R: 255, G: 255, B: 150, A: 255})

	bush := color.RGBA{R: 60, G: 120, B: 60, A: 255}
	petal := color.RGBA{R: 255, G: 100, B: 150, A: 255}
	heart := color.RGBA{R: 255, G: 200, A: 255}
	for _, p := range [][2]int{{80, h/2 + 20}, {250, h/2 + 30}, {450, h/2 + 25}, {620, h/2 + 35}} {
		fillCircle(img, p[0], p[1], 15, bush)
		for i := 0; i < 3; i++ {
			fx := p[0] + (i-1)*10
			fy := p[1] - 10
			fillCircle(img, fx, fy, 4, petal)
			fillCircle(img, fx, fy, 2, heart)
		}
	}
	return img
}

func (r *Renderer) drawCharacter(dst *image.RGBA, c skit.Character, nowMS int64) {
	const (
		headRadius = 20
		thickness  = 4
	)

	// Cycles are keyed to time so visuals stay deterministic and
	// frame-rate independent, same as the phase pacing.
	walkCycle := 0.0
	bob := 0
	if c.Walking {
		walkCycle = math.Mod(float64(nowMS)*4/1000, 2*math.Pi)
		bob = int(3 * math.Abs(math.Sin(walkCycle)))
	}

	centerX := int(c.X + c.Width/2)
	headX := centerX
	headY := int(c.Y) - headRadius - bob
	neckY := headY + headRadius
	hipY := neckY + 35

	fillCircle(dst, headX, headY, headRadius, c.Color)
	strokeCircle(dst, headX, headY, headRadius, 2, black)

	fillCircle(dst, headX-7, headY-4, 3, black)
	fillCircle(dst, headX+7, headY-4, 3, black)

	switch {
	case c.Talking:
		if (nowMS/83)%2 == 0 {
			strokeEllipse(dst, headX-6, headY+6, 12, 10, 2, black)
		} else {
			smileArc(dst, headX-8, headY+5, 16, 8, 2, black)
		}
	case c.Smiling:
		smileArc(dst, headX-10, headY+3, 20, 10, 3, black)
	default:
		smileArc(dst, headX-8, headY+5, 16, 8, 2, black)
	}

	line(dst, centerX, neckY, centerX, hipY, thickness, c.Color)

	leftArm, rightArm := -15.0, 15.0
	if c.Walking {
		swing := math.Sin(walkCycle) * 25
		leftArm, rightArm = -swing, swing
	}
	shoulderY := neckY + 8
	const armLength = 25.0
	lax := centerX - 15 + int(math.Sin(rad(leftArm))*armLength)
	lay := shoulderY + int(math.Cos(rad(leftArm))*armLength)
	line(dst, centerX-5, shoulderY, lax, lay, thickness, c.Color)
	rax := centerX + 15 + int(math.Sin(rad(rightArm))*armLength)
	ray := shoulderY + int(math.Cos(rad(rightArm))*armLength)
	line(dst, centerX+5, shoulderY, rax, ray, thickness, c.Color)

	leftLeg, rightLeg := 0.0, 0.0
	if c.Walking {
		leftLeg = math.Sin(walkCycle) * 30
		rightLeg = -leftLeg
	}
	const legLength = 35.0
	drawLeg := func(hipX int, upper float64) {
		kneeX := hipX + int(math.Sin(rad(upper))*legLength*0.6)
		kneeY := hipY + int(math.Cos(rad(upper))*legLength*0.6)
		line(dst, hipX, hipY, kneeX, kneeY, thickness, c.Color)
		lower := upper
		if c.Walking {
			lower += math.Sin(walkCycle+math.Pi/4) * 20
		}
		footX := kneeX + int(math.Sin(rad(lower))*legLength*0.5)
		footY := kneeY + int(math.Cos(rad(lower))*legLength*0.5)
		line(dst, kneeX, kneeY, footX, footY, thickness, c.Color)
		fillCircle(dst, footX, footY, 4, c.Color)
	}
	drawLeg(centerX-8, leftLeg)
	drawLeg(centerX+8, rightLeg)
}

func (r *Renderer) drawCat(dst *image.RGBA, f skit.Frame) {
	catX := int(f.Cat.X)
	catY := r.h - 150
	scale := f.Cat.Scale

	catW := int(40 * scale)
	catH := int(28 * scale)
	fillEllipse(dst, catX-catW/2, catY-catH/2, catW, catH, catFur)
	strokeEllipse(dst, catX-catW/2, catY-catH/2, catW, catH, maxInt(1, int(2*scale)), catEdge)

	headSize := int(25 * scale)
	headX := catX + catW/3
	headY := catY - catH/3
	fillCircle(dst, headX, headY, headSize, catFur)
	strokeCircle(dst, headX, headY, headSize, maxInt(1, int(2*scale)), catEdge)

	if scale > 0.3 {
		s := func(v float64) int { return int(v * scale) }
		left := [3]image.Point{
			{X: headX - s(12), Y: headY - s(15)},
			{X: headX - s(5), Y: headY - s(5)},
			{X: headX - s(15), Y: headY - s(5)},
		}
		fillTriangle(dst, left[0], left[1], left[2], catFur)
		right := [3]image.Point{
			{X: headX + s(12), Y: headY - s(15)},
			{X: headX + s(5), Y: headY - s(5)},
			{X: headX + s(15), Y: headY - s(5)},
		}
		fillTriangle(dst, right[0], right[1], right[2], catFur)

		if scale > 0.6 {
			eye := maxInt(2, s(3))
			fillCircle(dst, headX-s(6), headY, eye, black)
			fillCircle(dst, headX+s(6), headY, eye, black)
		}
	}

	tailLen := int(30 * scale)
	tailX := catX - catW/2
	line(dst, tailX, catY, tailX-tailLen, catY-int(float64(tailLen)*0.7), maxInt(2, int(4*scale)), catFur)

	legLen := int(15 * scale)
	for i := 0; i < 2; i++ {
		legX := catX - catW/4 + i*int(10*scale)
		line(dst, legX, catY+catH/2, legX, catY+catH/2+legLen, maxInt(2, int(3*scale)), catFur)
	}
}

func (r *Renderer) drawUFO(dst *image.RGBA, f skit.Frame) {
	ufoX := int(f.Char2.X + f.Char2.Width/2)
	ufoY := int(f.UFO.Y)

	if f.UFO.BeamAlpha > 0 {
		top := ufoY + 40
		for y := top; y < r.h; y++ {
			progress := float64(y-top) / float64(r.h-top)
			width := int(60 + 60*progress)
			alpha := f.UFO.BeamAlpha * (1 - progress*0.5) / 255
			for x := ufoX - width/2; x <= ufoX+width/2; x++ {
				blendPx(dst, x, y, beamTint, alpha)
			}
		}
	}

	hull := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	hullEdge := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	rim := color.RGBA{R: 180, G: 180, B: 180, A: 255}
	rimEdge := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	fillEllipse(dst, ufoX-50, ufoY-20, 100, 40, hull)
	strokeEllipse(dst, ufoX-50, ufoY-20, 100, 40, 2, hullEdge)
	fillEllipse(dst, ufoX-60, ufoY+10, 120, 30, rim)
	strokeEllipse(dst, ufoX-60, ufoY+10, 120, 30, 2, rimEdge)

	lightColors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
		{R: 255, B: 255, A: 255},
	}
	off := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	for i, lx := range []int{-40, -20, 0, 20, 40} {
		c := off
		if (f.TimeMS/200+int64(i))%2 == 0 {
			c = lightColors[i]
		}
		fillCircle(dst, ufoX+lx, ufoY+20, 5, c)
	}

	fillCircle(dst, ufoX, ufoY, 15, color.RGBA{R: 100, G: 150, B: 200, A: 255})
	strokeCircle(dst, ufoX, ufoY, 15, 2, color.RGBA{R: 50, G: 100, B: 150, A: 255})
}

func (r *Renderer) drawDialogue(dst *image.RGBA, f skit.Frame) {
	if f.Dialogue.Text == "" {
		return
	}

	var fill, edge color.RGBA
	var cx, cy, scale int
	switch f.Dialogue.Speaker {
	case skit.SpeakerBoth:
		fill = color.RGBA{R: 255, G: 60, B: 60, A: 255}
		edge = color.RGBA{R: 100, A: 255}
		cx, cy, scale = r.w/2, 100, 4
	case skit.SpeakerChar1:
		fill = color.RGBA{R: 80, G: 130, B: 255, A: 255}
		edge = color.RGBA{B: 100, A: 255}
		cx, cy, scale = int(f.Char1.CenterX()), int(f.Char1.Y)-80, 3
	case skit.SpeakerChar2:
		fill = color.RGBA{R: 255, G: 60, B: 60, A: 255}
		edge = color.RGBA{R: 100, A: 255}
		cx, cy, scale = int(f.Char2.CenterX()), int(f.Char2.Y)-80, 3
	default:
		fill, edge = white, black
		cx, cy, scale = r.w/2, r.h/2, 3
	}

	// Gentle float so the line doesn't sit dead still.
	sinceStart := f.TimeMS - f.Dialogue.Since
	cy += int(math.Sin(float64(sinceStart)/500) * 5)
	cx += int(math.Sin(float64(sinceStart)/600) * 8)

	drawTextCentered(dst, renderText(f.Dialogue.Text, fill, edge, scale), cx, cy)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
