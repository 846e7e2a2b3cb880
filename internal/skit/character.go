package skit

import "image/color"

// Rect is an axis-aligned bounding box in stage coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Character is the mutable state of one stick figure. All fields are owned
// by the controller; there is exactly one writer per tick.
type Character struct {
	Name  string
	Voice string
	Color color.RGBA

	X, Y          float64
	Width, Height float64
	Speed         float64
	Direction     int // +1 right, -1 left

	Walking bool
	Smiling bool
	Talking bool

	talkFrame int
}

// NewCharacter places a character at (x, y) with the default size and speed.
func NewCharacter(name, voice string, x, y float64, col color.RGBA) *Character {
	return &Character{
		Name:      name,
		Voice:     voice,
		Color:     col,
		X:         x,
		Y:         y,
		Width:     40,
		Height:    60,
		Speed:     3,
		Direction: 1,
	}
}

// Move advances the character by one step. Boundaries are the caller's job.
func (c *Character) Move() {
	c.X += c.Speed * float64(c.Direction)
}

// CenterX returns the horizontal center, used for proximity checks and
// subtitle anchoring.
func (c *Character) CenterX() float64 {
	return c.X + c.Width/2
}

// Bounds returns the collision rectangle.
func (c *Character) Bounds() Rect {
	return Rect{X: c.X, Y: c.Y, W: c.Width, H: c.Height}
}

func (c *Character) SetWalking(walking bool) { c.Walking = walking }

func (c *Character) SetSmiling(smiling bool) { c.Smiling = smiling }

// SetTalking toggles the talk flag. Ending a line resets the mouth cycle so
// the next line starts closed.
func (c *Character) SetTalking(talking bool) {
	c.Talking = talking
	if !talking {
		c.talkFrame = 0
	}
}

func (c *Character) SetSpeed(speed float64) { c.Speed = speed }

func (c *Character) ReverseDirection() { c.Direction = -c.Direction }
