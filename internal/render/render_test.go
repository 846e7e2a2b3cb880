package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/skit2video/internal/skit"
)

func testFrame() skit.Frame {
	c1 := *skit.NewCharacter("char1", "", 200, 400, color.RGBA{B: 255, A: 255})
	c2 := *skit.NewCharacter("char2", "", 700, 400, color.RGBA{R: 255, A: 255})
	c1.Walking = true
	c2.Talking = true
	return skit.Frame{
		TimeMS: 1234,
		Char1:  c1,
		Char2:  c2,
	}
}

func TestDrawProducesCharacters(t *testing.T) {
	r := NewRenderer(1000, 600, nil)
	dst := image.NewRGBA(image.Rect(0, 0, 1000, 600))
	r.Draw(dst, testFrame())

	// A blue head must appear around char1's position.
	foundBlue := false
	for y := 300; y < 420 && !foundBlue; y++ {
		for x := 180; x < 260; x++ {
			c := dst.RGBAAt(x, y)
			if c.B > 200 && c.R < 100 {
				foundBlue = true
				break
			}
		}
	}
	if !foundBlue {
		t.Error("no blue stick figure near char1's position")
	}
}

func TestDrawIsDeterministic(t *testing.T) {
	r := NewRenderer(1000, 600, nil)
	f := testFrame()

	a := image.NewRGBA(image.Rect(0, 0, 1000, 600))
	b := image.NewRGBA(image.Rect(0, 0, 1000, 600))
	r.Draw(a, f)
	r.Draw(b, f)

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("same frame rendered differently at pix[%d]", i)
		}
	}
}

func TestDrawCatAndUFO(t *testing.T) {
	r := NewRenderer(1000, 600, nil)
	f := testFrame()
	f.Cat = skit.CatState{Visible: true, X: 500, Scale: 1.5}
	f.UFO = skit.UFOState{Visible: true, Y: 50, BeamAlpha: 150}
	f.Dialogue = skit.DialogueState{Text: "WATCH IT!", Speaker: skit.SpeakerBoth, Since: 1000}

	dst := image.NewRGBA(image.Rect(0, 0, 1000, 600))
	r.Draw(dst, f) // must not panic with every prop active

	// Cat body is orange at full scale near (500, 450).
	foundOrange := false
	for y := 420; y < 480 && !foundOrange; y++ {
		for x := 460; x < 540; x++ {
			c := dst.RGBAAt(x, y)
			if c.R > 200 && c.G > 100 && c.B < 50 {
				foundOrange = true
				break
			}
		}
	}
	if !foundOrange {
		t.Error("no cat drawn at its position")
	}
}

func TestDrawClampsOffstage(t *testing.T) {
	r := NewRenderer(1000, 600, nil)
	f := testFrame()
	f.Char1.X = -500
	f.Char2.X = 1500
	f.Cat = skit.CatState{Visible: true, X: -100, Scale: 0.1}

	dst := image.NewRGBA(image.Rect(0, 0, 1000, 600))
	r.Draw(dst, f) // off-stage coordinates must not panic
}

func TestParkBackground(t *testing.T) {
	bg := Park(1000, 600)

	if got := bg.Bounds(); got.Dx() != 1000 || got.Dy() != 600 {
		t.Fatalf("park bounds = %v", got)
	}
	sky := bg.RGBAAt(10, 10)
	if sky.B < sky.R {
		t.Errorf("sky pixel not blue: %+v", sky)
	}
	grass := bg.RGBAAt(10, 580)
	if grass.G < grass.R || grass.G < grass.B {
		t.Errorf("grass pixel not green: %+v", grass)
	}
}

func TestEndCard(t *testing.T) {
	card, err := EndCard(1000, 600, "https://example.com/skit", "Subscribe for more")
	if err != nil {
		t.Fatalf("EndCard failed: %v", err)
	}
	if got := card.Bounds(); got.Dx() != 1000 || got.Dy() != 600 {
		t.Fatalf("card bounds = %v", got)
	}

	// The QR code sits on a white frame in the center.
	white := 0
	for y := 160; y < 440; y++ {
		for x := 360; x < 640; x++ {
			c := card.RGBAAt(x, y)
			if c.R == 255 && c.G == 255 && c.B == 255 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no white QR area in the card center")
	}
}
