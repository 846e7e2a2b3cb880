package mixdown

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/ivlev/skit2video/internal/skit"
	"github.com/ivlev/skit2video/internal/sound"
	"github.com/ivlev/skit2video/internal/timeline"
)

// tone builds a constant-amplitude clip of the given length.
func tone(ms int64) *beep.Buffer {
	remaining := sound.SampleRate.N(time.Duration(ms) * time.Millisecond)
	s := beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if remaining <= 0 {
			return 0, false
		}
		n := len(out)
		if n > remaining {
			n = remaining
		}
		for i := 0; i < n; i++ {
			out[i][0], out[i][1] = 0.5, 0.5
		}
		remaining -= n
		return n, true
	})
	buf := beep.NewBuffer(sound.Format)
	buf.Append(s)
	return buf
}

// peakBetween returns the loudest sample in [fromMS, toMS).
func peakBetween(buf *beep.Buffer, fromMS, toMS int64) float64 {
	from := sound.SampleRate.N(time.Duration(fromMS) * time.Millisecond)
	to := sound.SampleRate.N(time.Duration(toMS) * time.Millisecond)
	st := buf.Streamer(from, to)

	peak := 0.0
	samples := make([][2]float64, 512)
	for {
		n, ok := st.Stream(samples)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1])))
		}
		if !ok {
			break
		}
	}
	return peak
}

func samplesFor(ms int64) int {
	return sound.SampleRate.N(time.Duration(ms) * time.Millisecond)
}

func TestMixPlacesClipAtOffset(t *testing.T) {
	lib := sound.NewLibrary()
	lib.Put(skit.ClipMeow, tone(800))

	events := []timeline.Event{
		{Kind: timeline.Effect, At: 1000, Clips: []skit.ClipID{skit.ClipMeow}},
	}
	out := Mix(events, lib, 4000)

	if got, want := out.Len(), samplesFor(4000); got != want {
		t.Fatalf("mix length = %d samples, want %d", got, want)
	}
	if p := peakBetween(out, 0, 990); p != 0 {
		t.Errorf("audio before the clip offset, peak %f", p)
	}
	if p := peakBetween(out, 1010, 1790); p == 0 {
		t.Error("silent where the clip should play")
	}
	if p := peakBetween(out, 1810, 4000); p != 0 {
		t.Errorf("audio after the clip ended, peak %f", p)
	}
}

func TestMixLoopSpanRepeatsAndTruncates(t *testing.T) {
	lib := sound.NewLibrary()
	lib.Put(skit.ClipWalking, tone(300))

	events := []timeline.Event{
		{Kind: timeline.LoopSpan, At: 2000, Duration: 1000, Clips: []skit.ClipID{skit.ClipWalking}},
	}
	out := Mix(events, lib, 4000)

	// Well past the clip's natural 300ms: the loop must still be audible.
	if p := peakBetween(out, 2850, 2990); p == 0 {
		t.Error("loop went silent before the span ended")
	}
	if p := peakBetween(out, 3010, 4000); p != 0 {
		t.Errorf("loop audible after the span ended, peak %f", p)
	}
}

func TestMixDualDialogueSumsClips(t *testing.T) {
	lib := sound.NewLibrary()
	lib.Put(skit.ClipWatchIt1, tone(500))
	lib.Put(skit.ClipWatchIt2, tone(500))

	events := []timeline.Event{
		{Kind: timeline.Dialogue, At: 0, Clips: []skit.ClipID{skit.ClipWatchIt1, skit.ClipWatchIt2}},
	}
	out := Mix(events, lib, 1000)

	// Two 0.5 clips mixed additively peak at 1.0.
	if p := peakBetween(out, 10, 490); p < 0.99 {
		t.Errorf("dual dialogue peak = %f, want ~1.0", p)
	}
}

func TestMixTruncatesOverrunningClip(t *testing.T) {
	lib := sound.NewLibrary()
	lib.Put(skit.ClipMeow, tone(2000))

	events := []timeline.Event{
		{Kind: timeline.Effect, At: 1500, Clips: []skit.ClipID{skit.ClipMeow}},
	}
	out := Mix(events, lib, 2000)

	if got, want := out.Len(), samplesFor(2000); got != want {
		t.Errorf("mix length = %d samples, want %d (clip overrun not truncated)", got, want)
	}
}

func TestMixSkipsMissingClip(t *testing.T) {
	lib := sound.NewLibrary()

	events := []timeline.Event{
		{Kind: timeline.Effect, At: 100, Clips: []skit.ClipID{skit.ClipMeow}},
	}
	out := Mix(events, lib, 1000)

	if got, want := out.Len(), samplesFor(1000); got != want {
		t.Errorf("mix length = %d samples, want %d", got, want)
	}
	if p := peakBetween(out, 0, 1000); p != 0 {
		t.Errorf("missing clip produced audio, peak %f", p)
	}
}

func TestMixEmptyTimeline(t *testing.T) {
	out := Mix(nil, sound.NewLibrary(), 500)
	if got, want := out.Len(), samplesFor(500); got != want {
		t.Errorf("mix length = %d samples, want %d", got, want)
	}
}
