// Package mixdown composites a recorded audio timeline into one track. The
// video frame count is authoritative for the total length: the output is
// padded with silence or truncated to land on it exactly.
package mixdown

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/ivlev/skit2video/internal/sound"
	"github.com/ivlev/skit2video/internal/timeline"
)

// Mix places every event's clip at its recorded offset and mixes them
// additively into a buffer of exactly totalMS milliseconds. A clip that
// cannot be found is skipped with a warning; one missing asset never aborts
// the whole mix.
func Mix(events []timeline.Event, lib *sound.Library, totalMS int64) *beep.Buffer {
	total := sound.SampleRate.N(time.Duration(totalMS) * time.Millisecond)

	// The silence track pins the mix length; Take then cuts any overrun.
	streams := []beep.Streamer{beep.Silence(total)}

	for _, ev := range events {
		offset := sound.SampleRate.N(time.Duration(ev.At) * time.Millisecond)
		for _, id := range ev.Clips {
			buf, ok := lib.Clip(id)
			if !ok || buf.Len() == 0 {
				log.Printf("[!] Mixdown: clip %q missing, skipping %s event at %dms", id, ev.Kind, ev.At)
				continue
			}
			var s beep.Streamer
			if ev.Kind == timeline.LoopSpan {
				span := sound.SampleRate.N(time.Duration(ev.Duration) * time.Millisecond)
				if span <= 0 {
					continue
				}
				// Repeat the base clip across the span; Take trims the
				// final repetition to land exactly on the span end.
				s = beep.Take(span, beep.Loop(-1, buf.Streamer(0, buf.Len())))
			} else {
				s = buf.Streamer(0, buf.Len())
			}
			streams = append(streams, beep.Seq(beep.Silence(offset), s))
		}
	}

	out := beep.NewBuffer(sound.Format)
	out.Append(beep.Take(total, beep.Mix(streams...)))
	return out
}

// WriteWAV mixes the timeline and writes the track to path.
func WriteWAV(path string, events []timeline.Event, lib *sound.Library, totalMS int64) error {
	buf := Mix(events, lib, totalMS)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio track: %w", err)
	}
	defer f.Close()

	if err := wav.Encode(f, buf.Streamer(0, buf.Len()), sound.Format); err != nil {
		return fmt.Errorf("encode audio track: %w", err)
	}
	return nil
}
