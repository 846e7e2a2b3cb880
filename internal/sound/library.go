// Package sound loads audio clips into memory and plays them live through
// the speaker. The export path reuses the same library for mixdown.
package sound

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/ivlev/skit2video/internal/skit"
)

// SampleRate is the house rate; every clip is resampled into it on load so
// mixing never has to care about source formats.
const SampleRate = beep.SampleRate(44100)

// Format is the house format for buffers and the mixdown output.
var Format = beep.Format{
	SampleRate:  SampleRate,
	NumChannels: 2,
	Precision:   2,
}

// Library holds decoded clips keyed by ClipID.
type Library struct {
	clips map[skit.ClipID]*beep.Buffer
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{clips: make(map[skit.ClipID]*beep.Buffer)}
}

// LoadLibrary reads the given clip files from assetsDir. Missing or broken
// files are skipped with a warning; the skit degrades to silence for those
// clips. The walking loop always gets a synthesized fallback.
func LoadLibrary(assetsDir string, files map[skit.ClipID]string) *Library {
	lib := NewLibrary()
	for id, name := range files {
		path := filepath.Join(assetsDir, name)
		buf, err := DecodeWAVFile(path)
		if err != nil {
			log.Printf("[!] Clip %q unavailable (%v), will play silently", id, err)
			continue
		}
		lib.clips[id] = buf
	}
	if _, ok := lib.clips[skit.ClipWalking]; !ok {
		log.Printf("[!] No walking sound asset, using generated footstep thump")
		lib.clips[skit.ClipWalking] = GenerateWalkingThump()
	}
	return lib
}

// Clip returns the decoded buffer for id.
func (l *Library) Clip(id skit.ClipID) (*beep.Buffer, bool) {
	buf, ok := l.clips[id]
	return buf, ok
}

// Put installs or replaces a clip, e.g. with synthesized speech.
func (l *Library) Put(id skit.ClipID, buf *beep.Buffer) {
	l.clips[id] = buf
}

// ClipDuration implements skit.ClipDurations.
func (l *Library) ClipDuration(id skit.ClipID) (int64, bool) {
	buf, ok := l.clips[id]
	if !ok {
		return 0, false
	}
	return Format.SampleRate.D(buf.Len()).Milliseconds(), true
}

// DecodeWAVFile decodes one WAV file into a house-format buffer.
func DecodeWAVFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

// DecodeWAV decodes WAV data from r, resampling into the house format.
func DecodeWAV(r io.Reader) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, streamer)
	}
	buf := beep.NewBuffer(Format)
	buf.Append(s)
	if buf.Len() == 0 {
		return nil, fmt.Errorf("wav decode: empty stream")
	}
	return buf, nil
}

// GenerateWalkingThump synthesizes the footstep fallback: 100ms of a 200Hz
// sine with a fast exponential decay.
func GenerateWalkingThump() *beep.Buffer {
	const (
		freq     = 200.0
		duration = 100 * time.Millisecond
	)
	n := SampleRate.N(duration)
	samples := make([][2]float64, n)
	for i := range samples {
		t := float64(i) / float64(SampleRate)
		v := math.Sin(2*math.Pi*freq*t) * math.Exp(-t*20)
		samples[i] = [2]float64{v, v}
	}
	buf := beep.NewBuffer(Format)
	buf.Append(&sliceStreamer{samples: samples})
	return buf
}

type sliceStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy(out, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }
