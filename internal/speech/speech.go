// Package speech synthesizes dialogue lines through an OpenAI-compatible
// text-to-speech endpoint. Everything here is best-effort: a failure
// disables synthesis for the rest of the run and the skit falls back to
// pre-recorded assets or silence.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/ivlev/skit2video/internal/skit"
	"github.com/ivlev/skit2video/internal/sound"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the speech endpoint.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	http     *http.Client
	disabled atomic.Bool
}

// NewClientFromEnv builds a client from SKIT_TTS_BASE_URL and
// OPENAI_API_KEY. Returns nil when no key is configured, which callers
// treat as "synthesis off".
func NewClientFromEnv() *Client {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	base := os.Getenv("SKIT_TTS_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		apiKey:  key,
		model:   "tts-1",
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize requests WAV audio for one line. The first failure disables
// the client for the rest of the run.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if c.disabled.Load() {
		return nil, fmt.Errorf("speech synthesis disabled after earlier failure")
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.disabled.Store(true)
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.disabled.Store(true)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech request: status %d: %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}

// Pending is a poll-only future for one synthesized clip. Absence of a
// ready value is an expected state, not an error: callers check Poll and
// move on.
type Pending struct {
	clip skit.ClipID

	mu   sync.Mutex
	buf  *beep.Buffer
	done bool
}

// Poll returns the clip if synthesis finished successfully. It never
// blocks.
func (p *Pending) Poll() (*beep.Buffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done || p.buf == nil {
		return nil, false
	}
	return p.buf, true
}

func (p *Pending) resolve(buf *beep.Buffer) {
	p.mu.Lock()
	p.buf = buf
	p.done = true
	p.mu.Unlock()
}

// Prefetch fires a background synthesis for (text, voice) and returns the
// future tracking it.
func (c *Client) Prefetch(ctx context.Context, clip skit.ClipID, text, voice string) *Pending {
	p := &Pending{clip: clip}
	go func() {
		data, err := c.Synthesize(ctx, text, voice)
		if err != nil {
			log.Printf("[!] TTS for %q failed (%v), falling back to static audio", text, err)
			p.resolve(nil)
			return
		}
		buf, err := sound.DecodeWAV(bytes.NewReader(data))
		if err != nil {
			log.Printf("[!] TTS for %q returned undecodable audio: %v", text, err)
			p.resolve(nil)
			return
		}
		p.resolve(buf)
	}()
	return p
}

// Batch tracks the prefetches for a whole script.
type Batch struct {
	pending []*Pending
}

// Warmup kicks off synthesis for every clip of every line. voices maps a
// speaker to its voice token; the dual line uses both.
func Warmup(ctx context.Context, c *Client, script skit.Script, voice1, voice2 string) *Batch {
	if c == nil {
		return &Batch{}
	}
	b := &Batch{}
	for _, line := range script.Lines() {
		if line.Audio == nil {
			continue
		}
		switch a := line.Audio.(type) {
		case skit.DualSpeaker:
			b.pending = append(b.pending,
				c.Prefetch(ctx, a.A, line.Text, voice1),
				c.Prefetch(ctx, a.B, line.Text, voice2))
		case skit.SingleSpeaker:
			voice := voice1
			if line.Speaker == skit.SpeakerChar2 {
				voice = voice2
			}
			b.pending = append(b.pending, c.Prefetch(ctx, a.Clip, line.Text, voice))
		}
	}
	return b
}

// Install polls every future once and moves ready clips into the library,
// overriding the static assets. It never blocks; call it again later for
// clips that were not ready yet. Returns how many clips were installed.
func (b *Batch) Install(lib *sound.Library) int {
	installed := 0
	remaining := b.pending[:0]
	for _, p := range b.pending {
		p.mu.Lock()
		done, buf := p.done, p.buf
		p.mu.Unlock()
		if !done {
			remaining = append(remaining, p)
			continue
		}
		if buf != nil {
			lib.Put(p.clip, buf)
			installed++
		}
	}
	b.pending = remaining
	return installed
}

// Remaining reports how many futures have neither resolved nor failed yet.
func (b *Batch) Remaining() int { return len(b.pending) }
