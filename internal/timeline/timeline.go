// Package timeline records timestamped audio events during a simulated run
// so the export path can composite a matching track afterwards.
package timeline

import "github.com/ivlev/skit2video/internal/skit"

// Kind classifies an audio event.
type Kind int

const (
	// Dialogue is a spoken line: one clip, or two played simultaneously.
	Dialogue Kind = iota
	// Effect is a one-shot sound.
	Effect
	// LoopSpan is a looping sound that played for Duration ms.
	LoopSpan
)

func (k Kind) String() string {
	switch k {
	case Dialogue:
		return "dialogue"
	case Effect:
		return "effect"
	case LoopSpan:
		return "loop_span"
	}
	return "unknown"
}

// Event is one recorded trigger. Events are immutable once appended and
// their timestamps are monotonic non-decreasing by construction of the
// driving loop.
type Event struct {
	Kind     Kind
	At       int64 // ms from run start
	Clips    []skit.ClipID
	Duration int64 // ms, LoopSpan only
}

// Recorder implements skit.Sounds against a simulated clock. The export
// driver calls SetNow once per tick before updating the controller; every
// event is stamped with that simulated time, not wall-clock capture order.
type Recorder struct {
	now        int64
	events     []Event
	loopClip   skit.ClipID
	loopStart  int64
	loopActive bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetNow advances the simulated clock.
func (r *Recorder) SetNow(ms int64) { r.now = ms }

func (r *Recorder) PlayEffect(clip skit.ClipID) {
	r.events = append(r.events, Event{Kind: Effect, At: r.now, Clips: []skit.ClipID{clip}})
}

func (r *Recorder) PlayDialogue(audio skit.DialogueAudio) {
	if audio == nil {
		return
	}
	r.events = append(r.events, Event{Kind: Dialogue, At: r.now, Clips: audio.Clips()})
}

// PlayLoop opens a loop span. A span is only appended once the loop stops,
// because its duration is computed retroactively.
func (r *Recorder) PlayLoop(clip skit.ClipID) {
	if r.loopActive && r.loopClip == clip {
		return
	}
	if r.loopActive {
		r.closeLoop(r.now)
	}
	r.loopClip = clip
	r.loopStart = r.now
	r.loopActive = true
}

// StopLoop closes the open span, if any, at the current timestamp.
func (r *Recorder) StopLoop() {
	if r.loopActive {
		r.closeLoop(r.now)
	}
}

func (r *Recorder) IsLooping(clip skit.ClipID) bool {
	return r.loopActive && r.loopClip == clip
}

func (r *Recorder) closeLoop(at int64) {
	r.events = append(r.events, Event{
		Kind:     LoopSpan,
		At:       r.loopStart,
		Clips:    []skit.ClipID{r.loopClip},
		Duration: at - r.loopStart,
	})
	r.loopActive = false
	r.loopClip = ""
}

// Finish closes a still-open loop at the final timestamp. Every loop that
// ever played ends up with exactly one span event; nothing dangles.
func (r *Recorder) Finish(ms int64) {
	if r.loopActive {
		r.closeLoop(ms)
	}
}

// Events returns the recorded timeline. Spans are appended when their loop
// stops but carry the loop's start timestamp.
func (r *Recorder) Events() []Event {
	return r.events
}
