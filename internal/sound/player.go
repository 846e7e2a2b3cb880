package sound

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ivlev/skit2video/internal/skit"
)

// Player plays library clips through the speaker during a live run. It
// implements skit.Sounds. The looping slot is explicit state: queries check
// the slot, not the identity of whatever sound happened to start last.
type Player struct {
	mu          sync.Mutex
	lib         *Library
	mixer       *beep.Mixer
	loop        *beep.Ctrl
	loopClip    skit.ClipID
	initialized bool
}

func NewPlayer(lib *Library) *Player {
	return &Player{
		lib:   lib,
		mixer: &beep.Mixer{},
	}
}

// Init opens the speaker and attaches the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close stops everything. The speaker itself has no close; clearing the
// mixer is enough to silence it.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	if p.loop != nil {
		p.loop.Paused = true
		p.loop = nil
		p.loopClip = ""
	}
	p.mixer.Clear()
	p.initialized = false
}

// PlayEffect fires a one-shot clip.
func (p *Player) PlayEffect(clip skit.ClipID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixClip(clip)
}

// PlayDialogue starts every clip of a line simultaneously.
func (p *Player) PlayDialogue(audio skit.DialogueAudio) {
	if audio == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, clip := range audio.Clips() {
		p.mixClip(clip)
	}
}

// PlayLoop starts the looping slot with clip. Restarting the clip that is
// already looping is a no-op.
func (p *Player) PlayLoop(clip skit.ClipID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	if p.loop != nil && !p.loop.Paused && p.loopClip == clip {
		return
	}
	if p.loop != nil {
		p.loop.Paused = true
	}
	buf, ok := p.lib.Clip(clip)
	if !ok || buf.Len() == 0 {
		p.loop = nil
		p.loopClip = ""
		return
	}
	ctrl := &beep.Ctrl{Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len()))}
	p.mixer.Add(ctrl)
	p.loop = ctrl
	p.loopClip = clip
}

// StopLoop pauses the looping slot.
func (p *Player) StopLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loop != nil {
		p.loop.Paused = true
		p.loop = nil
		p.loopClip = ""
	}
}

// IsLooping reports whether the looping slot currently plays clip.
func (p *Player) IsLooping(clip skit.ClipID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop != nil && !p.loop.Paused && p.loopClip == clip
}

func (p *Player) mixClip(clip skit.ClipID) {
	if !p.initialized {
		return
	}
	buf, ok := p.lib.Clip(clip)
	if !ok || buf.Len() == 0 {
		return
	}
	p.mixer.Add(buf.Streamer(0, buf.Len()))
}
