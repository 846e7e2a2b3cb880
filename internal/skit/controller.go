package skit

import (
	"math"

	"github.com/ivlev/skit2video/internal/config"
)

// CatState is the decorative pre-roll prop, exposed for rendering.
type CatState struct {
	Visible  bool
	X, Scale float64
}

// UFOState is the abduction prop, exposed for rendering.
type UFOState struct {
	Visible   bool
	Y         float64
	BeamAlpha float64 // 0..150
}

// DialogueState is the line currently on screen, exposed for rendering.
type DialogueState struct {
	Text    string
	Speaker Speaker
	Since   int64 // ms, when the line appeared
}

// Frame is a copy of everything a renderer needs to draw one tick.
type Frame struct {
	TimeMS   int64
	Phase    Phase
	Char1    Character
	Char2    Character
	Cat      CatState
	UFO      UFOState
	Dialogue DialogueState
}

// Params configures a Controller.
type Params struct {
	Char1, Char2 *Character
	Sounds       Sounds        // nil runs silently
	Durations    ClipDurations // nil uses script fallbacks
	Script       Script        // zero value uses DefaultScript
	ScreenW      float64
	ScreenH      float64
	SkipIntro    bool // start at WalkingIn, no cat pre-roll
	Extended     bool // include the alien abduction
}

// Controller owns the two characters and drives the skit's phase machine.
// It is purely tick-driven: Update is called with a monotonic millisecond
// timestamp and applies all transitions synchronously. It never blocks.
type Controller struct {
	Char1, Char2 *Character
	Cat          CatState
	UFO          UFOState
	Dialogue     DialogueState

	sounds    Sounds
	durations ClipDurations
	script    Script
	screenW   float64
	screenH   float64
	extended  bool

	state       phaseState
	lastNow     int64
	finishedAt  int64
	finishedSet bool
}

// NewController wires up the phase machine. Characters keep whatever
// position, speed and direction the caller gave them.
func NewController(p Params) *Controller {
	c := &Controller{
		Char1:     p.Char1,
		Char2:     p.Char2,
		sounds:    p.Sounds,
		durations: p.Durations,
		script:    p.Script,
		screenW:   p.ScreenW,
		screenH:   p.ScreenH,
		extended:  p.Extended,
	}
	if c.sounds == nil {
		c.sounds = nopSounds{}
	}
	if c.script.WatchIt.Text == "" {
		c.script = DefaultScript()
	}
	if c.screenW == 0 {
		c.screenW = config.ScreenWidth
	}
	if c.screenH == 0 {
		c.screenH = config.ScreenHeight
	}
	if p.SkipIntro {
		c.state = &walkingInState{}
	} else {
		c.state = &catRunState{}
		c.Cat = CatState{Visible: true, X: -100, Scale: 0.1}
	}
	return c
}

// Update advances the machine to the given timestamp. Timestamps must be
// monotonically non-decreasing; one call is one tick.
func (c *Controller) Update(now int64) {
	c.lastNow = now
	c.state = c.state.update(c, now)
}

// Phase returns the currently active phase.
func (c *Controller) Phase() Phase { return c.state.phase() }

// Finished reports whether the terminal phase has been reached.
func (c *Controller) Finished() bool { return c.Phase() == PhaseFinished }

// FinishedAt returns the timestamp of the first tick inside the Finished
// phase, used by drivers for the auto-close delay.
func (c *Controller) FinishedAt() (int64, bool) {
	return c.finishedAt, c.finishedSet
}

// Snapshot copies the visible state as of the last Update.
func (c *Controller) Snapshot() Frame {
	return Frame{
		TimeMS:   c.lastNow,
		Phase:    c.Phase(),
		Char1:    *c.Char1,
		Char2:    *c.Char2,
		Cat:      c.Cat,
		UFO:      c.UFO,
		Dialogue: c.Dialogue,
	}
}

// lineDuration returns the hold time for a line: the longest measured clip,
// or the script fallback when nothing is measured.
func (c *Controller) lineDuration(line Line) int64 {
	if c.durations != nil && line.Audio != nil {
		var best int64
		found := false
		for _, clip := range line.Audio.Clips() {
			if d, ok := c.durations.ClipDuration(clip); ok {
				found = true
				if d > best {
					best = d
				}
			}
		}
		if found {
			return best
		}
	}
	return line.FallbackMS
}

// manageWalkingLoop ties the footstep loop to actual movement: it runs while
// anyone walks with nonzero speed and stops the instant nobody does.
func (c *Controller) manageWalkingLoop() {
	walking := (c.Char1.Walking && c.Char1.Speed > 0) ||
		(c.Char2.Walking && c.Char2.Speed > 0)
	if walking {
		if !c.sounds.IsLooping(ClipWalking) {
			c.sounds.PlayLoop(ClipWalking)
		}
	} else if c.sounds.IsLooping(ClipWalking) {
		c.sounds.StopLoop()
	}
}

func (c *Controller) showLine(line Line, now int64) {
	c.Dialogue = DialogueState{Text: line.Text, Speaker: line.Speaker, Since: now}
	c.Char1.SetTalking(line.Speaker == SpeakerChar1 || line.Speaker == SpeakerBoth)
	c.Char2.SetTalking(line.Speaker == SpeakerChar2 || line.Speaker == SpeakerBoth)
	if line.Audio != nil {
		c.sounds.PlayDialogue(line.Audio)
	}
}

func (c *Controller) clearLine() {
	c.Dialogue = DialogueState{}
	c.Char1.SetTalking(false)
	c.Char2.SetTalking(false)
}

// --- cat pre-roll ---

type catRunState struct {
	started bool
	start   int64
	meowed  bool
}

func (s *catRunState) phase() Phase { return PhaseCatRun }

func (s *catRunState) update(c *Controller, now int64) phaseState {
	if !s.started {
		s.started = true
		s.start = now
	}
	elapsed := now - s.start
	if elapsed >= config.CatRunDuration {
		c.Cat.Visible = false
		return &walkingInState{}
	}

	progress := float64(elapsed) / config.CatRunDuration
	c.Cat.Visible = true
	c.Cat.X = -100 + (c.screenW+200)*progress
	// Peak size at 60% progress, when the cat is closest to the camera.
	if progress < 0.6 {
		c.Cat.Scale = 0.1 + (progress/0.6)*1.4
	} else {
		c.Cat.Scale = 1.5 - ((progress-0.6)/0.4)*1.4
	}

	// The trigger stays true until the end of the run; the flag makes the
	// meow fire at most once.
	if progress >= config.CatMeowProgress && !s.meowed {
		c.sounds.PlayEffect(ClipMeow)
		s.meowed = true
	}
	return s
}

// --- walking in ---

type walkingInState struct{}

func (s *walkingInState) phase() Phase { return PhaseWalkingIn }

func (s *walkingInState) update(c *Controller, now int64) phaseState {
	c.Char1.SetWalking(true)
	c.Char2.SetWalking(true)
	c.Char1.Move()
	c.Char2.Move()
	c.manageWalkingLoop()

	mid := c.screenW / 2
	if c.Char1.CenterX() >= mid-config.MeetingDistance &&
		c.Char2.CenterX() <= mid+config.MeetingDistance {
		return c.enterCollision(now)
	}
	return s
}

func (c *Controller) enterCollision(now int64) phaseState {
	c.Char1.SetSpeed(0)
	c.Char2.SetSpeed(0)
	c.Char1.SetWalking(false)
	c.Char2.SetWalking(false)
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.sounds.StopLoop()
	c.sounds.PlayEffect(ClipCollide)
	c.showLine(c.script.WatchIt, now)
	return &dialogueHoldState{
		ph:    PhaseCollision,
		line:  c.script.WatchIt,
		start: now,
		exit: func(c *Controller, now int64) phaseState {
			return c.enterKidding(now)
		},
	}
}

// --- duration-gated dialogue holds ---

// dialogueHoldState holds one phase for the line's audio duration (plus an
// optional grace period), then hands off.
type dialogueHoldState struct {
	ph    Phase
	line  Line
	start int64
	grace int64
	exit  func(c *Controller, now int64) phaseState
}

func (s *dialogueHoldState) phase() Phase { return s.ph }

func (s *dialogueHoldState) update(c *Controller, now int64) phaseState {
	if now-s.start > c.lineDuration(s.line)+s.grace {
		c.clearLine()
		return s.exit(c, now)
	}
	return s
}

func (c *Controller) enterKidding(now int64) phaseState {
	c.showLine(c.script.Kidding, now)
	return &dialogueHoldState{
		ph:    PhaseKiddingDialogue,
		line:  c.script.Kidding,
		start: now,
		exit: func(c *Controller, now int64) phaseState {
			return c.enterHeyYa(now)
		},
	}
}

func (c *Controller) enterHeyYa(now int64) phaseState {
	c.showLine(c.script.HeyYa, now)
	return &dialogueHoldState{
		ph:    PhaseHeyYaDialogue,
		line:  c.script.HeyYa,
		start: now,
		exit: func(c *Controller, now int64) phaseState {
			return c.enterBumpSequence(now)
		},
	}
}

// --- bump sequence ---

type bumpSub int

const (
	bumpApproaching bumpSub = iota
	bumpBackingUp
)

type bumpState struct {
	sub   bumpSub
	count int
	since int64 // start of the current backing-up window
}

func (s *bumpState) phase() Phase { return PhaseBumpSequence }

func (s *bumpState) update(c *Controller, now int64) phaseState {
	switch s.sub {
	case bumpApproaching:
		c.Char1.Move()
		c.Char2.Move()
		c.manageWalkingLoop()
		if c.Char1.Bounds().Intersects(c.Char2.Bounds()) {
			s.count++
			s.sub = bumpBackingUp
			s.since = now
			c.Char1.Direction = -1
			c.Char2.Direction = 1
			c.sounds.PlayEffect(ClipCollide)
		}

	case bumpBackingUp:
		// Window check comes first so the 5th impact's retreat fully
		// elapses before advancing: exactly 5 impacts, never 6.
		if now-s.since > config.BumpBackUpWindow {
			if s.count >= config.BumpImpacts {
				return c.enterCollisionLoop(now)
			}
			s.sub = bumpApproaching
			c.Char1.Direction = 1
			c.Char2.Direction = -1
			return s
		}
		c.Char1.Move()
		c.Char2.Move()
		c.manageWalkingLoop()
	}
	return s
}

func (c *Controller) enterBumpSequence(now int64) phaseState {
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.Char1.SetSpeed(config.BumpSpeed)
	c.Char2.SetSpeed(config.BumpSpeed)
	c.Char1.SetWalking(true)
	c.Char2.SetWalking(true)
	c.Char1.Direction = 1
	c.Char2.Direction = -1
	return &bumpState{sub: bumpApproaching}
}

// --- collision loop ---

type collisionLoopState struct {
	start int64
}

func (s *collisionLoopState) phase() Phase { return PhaseCollisionLoop }

func (s *collisionLoopState) update(c *Controller, now int64) phaseState {
	c.Char1.Move()
	c.Char2.Move()
	c.manageWalkingLoop()

	if c.Char1.Bounds().Intersects(c.Char2.Bounds()) {
		c.Char1.ReverseDirection()
		c.Char2.ReverseDirection()
		// Nudge apart in the same tick as the reversal, otherwise the
		// overlap is re-detected forever at the same position.
		c.Char1.X -= config.SeparationNudge
		c.Char2.X += config.SeparationNudge
		c.sounds.PlayEffect(ClipCollide)
	}

	if c.Char1.X < 0 {
		c.Char1.Direction = 1
	} else if c.Char1.X > c.screenW-c.Char1.Width {
		c.Char1.Direction = -1
	}
	if c.Char2.X < 0 {
		c.Char2.Direction = 1
	} else if c.Char2.X > c.screenW-c.Char2.Width {
		c.Char2.Direction = -1
	}

	if now-s.start > config.CollisionLoopTime {
		return c.enterFinalDialogue1(now)
	}
	return s
}

func (c *Controller) enterCollisionLoop(now int64) phaseState {
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.Char1.SetSpeed(config.CollisionSpeed)
	c.Char2.SetSpeed(config.CollisionSpeed)
	c.Char1.SetWalking(true)
	c.Char2.SetWalking(true)
	c.Dialogue = DialogueState{}
	return &collisionLoopState{start: now}
}

// --- final dialogues ---

func (c *Controller) enterFinalDialogue1(now int64) phaseState {
	c.Char1.SetSpeed(0)
	c.Char2.SetSpeed(0)
	c.Char1.SetWalking(false)
	c.Char2.SetWalking(false)
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.sounds.StopLoop()
	c.showLine(c.script.GoToWork, now)
	return &dialogueHoldState{
		ph:    PhaseFinalDialogue1,
		line:  c.script.GoToWork,
		start: now,
		exit: func(c *Controller, now int64) phaseState {
			return c.enterFinalDialogue2(now)
		},
	}
}

func (c *Controller) enterFinalDialogue2(now int64) phaseState {
	c.showLine(c.script.DontCare, now)
	return &dialogueHoldState{
		ph:    PhaseFinalDialogue2,
		line:  c.script.DontCare,
		start: now,
		grace: config.FinalGracePeriod,
		exit: func(c *Controller, now int64) phaseState {
			if c.extended {
				return c.enterAbduction(now)
			}
			return c.enterWalkingOut()
		},
	}
}

// --- alien abduction (extended variant) ---

type abductionState struct {
	start int64
	baseY float64 // char2's ground position before the lift
}

func (s *abductionState) phase() Phase { return PhaseAlienAbduction }

func (s *abductionState) update(c *Controller, now int64) phaseState {
	elapsed := now - s.start

	// UFO descends over the first second.
	if elapsed < 1000 {
		c.UFO.Y = -100 + float64(elapsed)/1000*150
	} else {
		c.UFO.Y = 50
	}

	// Beam fades in over [500,1500] and caps at 150.
	if elapsed > 500 && elapsed < 1500 {
		c.UFO.BeamAlpha = math.Min(150, float64(elapsed-500)/1000*150)
	} else if elapsed >= 1500 {
		c.UFO.BeamAlpha = 150
	}

	// Char2 drifts upward over [1500,3500], keyed to elapsed time so the
	// lift height does not depend on tick granularity.
	if elapsed > 1500 {
		lift := math.Min(1, float64(elapsed-1500)/2000)
		c.Char2.Y = s.baseY - lift*config.AbductionLift
	}

	if elapsed > config.AbductionDuration {
		c.UFO.Visible = false
		return c.enterWalkingOut()
	}
	return s
}

func (c *Controller) enterAbduction(now int64) phaseState {
	c.Char1.SetSpeed(0)
	c.Char2.SetSpeed(0)
	c.Char1.SetWalking(false)
	c.Char2.SetWalking(false)
	c.Dialogue = DialogueState{}
	c.UFO = UFOState{Visible: true, Y: -100}
	return &abductionState{start: now, baseY: c.Char2.Y}
}

// --- walking out ---

type walkingOutState struct{}

func (s *walkingOutState) phase() Phase { return PhaseWalkingOut }

func (s *walkingOutState) update(c *Controller, now int64) phaseState {
	c.Char1.Move()
	c.Char2.Move()
	c.manageWalkingLoop()

	if c.Char1.X > c.screenW && c.Char2.X < -c.Char2.Width {
		return c.enterFinished()
	}
	return s
}

func (c *Controller) enterWalkingOut() phaseState {
	c.Char1.SetSpeed(config.CharacterSpeed)
	c.Char2.SetSpeed(config.CharacterSpeed)
	c.Char1.Direction = 1  // exits right
	c.Char2.Direction = -1 // exits left
	c.Char1.SetWalking(true)
	c.Char2.SetWalking(true)
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.Dialogue = DialogueState{}
	return &walkingOutState{}
}

// --- finished ---

type finishedState struct{}

func (s *finishedState) phase() Phase { return PhaseFinished }

func (s *finishedState) update(c *Controller, now int64) phaseState {
	if !c.finishedSet {
		c.finishedAt = now
		c.finishedSet = true
	}
	return s
}

func (c *Controller) enterFinished() phaseState {
	c.Char1.SetWalking(false)
	c.Char2.SetWalking(false)
	c.Char1.SetSmiling(true)
	c.Char2.SetSmiling(true)
	c.sounds.StopLoop()
	c.Dialogue = DialogueState{}
	return &finishedState{}
}
