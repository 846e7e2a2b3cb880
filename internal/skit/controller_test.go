package skit

import (
	"image/color"
	"testing"

	"github.com/ivlev/skit2video/internal/config"
)

// soundLog records every Sounds call so tests can assert on audio behavior
// without a speaker.
type soundLog struct {
	effects   []ClipID
	dialogues [][]ClipID
	loopCalls int
	looping   ClipID
}

func (s *soundLog) PlayEffect(clip ClipID) { s.effects = append(s.effects, clip) }
func (s *soundLog) PlayDialogue(audio DialogueAudio) {
	s.dialogues = append(s.dialogues, audio.Clips())
}
func (s *soundLog) PlayLoop(clip ClipID) {
	s.loopCalls++
	s.looping = clip
}
func (s *soundLog) StopLoop()                  { s.looping = "" }
func (s *soundLog) IsLooping(clip ClipID) bool { return s.looping == clip }

func (s *soundLog) countEffect(clip ClipID) int {
	n := 0
	for _, e := range s.effects {
		if e == clip {
			n++
		}
	}
	return n
}

// stubDurations serves fixed clip lengths.
type stubDurations map[ClipID]int64

func (d stubDurations) ClipDuration(clip ClipID) (int64, bool) {
	ms, ok := d[clip]
	return ms, ok
}

func newTestController(sounds Sounds, durations ClipDurations, extended bool) *Controller {
	c1 := NewCharacter("char1", "onyx", -50, 400, color.RGBA{B: 255, A: 255})
	c2 := NewCharacter("char2", "nova", 1010, 400, color.RGBA{R: 255, A: 255})
	c2.Direction = -1
	return NewController(Params{
		Char1:     c1,
		Char2:     c2,
		Sounds:    sounds,
		Durations: durations,
		Extended:  extended,
	})
}

// runSkit ticks the controller to completion, returning the deduplicated
// phase sequence. Fails the test if the skit never finishes.
func runSkit(t *testing.T, c *Controller, tickMS int64) []Phase {
	t.Helper()
	var phases []Phase
	record := func() {
		ph := c.Phase()
		if len(phases) == 0 || phases[len(phases)-1] != ph {
			phases = append(phases, ph)
		}
	}
	record()
	for now := int64(0); now < 120_000; now += tickMS {
		c.Update(now)
		record()
		if c.Finished() {
			return phases
		}
	}
	t.Fatalf("skit did not finish within 120s, stuck in %s", c.Phase())
	return nil
}

func TestPhaseOrder(t *testing.T) {
	c := newTestController(&soundLog{}, nil, false)
	got := runSkit(t, c, 16)

	want := []Phase{
		PhaseCatRun, PhaseWalkingIn, PhaseCollision, PhaseKiddingDialogue,
		PhaseHeyYaDialogue, PhaseBumpSequence, PhaseCollisionLoop,
		PhaseFinalDialogue1, PhaseFinalDialogue2, PhaseWalkingOut, PhaseFinished,
	}
	if len(got) != len(want) {
		t.Fatalf("phase sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("phase[%d] = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestPhaseOrderExtended(t *testing.T) {
	c := newTestController(&soundLog{}, nil, true)
	got := runSkit(t, c, 16)

	sawAbduction := false
	for i, ph := range got {
		if ph == PhaseAlienAbduction {
			sawAbduction = true
			if got[i-1] != PhaseFinalDialogue2 {
				t.Errorf("abduction after %s, want %s", got[i-1], PhaseFinalDialogue2)
			}
			if got[i+1] != PhaseWalkingOut {
				t.Errorf("abduction followed by %s, want %s", got[i+1], PhaseWalkingOut)
			}
		}
	}
	if !sawAbduction {
		t.Fatalf("extended run skipped the abduction: %v", got)
	}
}

func TestMeowFiresExactlyOnce(t *testing.T) {
	log := &soundLog{}
	c := newTestController(log, nil, false)
	runSkit(t, c, 16)

	if n := log.countEffect(ClipMeow); n != 1 {
		t.Errorf("meow played %d times, want 1", n)
	}
}

func TestSkipIntro(t *testing.T) {
	log := &soundLog{}
	c1 := NewCharacter("char1", "", -50, 400, color.RGBA{B: 255, A: 255})
	c2 := NewCharacter("char2", "", 1010, 400, color.RGBA{R: 255, A: 255})
	c2.Direction = -1
	c := NewController(Params{Char1: c1, Char2: c2, Sounds: log, SkipIntro: true})

	if c.Phase() != PhaseWalkingIn {
		t.Fatalf("skip-intro starts in %s, want %s", c.Phase(), PhaseWalkingIn)
	}
	if c.Cat.Visible {
		t.Error("cat visible despite skipped intro")
	}
	runSkit(t, c, 16)
	if n := log.countEffect(ClipMeow); n != 0 {
		t.Errorf("meow played %d times with intro skipped, want 0", n)
	}
}

func TestBumpImpactCountAcrossTickRates(t *testing.T) {
	for _, tick := range []int64{7, 16, 33} {
		log := &soundLog{}
		c := newTestController(log, nil, false)

		bumpCollides := 0
		for now := int64(0); now < 120_000; now += tick {
			before := log.countEffect(ClipCollide)
			c.Update(now)
			if c.Phase() == PhaseBumpSequence {
				bumpCollides += log.countEffect(ClipCollide) - before
			}
			if c.Finished() {
				break
			}
		}
		if !c.Finished() {
			t.Fatalf("tick=%dms: skit did not finish", tick)
		}
		if bumpCollides != config.BumpImpacts {
			t.Errorf("tick=%dms: %d bump impacts, want %d", tick, bumpCollides, config.BumpImpacts)
		}
	}
}

func TestMeetingStopsCharacters(t *testing.T) {
	c := newTestController(&soundLog{}, nil, false)

	for now := int64(0); now < 60_000; now += 16 {
		c.Update(now)
		if c.Phase() == PhaseCollision {
			break
		}
	}
	if c.Phase() != PhaseCollision {
		t.Fatal("never reached the collision phase")
	}

	mid := float64(config.ScreenWidth) / 2
	if d := c.Char1.CenterX() - mid; d < -config.MeetingDistance || d > 0 {
		t.Errorf("char1 center %f, want within %d left of mid", c.Char1.CenterX(), config.MeetingDistance)
	}
	if d := c.Char2.CenterX() - mid; d > config.MeetingDistance || d < 0 {
		t.Errorf("char2 center %f, want within %d right of mid", c.Char2.CenterX(), config.MeetingDistance)
	}
	if c.Char1.Speed != 0 || c.Char2.Speed != 0 {
		t.Errorf("speeds after meeting = %f, %f, want 0, 0", c.Char1.Speed, c.Char2.Speed)
	}
	if c.Char1.Walking || c.Char2.Walking {
		t.Error("characters still walking after meeting")
	}
}

func TestWalkingLoopFollowsMovement(t *testing.T) {
	log := &soundLog{}
	c := newTestController(log, nil, false)

	// During walking-in the footstep loop must be running.
	for now := int64(0); c.Phase() != PhaseCollision; now += 16 {
		c.Update(now)
		if now > 60_000 {
			t.Fatal("never reached the collision phase")
		}
	}
	if log.looping != "" {
		t.Errorf("loop %q still running after characters stopped", log.looping)
	}
	if log.loopCalls == 0 {
		t.Error("footstep loop never started during walking-in")
	}
}

func TestCollisionLoopWallBounce(t *testing.T) {
	c := newTestController(&soundLog{}, nil, false)
	c.state = &collisionLoopState{start: 0}
	c.Char1.SetSpeed(config.CollisionSpeed)
	c.Char2.SetSpeed(config.CollisionSpeed)

	c.Char1.X = -10
	c.Char1.Direction = -1
	c.Char2.X = float64(config.ScreenWidth) // past the right edge
	c.Char2.Direction = 1

	c.Update(16)

	if c.Char1.Direction != 1 {
		t.Errorf("char1 direction at left wall = %d, want 1", c.Char1.Direction)
	}
	if c.Char2.Direction != -1 {
		t.Errorf("char2 direction at right wall = %d, want -1", c.Char2.Direction)
	}
}

func TestCollisionLoopSeparatesOnImpact(t *testing.T) {
	log := &soundLog{}
	c := newTestController(log, nil, false)
	c.state = &collisionLoopState{start: 0}
	c.Char1.SetSpeed(0)
	c.Char2.SetSpeed(0)

	// Slightly overlapping characters must reverse, separate and collide
	// only once.
	c.Char1.X = 480
	c.Char1.Direction = 1
	c.Char2.X = 518
	c.Char2.Direction = -1

	c.Update(16)
	if n := log.countEffect(ClipCollide); n != 1 {
		t.Fatalf("collide played %d times, want 1", n)
	}
	if c.Char1.Bounds().Intersects(c.Char2.Bounds()) {
		t.Error("characters still overlap after the separation nudge")
	}
	c.Update(32)
	if n := log.countEffect(ClipCollide); n != 1 {
		t.Errorf("collide re-fired on the next tick, total %d", n)
	}
}

func TestDialogueDurationGating(t *testing.T) {
	durations := stubDurations{
		ClipWatchIt1: 1200,
		ClipWatchIt2: 900, // the longer clip of the pair wins
	}
	c := newTestController(&soundLog{}, durations, false)

	var entered, left int64 = -1, -1
	for now := int64(0); now < 60_000; now += 16 {
		c.Update(now)
		switch {
		case c.Phase() == PhaseCollision && entered < 0:
			entered = now
		case c.Phase() != PhaseCollision && entered >= 0:
			left = now
		}
		if left >= 0 {
			break
		}
	}
	if entered < 0 || left < 0 {
		t.Fatal("collision phase never entered or never left")
	}

	held := left - entered
	if held < 1200 || held > 1200+48 {
		t.Errorf("collision held %dms, want ~1200ms (longest measured clip)", held)
	}
}

func TestDialogueFallbackDuration(t *testing.T) {
	// No measured durations: the script fallback applies.
	c := newTestController(&soundLog{}, stubDurations{}, false)

	var entered, left int64 = -1, -1
	for now := int64(0); now < 60_000; now += 16 {
		c.Update(now)
		switch {
		case c.Phase() == PhaseCollision && entered < 0:
			entered = now
		case c.Phase() != PhaseCollision && entered >= 0:
			left = now
		}
		if left >= 0 {
			break
		}
	}
	held := left - entered
	if held < config.WatchItFallback || held > config.WatchItFallback+48 {
		t.Errorf("collision held %dms, want ~%dms fallback", held, config.WatchItFallback)
	}
}

func TestDualSpeakerDialogue(t *testing.T) {
	log := &soundLog{}
	c := newTestController(log, nil, false)
	runSkit(t, c, 16)

	dual := 0
	for _, clips := range log.dialogues {
		if len(clips) == 2 {
			dual++
		}
	}
	if dual != 1 {
		t.Errorf("%d two-speaker dialogue plays, want exactly 1", dual)
	}
}

func TestFinishedIsTerminal(t *testing.T) {
	c := newTestController(&soundLog{}, nil, false)
	runSkit(t, c, 16)

	at, ok := c.FinishedAt()
	if !ok {
		t.Fatal("FinishedAt unset after finishing")
	}
	c.Update(at + 10_000)
	if !c.Finished() {
		t.Error("left the finished phase on a later tick")
	}
	if again, _ := c.FinishedAt(); again != at {
		t.Errorf("FinishedAt moved from %d to %d", at, again)
	}
}

func TestAbductionLift(t *testing.T) {
	c := newTestController(&soundLog{}, nil, true)
	c.state = c.enterAbduction(0)
	baseY := c.Char2.Y

	c.Update(1500)
	if c.Char2.Y != baseY {
		t.Errorf("char2 lifted before 1500ms: y=%f, want %f", c.Char2.Y, baseY)
	}

	c.Update(3500)
	if want := baseY - config.AbductionLift; c.Char2.Y != want {
		t.Errorf("char2 y after full lift = %f, want %f", c.Char2.Y, want)
	}
	if c.UFO.BeamAlpha != 150 {
		t.Errorf("beam alpha = %f, want 150", c.UFO.BeamAlpha)
	}

	c.Update(4500)
	if c.UFO.Visible {
		t.Error("UFO still visible after the abduction window")
	}
	if c.Phase() != PhaseWalkingOut {
		t.Errorf("phase after abduction = %s, want %s", c.Phase(), PhaseWalkingOut)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	c := newTestController(&soundLog{}, nil, false)
	// Run past the cat pre-roll so the characters are moving.
	for now := int64(0); now <= 800; now += 16 {
		c.Update(now)
	}
	snap := c.Snapshot()

	c.Update(816)
	if snap.TimeMS != 800 {
		t.Errorf("snapshot mutated: TimeMS = %d, want 800", snap.TimeMS)
	}
	if snap.Char1.X == c.Char1.X {
		t.Error("snapshot shares character state with the live controller")
	}
}
