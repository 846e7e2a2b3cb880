package skit

// Phase is one discrete stage of the skit. Transitions run strictly forward;
// only the bump sequence loops internally before advancing.
type Phase int

const (
	PhaseCatRun Phase = iota
	PhaseWalkingIn
	PhaseCollision
	PhaseKiddingDialogue
	PhaseHeyYaDialogue
	PhaseBumpSequence
	PhaseCollisionLoop
	PhaseFinalDialogue1
	PhaseFinalDialogue2
	PhaseAlienAbduction
	PhaseWalkingOut
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseCatRun:          "cat_run",
	PhaseWalkingIn:       "walking_in",
	PhaseCollision:       "collision",
	PhaseKiddingDialogue: "kidding_dialogue",
	PhaseHeyYaDialogue:   "hey_ya_dialogue",
	PhaseBumpSequence:    "bump_sequence",
	PhaseCollisionLoop:   "collision_loop",
	PhaseFinalDialogue1:  "final_dialogue_1",
	PhaseFinalDialogue2:  "final_dialogue_2",
	PhaseAlienAbduction:  "alien_abduction",
	PhaseWalkingOut:      "walking_out",
	PhaseFinished:        "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// phaseState is the per-phase working data. Each phase owns exactly the
// fields it needs; update applies one tick and returns the state that is
// active afterwards (itself, or the next phase's state).
type phaseState interface {
	phase() Phase
	update(c *Controller, now int64) phaseState
}
