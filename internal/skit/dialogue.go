package skit

// ClipID names a sound asset. The skit only ever refers to clips by these
// tokens; file resolution lives in the script.
type ClipID string

const (
	ClipMeow     ClipID = "meow"
	ClipCollide  ClipID = "collide"
	ClipWalking  ClipID = "walking"
	ClipWatchIt1 ClipID = "watch_it_1"
	ClipWatchIt2 ClipID = "watch_it_2"
	ClipKidding  ClipID = "kidding"
	ClipHeyYa    ClipID = "hey_ya"
	ClipGoToWork ClipID = "go_to_work"
	ClipDontCare ClipID = "dont_care"
)

// Speaker identifies who a line belongs to, which drives subtitle placement
// and talk flags.
type Speaker int

const (
	SpeakerNone Speaker = iota
	SpeakerChar1
	SpeakerChar2
	SpeakerBoth
)

func (s Speaker) String() string {
	switch s {
	case SpeakerChar1:
		return "char1"
	case SpeakerChar2:
		return "char2"
	case SpeakerBoth:
		return "both"
	}
	return "none"
}

// DialogueAudio is the audio payload of a line: either one clip or a pair
// played simultaneously.
type DialogueAudio interface {
	Clips() []ClipID
}

// SingleSpeaker is one clip voiced by one character.
type SingleSpeaker struct {
	Clip ClipID
}

func (s SingleSpeaker) Clips() []ClipID { return []ClipID{s.Clip} }

// DualSpeaker is two clips played at the same instant, one per character.
type DualSpeaker struct {
	A, B ClipID
}

func (d DualSpeaker) Clips() []ClipID { return []ClipID{d.A, d.B} }

// Line is one scripted beat of dialogue.
type Line struct {
	Text       string
	Speaker    Speaker
	Audio      DialogueAudio
	FallbackMS int64 // hold duration when no clip is available
}

// Script holds the five beats of the skit in order.
type Script struct {
	WatchIt  Line
	Kidding  Line
	HeyYa    Line
	GoToWork Line
	DontCare Line
}

// DefaultScript returns the canonical skit dialogue.
func DefaultScript() Script {
	return Script{
		WatchIt: Line{
			Text:       "WATCH IT!",
			Speaker:    SpeakerBoth,
			Audio:      DualSpeaker{A: ClipWatchIt1, B: ClipWatchIt2},
			FallbackMS: 2000,
		},
		Kidding: Line{
			Text:       "Just kidding, running into people is fun!",
			Speaker:    SpeakerChar1,
			Audio:      SingleSpeaker{Clip: ClipKidding},
			FallbackMS: 3000,
		},
		HeyYa: Line{
			Text:       "Hey ya!",
			Speaker:    SpeakerChar2,
			Audio:      SingleSpeaker{Clip: ClipHeyYa},
			FallbackMS: 2000,
		},
		GoToWork: Line{
			Text:       "Okay I have to go to work",
			Speaker:    SpeakerChar1,
			Audio:      SingleSpeaker{Clip: ClipGoToWork},
			FallbackMS: 2500,
		},
		DontCare: Line{
			Text:       "I don't care",
			Speaker:    SpeakerChar2,
			Audio:      SingleSpeaker{Clip: ClipDontCare},
			FallbackMS: 2000,
		},
	}
}

// Lines returns the beats in playback order.
func (s Script) Lines() []Line {
	return []Line{s.WatchIt, s.Kidding, s.HeyYa, s.GoToWork, s.DontCare}
}

// Sounds is what the controller requires from an audio collaborator. The
// live player and the export recorder both satisfy it.
type Sounds interface {
	// PlayEffect fires a one-shot sound.
	PlayEffect(clip ClipID)
	// PlayDialogue starts a line's clip(s).
	PlayDialogue(audio DialogueAudio)
	// PlayLoop starts the looping slot with the given clip. Starting the
	// clip that is already looping is a no-op.
	PlayLoop(clip ClipID)
	// StopLoop stops the looping slot if active.
	StopLoop()
	// IsLooping reports whether the looping slot currently plays clip.
	IsLooping(clip ClipID) bool
}

// ClipDurations measures clips, in milliseconds. Implementations return
// false when a clip is unknown so callers can fall back to script defaults.
type ClipDurations interface {
	ClipDuration(clip ClipID) (int64, bool)
}

type nopSounds struct{}

func (nopSounds) PlayEffect(ClipID)          {}
func (nopSounds) PlayDialogue(DialogueAudio) {}
func (nopSounds) PlayLoop(ClipID)            {}
func (nopSounds) StopLoop()                  {}
func (nopSounds) IsLooping(ClipID) bool      { return false }
