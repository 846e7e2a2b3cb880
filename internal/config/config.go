package config

// Stage dimensions and pacing. The skit is simulated on a fixed 1000x600
// stage regardless of the export resolution; presets crop/scale afterwards.
const (
	ScreenWidth  = 1000
	ScreenHeight = 600
	FPS          = 60

	CharacterWidth  = 40
	CharacterHeight = 60
	CharacterSpeed  = 3
	HeadRadius      = 20
)

// Phase timing in milliseconds. Dialogue values are fallbacks used when the
// measured clip duration is unavailable.
const (
	CatRunDuration    = 700
	CatMeowProgress   = 0.55
	MeetingDistance   = 50 // half-width of the collision trigger window around center
	WatchItFallback   = 2000
	KiddingFallback   = 3000
	HeyYaFallback     = 2000
	GoToWorkFallback  = 2500
	DontCareFallback  = 2000
	FinalGracePeriod  = 400
	BumpBackUpWindow  = 500
	BumpImpacts       = 5
	BumpSpeed         = 3
	CollisionLoopTime = 6000
	CollisionSpeed    = 2
	SeparationNudge   = 5
	AbductionDuration = 4000
	AbductionLift     = 120
	FinishedLinger    = 1000
)

// Config carries the CLI-resolved settings for one run or export.
type Config struct {
	OutputVideo  string
	Width        int // output resolution (after preset crop/scale)
	Height       int
	FPS          int
	Preset       string
	Workers      int
	VideoEncoder string
	Quality      int

	AssetsDir    string
	ScriptPath   string
	BackdropPath string

	QRLink          string
	EndCardDuration float64 // seconds

	Extended  bool // alien abduction variant
	SkipIntro bool // start at WalkingIn, no cat pre-roll

	ShowStats    bool
	BuildVersion string
}
