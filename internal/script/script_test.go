package script

import (
	"path/filepath"
	"testing"

	"github.com/ivlev/skit2video/internal/skit"
)

func TestDefaultScriptConverts(t *testing.T) {
	s := Default()
	sk, err := s.Skit()
	if err != nil {
		t.Fatalf("default script invalid: %v", err)
	}

	if sk.WatchIt.Speaker != skit.SpeakerBoth {
		t.Errorf("watch_it speaker = %s, want both", sk.WatchIt.Speaker)
	}
	if clips := sk.WatchIt.Audio.Clips(); len(clips) != 2 {
		t.Errorf("watch_it has %d clips, want 2", len(clips))
	}
	if sk.Kidding.Speaker != skit.SpeakerChar1 || sk.DontCare.Speaker != skit.SpeakerChar2 {
		t.Error("single-speaker beats assigned to the wrong characters")
	}
	for _, l := range sk.Lines() {
		if l.FallbackMS <= 0 {
			t.Errorf("line %q lost its fallback duration", l.Text)
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")

	orig := Default()
	orig.Voice2 = "nova"
	orig.Lines[1].Text = "Running into people is great, actually"
	if err := Write(orig, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Voice2 != "nova" {
		t.Errorf("voice2 = %q, want nova", got.Voice2)
	}
	if got.Lines[1].Text != orig.Lines[1].Text {
		t.Errorf("line text = %q, want %q", got.Lines[1].Text, orig.Lines[1].Text)
	}
	if len(got.Sounds) != len(orig.Sounds) {
		t.Errorf("sounds map lost entries: %d vs %d", len(got.Sounds), len(orig.Sounds))
	}
	if _, err := got.Skit(); err != nil {
		t.Errorf("round-tripped script invalid: %v", err)
	}
}

func TestSkitRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Script)
	}{
		{"unknown speaker", func(s *Script) { s.Lines[0].Speaker = "narrator" }},
		{"unknown beat", func(s *Script) { s.Lines[0].ID = "watch_out" }},
		{"dual line with one clip", func(s *Script) { s.Lines[0].Clips = s.Lines[0].Clips[:1] }},
		{"single line with two clips", func(s *Script) {
			s.Lines[1].Clips = append(s.Lines[1].Clips, "extra.wav")
		}},
	}
	for _, tt := range tests {
		s := Default()
		tt.mutate(s)
		if _, err := s.Skit(); err == nil {
			t.Errorf("%s: Skit() accepted an invalid script", tt.name)
		}
	}
}

func TestClipFiles(t *testing.T) {
	files := Default().ClipFiles()

	wantClips := []skit.ClipID{
		skit.ClipMeow, skit.ClipCollide, skit.ClipWalking,
		skit.ClipWatchIt1, skit.ClipWatchIt2, skit.ClipKidding,
		skit.ClipHeyYa, skit.ClipGoToWork, skit.ClipDontCare,
	}
	for _, id := range wantClips {
		if files[id] == "" {
			t.Errorf("clip %q has no asset file", id)
		}
	}
	if files[skit.ClipWatchIt1] == files[skit.ClipWatchIt2] {
		t.Error("dual-speaker clips map to the same file")
	}
}
