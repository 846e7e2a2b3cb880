// Package script persists the skit script as YAML: dialogue text, speakers,
// voices and the clip-to-file mapping.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/skit2video/internal/skit"
)

// Line is one scripted beat as stored on disk.
type Line struct {
	ID      string   `yaml:"id"`
	Text    string   `yaml:"text"`
	Speaker string   `yaml:"speaker"` // char1, char2, both
	Voice   string   `yaml:"voice,omitempty"`
	Clips   []string `yaml:"clips"` // one file; two for a dual-speaker line
}

// Script is a complete skit description.
type Script struct {
	Version string            `yaml:"version"`
	Voice1  string            `yaml:"voice1"`
	Voice2  string            `yaml:"voice2"`
	Lines   []Line            `yaml:"lines"`
	Sounds  map[string]string `yaml:"sounds"` // effect/loop clip id -> file
}

// Beat IDs the controller understands, in playback order.
const (
	BeatWatchIt  = "watch_it"
	BeatKidding  = "kidding"
	BeatHeyYa    = "hey_ya"
	BeatGoToWork = "go_to_work"
	BeatDontCare = "dont_care"
)

// Default returns the built-in script with the canonical asset names.
func Default() *Script {
	return &Script{
		Version: "1.0",
		Voice1:  "alloy",
		Voice2:  "echo",
		Lines: []Line{
			{ID: BeatWatchIt, Text: "WATCH IT!", Speaker: "both",
				Clips: []string{"01_01_watch_it.wav", "01_02_watch_it.wav"}},
			{ID: BeatKidding, Text: "Just kidding, running into people is fun!", Speaker: "char1",
				Clips: []string{"02_01_just_kidding.wav"}},
			{ID: BeatHeyYa, Text: "Hey ya!", Speaker: "char2",
				Clips: []string{"03_02_hey_ya.wav"}},
			{ID: BeatGoToWork, Text: "Okay I have to go to work", Speaker: "char1",
				Clips: []string{"04_01_go_to_work.wav"}},
			{ID: BeatDontCare, Text: "I don't care", Speaker: "char2",
				Clips: []string{"05_02_i_dont_care.wav"}},
		},
		Sounds: map[string]string{
			string(skit.ClipMeow):    "00_00_meow.wav",
			string(skit.ClipCollide): "06_collide.wav",
			string(skit.ClipWalking): "walking.wav",
		},
	}
}

// Read loads a script from a YAML file.
func Read(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// Write saves a script to a YAML file.
func Write(s *Script, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var beatClips = map[string][]skit.ClipID{
	BeatWatchIt:  {skit.ClipWatchIt1, skit.ClipWatchIt2},
	BeatKidding:  {skit.ClipKidding},
	BeatHeyYa:    {skit.ClipHeyYa},
	BeatGoToWork: {skit.ClipGoToWork},
	BeatDontCare: {skit.ClipDontCare},
}

// Skit converts the stored script into the controller's form. Every beat
// must be present; dialogue fallback durations come from the defaults.
func (s *Script) Skit() (skit.Script, error) {
	base := skit.DefaultScript()
	out := base
	for _, line := range s.Lines {
		speaker, err := parseSpeaker(line.Speaker)
		if err != nil {
			return skit.Script{}, fmt.Errorf("line %q: %w", line.ID, err)
		}
		var target *skit.Line
		switch line.ID {
		case BeatWatchIt:
			target = &out.WatchIt
		case BeatKidding:
			target = &out.Kidding
		case BeatHeyYa:
			target = &out.HeyYa
		case BeatGoToWork:
			target = &out.GoToWork
		case BeatDontCare:
			target = &out.DontCare
		default:
			return skit.Script{}, fmt.Errorf("unknown beat %q", line.ID)
		}
		clips := beatClips[line.ID]
		if speaker == skit.SpeakerBoth {
			if len(line.Clips) != 2 {
				return skit.Script{}, fmt.Errorf("beat %q: a dual-speaker line needs two clips", line.ID)
			}
			target.Audio = skit.DualSpeaker{A: clips[0], B: clips[1]}
		} else {
			if len(line.Clips) != 1 {
				return skit.Script{}, fmt.Errorf("beat %q: a single-speaker line needs one clip", line.ID)
			}
			target.Audio = skit.SingleSpeaker{Clip: clips[0]}
		}
		target.Text = line.Text
		target.Speaker = speaker
	}
	return out, nil
}

// ClipFiles resolves every clip the skit can play to its asset filename.
func (s *Script) ClipFiles() map[skit.ClipID]string {
	files := make(map[skit.ClipID]string)
	for id, name := range s.Sounds {
		files[skit.ClipID(id)] = name
	}
	for _, line := range s.Lines {
		clips := beatClips[line.ID]
		for i, name := range line.Clips {
			if i < len(clips) {
				files[clips[i]] = name
			}
		}
	}
	return files
}

func parseSpeaker(s string) (skit.Speaker, error) {
	switch s {
	case "char1":
		return skit.SpeakerChar1, nil
	case "char2":
		return skit.SpeakerChar2, nil
	case "both":
		return skit.SpeakerBoth, nil
	}
	return skit.SpeakerNone, fmt.Errorf("unknown speaker %q", s)
}
