package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ivlev/skit2video/internal/config"
	"github.com/ivlev/skit2video/internal/skit"
	"github.com/ivlev/skit2video/internal/sound"
	"github.com/ivlev/skit2video/internal/speech"
)

// Play runs the skit in real time through the speaker, echoing phases and
// dialogue to the console. Synthesized clips are swapped in as they arrive.
func (p *Project) Play(ctx context.Context) error {
	player := sound.NewPlayer(p.lib)
	if err := player.Init(); err != nil {
		return fmt.Errorf("audio init error: %w", err)
	}
	defer player.Close()

	batch := speech.Warmup(ctx, p.tts, p.skit, p.script.Voice1, p.script.Voice2)

	c1, c2 := p.newCharacters()
	ctrl := skit.NewController(skit.Params{
		Char1:     c1,
		Char2:     c2,
		Sounds:    player,
		Durations: p.lib,
		Script:    p.skit,
		SkipIntro: p.cfg.SkipIntro,
		Extended:  p.cfg.Extended,
	})

	fmt.Printf("[*] Playing live at %d fps\n", p.cfg.FPS)

	ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
	defer ticker.Stop()

	start := time.Now()
	lastPhase := ctrl.Phase()
	lastLine := ""
	fmt.Printf("[*] Phase: %s\n", lastPhase)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// Late TTS arrivals only affect lines not spoken yet.
		batch.Install(p.lib)

		now := time.Since(start).Milliseconds()
		ctrl.Update(now)

		if ph := ctrl.Phase(); ph != lastPhase {
			lastPhase = ph
			fmt.Printf("[*] Phase: %s\n", ph)
		}
		if d := ctrl.Dialogue; d.Text != "" && d.Text != lastLine {
			lastLine = d.Text
			fmt.Printf("    %s: %q\n", d.Speaker, d.Text)
		}

		if at, ok := ctrl.FinishedAt(); ok && now >= at+config.FinishedLinger {
			break
		}
	}

	fmt.Printf("[+++] Skit finished after %.1fs\n", time.Since(start).Seconds())
	return nil
}
