// Package engine ties the simulation, audio and encoding stages together.
// Export runs in two passes: a pure simulation that collects frame snapshots
// and the audio timeline, then a parallel rasterize-and-encode pass.
package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/skit2video/internal/backdrop"
	"github.com/ivlev/skit2video/internal/config"
	"github.com/ivlev/skit2video/internal/mixdown"
	"github.com/ivlev/skit2video/internal/render"
	"github.com/ivlev/skit2video/internal/script"
	"github.com/ivlev/skit2video/internal/skit"
	"github.com/ivlev/skit2video/internal/sound"
	"github.com/ivlev/skit2video/internal/speech"
	"github.com/ivlev/skit2video/internal/system"
	"github.com/ivlev/skit2video/internal/timeline"
	"github.com/ivlev/skit2video/internal/video"
)

var (
	char1Color = color.RGBA{B: 255, A: 255}
	char2Color = color.RGBA{R: 255, A: 255}
)

// Project is one configured run of the skit, shared between the live player
// and the video exporter.
type Project struct {
	cfg    config.Config
	script *script.Script
	skit   skit.Script
	lib    *sound.Library
	tts    *speech.Client
}

// NewProject loads the script and the audio assets. Missing assets are
// tolerated; missing or invalid script files are not.
func NewProject(cfg config.Config) (*Project, error) {
	sc := script.Default()
	if cfg.ScriptPath != "" {
		loaded, err := script.Read(cfg.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("script load error: %w", err)
		}
		sc = loaded
	}

	sk, err := sc.Skit()
	if err != nil {
		return nil, fmt.Errorf("script validation error: %w", err)
	}

	lib := sound.LoadLibrary(cfg.AssetsDir, sc.ClipFiles())

	return &Project{
		cfg:    cfg,
		script: sc,
		skit:   sk,
		lib:    lib,
		tts:    speech.NewClientFromEnv(),
	}, nil
}

func (p *Project) newCharacters() (*skit.Character, *skit.Character) {
	groundY := float64(config.ScreenHeight - 200)
	c1 := skit.NewCharacter("char1", p.script.Voice1, -50, groundY, char1Color)
	c2 := skit.NewCharacter("char2", p.script.Voice2, config.ScreenWidth+10, groundY, char2Color)
	c2.Direction = -1
	return c1, c2
}

// simulate runs the whole skit tick by tick at the configured frame rate,
// recording the audio timeline instead of playing it. Returns one snapshot
// per video frame plus the recorded events.
func (p *Project) simulate(rec *timeline.Recorder) ([]skit.Frame, []timeline.Event) {
	c1, c2 := p.newCharacters()
	ctrl := skit.NewController(skit.Params{
		Char1:     c1,
		Char2:     c2,
		Sounds:    rec,
		Durations: p.lib,
		Script:    p.skit,
		SkipIntro: p.cfg.SkipIntro,
		Extended:  p.cfg.Extended,
	})

	fps := int64(p.cfg.FPS)
	maxFrames := fps * 180 // runaway guard, the skit is well under 3 minutes

	var frames []skit.Frame
	for i := int64(0); i < maxFrames; i++ {
		now := i * 1000 / fps
		rec.SetNow(now)
		ctrl.Update(now)
		frames = append(frames, ctrl.Snapshot())
		if at, ok := ctrl.FinishedAt(); ok && now >= at+config.FinishedLinger {
			break
		}
	}

	rec.Finish(frames[len(frames)-1].TimeMS)
	return frames, rec.Events()
}

// ExportVideo simulates the skit, mixes the soundtrack and encodes the MP4.
func (p *Project) ExportVideo(ctx context.Context) error {
	start := time.Now()
	cfg := p.cfg

	// Kick TTS off first so synthesis overlaps the simulation.
	batch := speech.Warmup(ctx, p.tts, p.skit, p.script.Voice1, p.script.Voice2)
	p.waitForSpeech(ctx, batch)

	fmt.Printf("[*] Simulating skit at %d fps\n", cfg.FPS)
	rec := timeline.NewRecorder()
	frames, events := p.simulate(rec)

	var endCard *image.RGBA
	endFrames := 0
	if cfg.QRLink != "" {
		card, err := render.EndCard(config.ScreenWidth, config.ScreenHeight, cfg.QRLink, "Subscribe for more")
		if err != nil {
			return fmt.Errorf("end card error: %w", err)
		}
		endCard = card
		endFrames = int(cfg.EndCardDuration * float64(cfg.FPS))
	}

	totalFrames := len(frames) + endFrames
	// The frame count is authoritative for duration: audio is padded or
	// truncated to match it exactly.
	totalMS := int64(totalFrames) * 1000 / int64(cfg.FPS)
	fmt.Printf("[*] %d frames, %d audio events, %.2fs total\n",
		totalFrames, len(events), float64(totalMS)/1000)

	tmpDir, err := os.MkdirTemp("", "skit2video-*")
	if err != nil {
		return fmt.Errorf("temp dir error: %w", err)
	}
	keepTmp := false
	defer func() {
		if keepTmp {
			log.Printf("[!] Keeping temp files in %s for inspection", tmpDir)
			return
		}
		os.RemoveAll(tmpDir)
	}()

	audioPath := filepath.Join(tmpDir, "soundtrack.wav")
	if err := mixdown.WriteWAV(audioPath, events, p.lib, totalMS); err != nil {
		return fmt.Errorf("mixdown error: %w", err)
	}

	var bg *image.RGBA
	if cfg.BackdropPath != "" {
		bg, err = backdrop.Load(cfg.BackdropPath, config.ScreenWidth, config.ScreenHeight)
		if err != nil {
			return fmt.Errorf("backdrop error: %w", err)
		}
	}
	renderer := render.NewRenderer(config.ScreenWidth, config.ScreenHeight, bg)

	session, err := (&video.FFmpegEncoder{}).Start(ctx, video.Job{
		OutputPath: cfg.OutputVideo,
		Width:      config.ScreenWidth,
		Height:     config.ScreenHeight,
		FPS:        cfg.FPS,
		Filter:     video.PresetFilter(cfg.Preset, config.ScreenWidth, config.ScreenHeight),
		AudioPath:  audioPath,
		Encoder:    cfg.VideoEncoder,
		Quality:    cfg.Quality,
	})
	if err != nil {
		keepTmp = true
		return err
	}

	if err := p.rasterize(ctx, renderer, frames, session); err != nil {
		keepTmp = true
		session.Close()
		return err
	}

	for i := 0; i < endFrames; i++ {
		if err := session.WriteFrame(endCard); err != nil {
			keepTmp = true
			session.Close()
			return fmt.Errorf("end card frame write error: %w", err)
		}
	}

	if err := session.Close(); err != nil {
		keepTmp = true
		return err
	}

	if cfg.ShowStats {
		elapsed := time.Since(start)
		fmt.Printf("[+++] Encoded %d frames in %.2fs (%.1f fps)\n",
			totalFrames, elapsed.Seconds(), float64(totalFrames)/elapsed.Seconds())
	}
	fmt.Printf("[+++] Done: %s\n", cfg.OutputVideo)
	return nil
}

// rasterize draws the snapshots in parallel and streams them to ffmpeg in
// frame order. Each frame index gets its own hand-off channel so the writer
// never reorders.
func (p *Project) rasterize(ctx context.Context, renderer *render.Renderer, frames []skit.Frame, session *video.Session) error {
	w, h := renderer.Size()
	workers := p.cfg.Workers
	if workers <= 0 {
		workers = system.RenderWorkers(w * h * 4)
	}
	fmt.Printf("[*] Rasterizing with %d workers\n", workers)

	pool := system.NewFramePool(w, h)
	results := make([]chan *image.RGBA, len(frames))
	for i := range results {
		results[i] = make(chan *image.RGBA, 1)
	}

	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range frames {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for wk := 0; wk < workers; wk++ {
		g.Go(func() error {
			for i := range jobs {
				img := pool.Get()
				renderer.Draw(img, frames[i])
				select {
				case results[i] <- img:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		for i := range results {
			select {
			case img := <-results[i]:
				if err := session.WriteFrame(img); err != nil {
					return fmt.Errorf("frame %d write error: %w", i, err)
				}
				pool.Put(img)
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// waitForSpeech gives TTS a bounded window to resolve before export falls
// back to the static assets for whatever is still missing.
func (p *Project) waitForSpeech(ctx context.Context, batch *speech.Batch) {
	if batch.Remaining() == 0 {
		return
	}
	fmt.Printf("[*] Waiting for %d speech clips\n", batch.Remaining())
	deadline := time.Now().Add(45 * time.Second)
	installed := 0
	for batch.Remaining() > 0 && time.Now().Before(deadline) && ctx.Err() == nil {
		installed += batch.Install(p.lib)
		if batch.Remaining() == 0 {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	installed += batch.Install(p.lib)
	if n := batch.Remaining(); n > 0 {
		log.Printf("[!] %d speech clips not ready, using static audio for them", n)
	}
	if installed > 0 {
		fmt.Printf("[+] Installed %d synthesized clips\n", installed)
	}
}
