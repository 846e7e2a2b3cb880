package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ivlev/skit2video/internal/config"
	"github.com/ivlev/skit2video/internal/engine"
	"github.com/ivlev/skit2video/internal/script"
	"github.com/ivlev/skit2video/internal/system"
)

var version = "dev"

func main() {
	system.InitResourceLimits()

	modePtr := flag.String("mode", "export", "Run mode: export (render MP4) or play (real-time audio)")
	outputPtr := flag.String("output", "", "Output video path (default: output/skit_<timestamp>.mp4)")
	presetPtr := flag.String("preset", "", "Format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	fpsPtr := flag.Int("fps", config.FPS, "Frames per second")
	assetsPtr := flag.String("assets", "assets", "Directory with WAV sound assets")
	scriptPtr := flag.String("script", "", "YAML script file (default: built-in script)")
	writeScriptPtr := flag.String("write-script", "", "Write the built-in script as YAML to this path and exit")
	backdropPtr := flag.String("backdrop", "", "Backdrop PDF/PNG/JPEG (default: procedural park)")
	qrPtr := flag.String("qr", "", "Link for the QR end card (empty disables the end card)")
	qrDurPtr := flag.Float64("qr-duration", 3.0, "End card duration in seconds")
	extendedPtr := flag.Bool("extended", false, "Extended variant: alien abduction ending")
	skipIntroPtr := flag.Bool("skip-intro", false, "Skip the cat pre-roll")
	workersPtr := flag.Int("workers", 0, "Rasterizer workers (0 = auto)")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 = auto; x264: CRF, VideoToolbox: bitrate = Q*100kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print encode throughput stats")

	flag.Parse()

	fmt.Printf("[*] skit2video %s\n", version)

	if *writeScriptPtr != "" {
		if err := script.Write(script.Default(), *writeScriptPtr); err != nil {
			log.Fatalf("[-] Script write error: %v", err)
		}
		fmt.Printf("[+++] Script written to %s\n", *writeScriptPtr)
		return
	}

	output := *outputPtr
	if output == "" {
		os.MkdirAll("output", 0755)
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		output = filepath.Join("output", fmt.Sprintf("skit_%s.mp4", timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware encoder detected: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	cfg := config.Config{
		OutputVideo:     output,
		Width:           config.ScreenWidth,
		Height:          config.ScreenHeight,
		FPS:             *fpsPtr,
		Preset:          *presetPtr,
		Workers:         *workersPtr,
		VideoEncoder:    encoderName,
		Quality:         quality,
		AssetsDir:       *assetsPtr,
		ScriptPath:      *scriptPtr,
		BackdropPath:    *backdropPtr,
		QRLink:          *qrPtr,
		EndCardDuration: *qrDurPtr,
		Extended:        *extendedPtr,
		SkipIntro:       *skipIntroPtr,
		ShowStats:       *statsPtr,
		BuildVersion:    version,
	}

	project, err := engine.NewProject(cfg)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *modePtr {
	case "export":
		err = project.ExportVideo(ctx)
	case "play":
		err = project.Play(ctx)
	default:
		log.Fatalf("[-] Unknown mode %q, want export or play", *modePtr)
	}
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
}
