package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Job describes one ffmpeg encode: raw RGBA frames arrive over stdin, an
// optional WAV soundtrack is muxed in from disk.
type Job struct {
	OutputPath string
	Width      int
	Height     int
	FPS        int
	Filter     string // -vf graph, empty means passthrough
	AudioPath  string // optional WAV to mux
	Encoder    string // h264 encoder name
	Quality    int
}

// Session is a running ffmpeg process accepting frames.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

// Encoder starts encode sessions. The only implementation shells out to
// ffmpeg; the indirection keeps the export pipeline testable.
type Encoder interface {
	Start(ctx context.Context, job Job) (*Session, error)
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Start(ctx context.Context, job Job) (*Session, error) {
	args := buildArgs(job)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	s := &Session{cmd: cmd}
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

func buildArgs(job Job) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-framerate", fmt.Sprintf("%d", job.FPS),
		"-i", "-",
	}

	if job.AudioPath != "" {
		args = append(args, "-i", job.AudioPath)
	}

	if job.Filter != "" {
		args = append(args, "-vf", job.Filter)
	}

	args = append(args, "-pix_fmt", "yuv420p", "-c:v", job.Encoder)

	switch job.Encoder {
	case "h264_videotoolbox":
		bitrate := job.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", job.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", job.Quality), "-preset", "medium")
	}

	if job.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-b:a", "192k", "-shortest")
	}

	args = append(args, job.OutputPath)
	return args
}

// WriteFrame streams one frame as raw RGBA bytes.
func (s *Session) WriteFrame(img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := s.stdin.Write(rgba.Pix)
	return err
}

// Close finishes the frame stream and waits for ffmpeg to exit.
func (s *Session) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, output: %s", err, s.stderr.String())
	}
	return nil
}

// PresetFilter maps an aspect preset to an ffmpeg -vf graph applied to the
// srcW x srcH stage. The vertical presets crop the stage center and upscale.
func PresetFilter(preset string, srcW, srcH int) string {
	switch preset {
	case "9:16":
		// 1080x1920 portrait: crop the widest center strip matching the
		// target aspect, then scale up.
		cropW := srcH * 1080 / 1920
		if cropW > srcW {
			cropW = srcW
		}
		return fmt.Sprintf("crop=%d:%d:(iw-%d)/2:0,scale=1080:1920", cropW, srcH, cropW)
	case "4:5":
		cropW := srcH * 1080 / 1350
		if cropW > srcW {
			cropW = srcW
		}
		return fmt.Sprintf("crop=%d:%d:(iw-%d)/2:0,scale=1080:1350", cropW, srcH, cropW)
	case "16:9":
		return fmt.Sprintf("scale=%d:%d", srcW, srcH)
	default:
		return ""
	}
}
