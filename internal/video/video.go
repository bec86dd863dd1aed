package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/renderer"
)

type VideoEncoder interface {
	Render(ctx context.Context, g *renderer.Graph, out string, settings config.OutputConfig) error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Render(ctx context.Context, g *renderer.Graph, out string, settings config.OutputConfig) error {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}

	args := e.buildFFmpegArgs(g, out, settings)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg render error: %w, output: %s", err, tail(output, 4096))
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(g *renderer.Graph, out string, s config.OutputConfig) []string {
	args := []string{"-y", "-hide_banner"}
	args = append(args, g.Args()...)
	args = append(args,
		"-r", fmt.Sprintf("%d", s.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", s.VideoEncoder,
	)

	// Quality depends on the encoder
	switch s.VideoEncoder {
	case "h264_videotoolbox":
		bitrate := s.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", s.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", s.Quality), "-preset", "medium")
	}

	if g.AudioOut != "" {
		args = append(args, "-c:a", s.AudioCodec, "-b:a", s.AudioBitrate)
	}
	args = append(args, "-movflags", "+faststart", out)
	return args
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
