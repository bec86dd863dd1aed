package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/reelcut/internal/source"
)

// FFmpegSampler dumps one JPEG per interval with ffmpeg's fps filter.
type FFmpegSampler struct {
	Width int // scaled frame width; 0 keeps the source size
}

func (s *FFmpegSampler) Sample(ctx context.Context, videoPath string, interval float64, outDir string) ([]source.Frame, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sample interval must be > 0, got %v", interval)
	}
	if err := os.RemoveAll(outDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	args := s.args(videoPath, interval, outDir)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg sample error: %w, output: %s", err, tail(out, 4096))
	}

	fs, err := source.NewFrameSource(outDir, interval)
	if err != nil {
		return nil, err
	}
	return fs.Frames(), nil
}

func (s *FFmpegSampler) args(videoPath string, interval float64, outDir string) []string {
	vf := fmt.Sprintf("fps=1/%g", interval)
	if s.Width > 0 {
		vf += fmt.Sprintf(",scale=%d:-2", s.Width)
	}
	return ffmpeg.Input(videoPath).
		Output(filepath.Join(outDir, "frame_%06d.jpg"), ffmpeg.KwArgs{
			"vf":  vf,
			"q:v": 3,
		}).
		OverWriteOutput().
		GetArgs()
}
