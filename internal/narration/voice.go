package narration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/reelcut/internal/logger"
)

// Synthesizer turns text into an audio file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Prober reports the duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Voiced is a segment with its synthesized narration.
type Voiced struct {
	Segment
	AudioPath     string
	AudioDuration float64
}

// TargetDuration is how long the segment holds the picture.
func (v Voiced) TargetDuration() float64 {
	return math.Max(v.AudioDuration, v.MinDuration)
}

// Fingerprinter is implemented by synthesizers whose output depends on
// settings besides the text, such as voice or speaking rate.
type Fingerprinter interface {
	Fingerprint() string
}

// CommandSynthesizer shells out to an edge-tts compatible CLI.
type CommandSynthesizer struct {
	Command string
	Voice   string
	Rate    string
}

func (s *CommandSynthesizer) Fingerprint() string {
	return s.Command + "|" + s.Voice + "|" + s.Rate
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	args := []string{}
	if s.Voice != "" {
		args = append(args, "--voice", s.Voice)
	}
	if s.Rate != "" {
		args = append(args, "--rate="+s.Rate)
	}
	args = append(args, "--text", text, "--write-media", outPath)

	cmd := exec.CommandContext(ctx, s.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s error: %w, output: %s", s.Command, err, string(out))
	}
	return nil
}

// AudioKey identifies the narration rendered for text with the given
// synthesizer settings.
func AudioKey(text, settings string) string {
	sum := sha256.Sum256([]byte(settings + "\x00" + text))
	return hex.EncodeToString(sum[:])[:12]
}

// SegmentAudioPath is where segment i's narration with the given key is written.
func SegmentAudioPath(dir string, i int, key string) string {
	return filepath.Join(dir, fmt.Sprintf("segment_%03d_%s.mp3", i, key))
}

// Voice synthesizes every segment into dir and probes the results.
// A file is reused only when it was rendered from the same text and
// synthesizer settings. Output order matches segs.
func Voice(ctx context.Context, segs []Segment, synth Synthesizer, prober Prober, dir string, workers int, log *logger.Logger) ([]Voiced, error) {
	log = logger.OrNop(log)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create voice dir: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	var settings string
	if fp, ok := synth.(Fingerprinter); ok {
		settings = fp.Fingerprint()
	}

	out := make([]Voiced, len(segs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seg := range segs {
		i, seg := i, seg
		g.Go(func() error {
			path := SegmentAudioPath(dir, i, AudioKey(seg.Text, settings))
			if info, err := os.Stat(path); err == nil && info.Size() > 0 {
				log.Debug("reusing narration audio", "segment", i, "path", path)
			} else if err := synth.Synthesize(gctx, seg.Text, path); err != nil {
				return fmt.Errorf("synthesize segment %d: %w", i, err)
			}

			dur, err := prober.Duration(gctx, path)
			if err != nil {
				return fmt.Errorf("probe segment %d: %w", i, err)
			}
			out[i] = Voiced{Segment: seg, AudioPath: path, AudioDuration: dur}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, v := range out {
		log.Info("segment voiced", "segment", i, "audio", v.AudioDuration, "target", v.TargetDuration())
	}
	return out, nil
}
