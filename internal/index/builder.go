package index

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/reelcut/internal/analyzer"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/source"
	"github.com/ivlev/reelcut/internal/system"
)

// FrameSampler dumps stills of a video at a fixed interval.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath string, interval float64, outDir string) ([]source.Frame, error)
}

// TextExtractor returns the text visible in one still.
type TextExtractor interface {
	Extract(ctx context.Context, framePath string) (string, error)
}

// Builder produces observations for a video. It is the slow path taken on a cache miss.
type Builder struct {
	Sampler   FrameSampler
	Extractor TextExtractor
	Detector  analyzer.Detector
	Interval  float64
	Workers   int
	Log       *logger.Logger
}

// Build samples the video, reuses text for static frames and extracts the rest.
func (b *Builder) Build(ctx context.Context, videoPath, frameDir string) ([]Observation, error) {
	log := logger.OrNop(b.Log)
	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}

	frames, err := b.Sampler.Sample(ctx, videoPath, b.Interval, frameDir)
	if err != nil {
		return nil, fmt.Errorf("sample frames: %w", err)
	}
	log.Info("frames sampled", "video", videoPath, "frames", len(frames), "interval", b.Interval)

	thumbs, err := b.thumbnails(ctx, frames, workers, log)
	if err != nil {
		return nil, err
	}

	// origin[i] is the frame whose text frame i reports.
	origin := make([]int, len(frames))
	var pending []int
	anchor := -1
	for i := range frames {
		if anchor >= 0 && !b.Detector.Changed(thumbs[anchor], thumbs[i]) {
			origin[i] = anchor
			continue
		}
		anchor = i
		origin[i] = i
		pending = append(pending, i)
	}
	log.Info("static frames reuse text", "static", len(frames)-len(pending), "extract", len(pending))
	for _, th := range thumbs {
		system.PutGray(th)
	}

	texts := make([]string, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, i := range pending {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := b.Extractor.Extract(gctx, frames[i].Path)
			if err != nil {
				log.Warn("text extraction failed", "frame", frames[i].Path, "timestamp", frames[i].Timestamp, "error", err)
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	obs := make([]Observation, len(frames))
	for i, f := range frames {
		obs[i] = Observation{Timestamp: f.Timestamp, Text: texts[origin[i]]}
	}
	return obs, nil
}

func (b *Builder) thumbnails(ctx context.Context, frames []source.Frame, workers int, log *logger.Logger) ([]*image.Gray, error) {
	thumbs := make([]*image.Gray, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range frames {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := source.Decode(f.Path)
			if err != nil {
				log.Warn("frame decode failed", "frame", f.Path, "error", err)
				return nil
			}
			thumbs[i] = b.Detector.Thumbnail(img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return thumbs, nil
}

// LoadOrBuild returns the cached index for identity, building and saving it on a miss.
// A failed save only warns; the freshly built index is still returned.
func LoadOrBuild(ctx context.Context, cache Cache, identity string, build func(context.Context) ([]Observation, error), log *logger.Logger) (*Index, bool, error) {
	log = logger.OrNop(log)

	obs, found, err := cache.Load(ctx, identity)
	if err != nil {
		return nil, false, err
	}
	if found {
		log.Info("content index loaded from cache", "identity", identity, "observations", len(obs))
		return New(obs), true, nil
	}

	log.Info("content index not cached, indexing", "identity", identity)
	obs, err = build(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("build content index: %w", err)
	}
	if err := cache.Save(ctx, identity, obs); err != nil {
		log.Warn("content index cache save failed", "identity", identity, "error", err)
	}
	return New(obs), false, nil
}
