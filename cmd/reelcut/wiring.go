package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ivlev/reelcut/internal/analyzer"
	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/effects"
	"github.com/ivlev/reelcut/internal/engine"
	"github.com/ivlev/reelcut/internal/index"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/narration"
	"github.com/ivlev/reelcut/internal/system"
	"github.com/ivlev/reelcut/internal/video"
)

// newProject wires the external collaborators named in cfg. The returned
// cleanup closes network clients.
func newProject(ctx context.Context, cfg *config.Config, log *logger.Logger) (*engine.Project, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	p := engine.NewProject(cfg, log)
	p.Prober = video.Prober{}
	p.Encoder = &video.FFmpegEncoder{}
	p.Effect = &effects.DefaultEffect{}
	p.Synth = &narration.CommandSynthesizer{
		Command: cfg.Voice.Command,
		Voice:   cfg.Voice.Voice,
		Rate:    cfg.Voice.Rate,
	}

	if cfg.Effects.Captions && !system.CheckFilterSupport(ctx, "drawtext") {
		log.Warn("ffmpeg has no drawtext filter, captions disabled")
		cfg.Effects.Captions = false
	}

	switch cfg.Index.CacheBackend {
	case "redis":
		rc, err := index.NewRedisCache(ctx, index.RedisConfig{
			Addr:     cfg.Index.RedisAddr,
			Password: cfg.Index.RedisPassword,
			DB:       cfg.Index.RedisDB,
			Prefix:   cfg.Index.RedisPrefix,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, rc.Close)
		p.Cache = rc
	default:
		fc := index.NewFileCache(cfg.Index.CacheDir, cfg.Index.Interval)
		fc.Path = cfg.Index.CacheFile
		p.Cache = fc
	}

	det, err := analyzer.NewDetector(cfg.Index.Detector, cfg.Index.StaticThreshold, cfg.Index.ThumbWidth, cfg.Index.ThumbHeight)
	if err != nil {
		return nil, cleanup, err
	}

	var ext index.TextExtractor
	switch cfg.Index.Extractor {
	case "vision":
		ve, err := index.NewVisionExtractor(ctx, cfg.Index.Credentials)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, ve.Close)
		ext = ve
	case "tesseract", "":
		ext = &index.TesseractExtractor{Languages: cfg.Index.Languages}
	default:
		return nil, cleanup, fmt.Errorf("unknown text extractor: %s", cfg.Index.Extractor)
	}

	p.Indexer = &index.Builder{
		Sampler:   &video.FFmpegSampler{Width: cfg.Index.FrameWidth},
		Extractor: ext,
		Detector:  det,
		Interval:  cfg.Index.Interval,
		Workers:   cfg.Workers,
		Log:       p.Log,
	}
	return p, cleanup, nil
}

func plansDir() string {
	return filepath.Join(cfg.WorkDir, "plans")
}
