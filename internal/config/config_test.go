package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Scoring.BaseWeight != 10 || cfg.Scoring.OccurrenceCap != 5 || cfg.Scoring.BonusWeight != 1 {
		t.Errorf("unexpected scoring defaults: %+v", cfg.Scoring)
	}
	if cfg.Scoring.PlateauRatio != 0.8 || cfg.Allocation.OverlapTolerance != 0.5 {
		t.Errorf("unexpected tie-break/tolerance defaults: %v %v", cfg.Scoring.PlateauRatio, cfg.Allocation.OverlapTolerance)
	}
	if cfg.Timeline.JCutDuration != 0.5 || cfg.Timeline.JCutRatio != 0.3 {
		t.Errorf("unexpected J-cut defaults: %+v", cfg.Timeline)
	}
	if cfg.Effects.FadeIn != 1.0 {
		t.Errorf("clips after the first should fade in over 1s, got %v", cfg.Effects.FadeIn)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelcut.yaml")
	data := []byte("input_video: movie.mp4\nallocation:\n  seed: 42\n  scan_step: 1.0\nmusic:\n  gain: 0.15\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InputVideo != "movie.mp4" {
		t.Errorf("Expected input_video movie.mp4, got %q", cfg.InputVideo)
	}
	if cfg.Allocation.Seed != 42 || cfg.Allocation.ScanStep != 1.0 {
		t.Errorf("allocation not applied: %+v", cfg.Allocation)
	}
	// Untouched keys keep their defaults.
	if cfg.Allocation.FallbackStep != 5.0 {
		t.Errorf("Expected fallback_step default 5.0, got %v", cfg.Allocation.FallbackStep)
	}
	if cfg.Music.Gain != 0.15 {
		t.Errorf("Expected gain 0.15, got %v", cfg.Music.Gain)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("REELCUT_SEED", "7")
	t.Setenv("REELCUT_WORKERS", "3")
	t.Setenv("REELCUT_CACHE_BACKEND", "redis")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Allocation.Seed != 7 || cfg.Workers != 3 || cfg.Index.CacheBackend != "redis" {
		t.Errorf("env overrides not applied: seed=%d workers=%d backend=%s", cfg.Allocation.Seed, cfg.Workers, cfg.Index.CacheBackend)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero scan step", func(c *Config) { c.Allocation.ScanStep = 0 }},
		{"plateau above one", func(c *Config) { c.Scoring.PlateauRatio = 1.5 }},
		{"negative tolerance", func(c *Config) { c.Allocation.OverlapTolerance = -1 }},
		{"unknown backend", func(c *Config) { c.Index.CacheBackend = "s3" }},
		{"jcut ratio one", func(c *Config) { c.Timeline.JCutRatio = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
