package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures everything one assembly run needs.
type Config struct {
	InputVideo    string `yaml:"input_video"`
	NarrationPath string `yaml:"narration"`
	OutputVideo   string `yaml:"output_video"`
	PlanOutput    string `yaml:"plan_output"`
	WorkDir       string `yaml:"work_dir"`
	Workers       int    `yaml:"workers"`
	PlanOnly      bool   `yaml:"plan_only"`
	ShowStats     bool   `yaml:"show_stats"`
	LogMode       string `yaml:"log_mode"`
	BuildVersion  string `yaml:"-"`

	Output     OutputConfig     `yaml:"output"`
	Index      IndexConfig      `yaml:"index"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Allocation AllocationConfig `yaml:"allocation"`
	Timeline   TimelineConfig   `yaml:"timeline"`
	Music      MusicConfig      `yaml:"music"`
	Voice      VoiceConfig      `yaml:"voice"`
	Effects    EffectsConfig    `yaml:"effects"`
}

// OutputConfig describes the encoded result.
type OutputConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	VideoEncoder string `yaml:"video_encoder"` // auto picks a hardware encoder when available
	Quality      int    `yaml:"quality"`       // 0 picks the encoder's default
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// IndexConfig controls content indexing and its cache.
type IndexConfig struct {
	Interval        float64 `yaml:"interval"`
	CacheBackend    string  `yaml:"cache_backend"` // file, redis
	CacheDir        string  `yaml:"cache_dir"`
	CacheFile       string  `yaml:"cache_file"`
	RedisAddr       string  `yaml:"redis_addr"`
	RedisPassword   string  `yaml:"redis_password"`
	RedisDB         int     `yaml:"redis_db"`
	RedisPrefix     string  `yaml:"redis_prefix"`
	Detector        string  `yaml:"detector"`
	StaticThreshold float64 `yaml:"static_threshold"`
	ThumbWidth      int     `yaml:"thumb_width"`
	ThumbHeight     int     `yaml:"thumb_height"`
	FrameWidth      int     `yaml:"frame_width"`
	Extractor       string  `yaml:"extractor"` // vision, tesseract
	Languages       string  `yaml:"languages"`
	Credentials     string  `yaml:"credentials"`
}

// ScoringConfig holds the keyword scoring weights.
type ScoringConfig struct {
	BaseWeight    int     `yaml:"base_weight"`
	BonusWeight   int     `yaml:"bonus_weight"`
	OccurrenceCap int     `yaml:"occurrence_cap"`
	PlateauRatio  float64 `yaml:"plateau_ratio"`
}

// AllocationConfig holds the window search parameters.
type AllocationConfig struct {
	ScanStep         float64 `yaml:"scan_step"`
	OverlapTolerance float64 `yaml:"overlap_tolerance"`
	FallbackStep     float64 `yaml:"fallback_step"`
	PreferredBuffer  float64 `yaml:"preferred_buffer"`
	Seed             int64   `yaml:"seed"`
}

// TimelineConfig holds the J-cut parameters.
type TimelineConfig struct {
	JCutDuration float64 `yaml:"jcut_duration"`
	JCutRatio    float64 `yaml:"jcut_ratio"`
}

// MusicConfig describes the background bed.
type MusicConfig struct {
	Dir     string   `yaml:"dir"`
	Moods   []string `yaml:"moods"`
	Default string   `yaml:"default"`
	Gain    float64  `yaml:"gain"`
	FadeOut float64  `yaml:"fade_out"`
}

// VoiceConfig describes the external narration synthesizer.
type VoiceConfig struct {
	Command string `yaml:"command"`
	Voice   string `yaml:"voice"`
	Rate    string `yaml:"rate"`
	Dir     string `yaml:"dir"`
}

// EffectsConfig describes per-cut visual treatment.
type EffectsConfig struct {
	Vertical      bool     `yaml:"vertical"`
	Captions      bool     `yaml:"captions"`
	FadeIn        float64  `yaml:"fade_in"`
	ZoomRatio     float64  `yaml:"zoom_ratio"`
	EmphasisWords []string `yaml:"emphasis_words"`
	FontFile      string   `yaml:"font_file"`
	FontSize      int      `yaml:"font_size"`
}

// ClipParams is what an effect needs to build the filter for one cut.
type ClipParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Vertical      bool
	Zoom          float64
	FadeIn        float64
	Caption       string
	FontFile      string
	FontSize      int
	Index         int
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		WorkDir: "work",
		Workers: 4,
		LogMode: "dev",
		Output: OutputConfig{
			Width:        720,
			Height:       1280,
			FPS:          30,
			VideoEncoder: "auto",
			Quality:      0,
			AudioCodec:   "aac",
			AudioBitrate: "192k",
		},
		Index: IndexConfig{
			Interval:        1.0,
			CacheBackend:    "file",
			CacheDir:        "data/index",
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "reelcut:index:",
			Detector:        "absdiff",
			StaticThreshold: 5.0,
			ThumbWidth:      200,
			ThumbHeight:     150,
			FrameWidth:      1280,
			Extractor:       "tesseract",
			Languages:       "chi_sim+eng",
		},
		Scoring: ScoringConfig{
			BaseWeight:    10,
			BonusWeight:   1,
			OccurrenceCap: 5,
			PlateauRatio:  0.8,
		},
		Allocation: AllocationConfig{
			ScanStep:         0.5,
			OverlapTolerance: 0.5,
			FallbackStep:     5.0,
			PreferredBuffer:  0.5,
		},
		Timeline: TimelineConfig{
			JCutDuration: 0.5,
			JCutRatio:    0.3,
		},
		Music: MusicConfig{
			Dir:     "resources/bgm",
			Moods:   []string{"suspense", "epic", "emotional"},
			Gain:    0.12,
			FadeOut: 1.0,
		},
		Voice: VoiceConfig{
			Command: "edge-tts",
			Voice:   "zh-CN-YunxiNeural",
			Rate:    "+30%",
			Dir:     "work/voice",
		},
		Effects: EffectsConfig{
			Vertical:      true,
			ZoomRatio:     1.3,
			FadeIn:        1.0,
			EmphasisWords: []string{"仔细", "看", "细节", "重点"},
			FontSize:      48,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads .env (if present) and applies REELCUT_* overrides.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	str("REELCUT_INPUT_VIDEO", &c.InputVideo)
	str("REELCUT_NARRATION", &c.NarrationPath)
	str("REELCUT_OUTPUT_VIDEO", &c.OutputVideo)
	str("REELCUT_LOG_MODE", &c.LogMode)
	str("REELCUT_CACHE_BACKEND", &c.Index.CacheBackend)
	str("REELCUT_REDIS_ADDR", &c.Index.RedisAddr)
	str("REELCUT_REDIS_PASSWORD", &c.Index.RedisPassword)
	str("REELCUT_EXTRACTOR", &c.Index.Extractor)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Index.Credentials)
	str("REELCUT_MUSIC_DEFAULT", &c.Music.Default)

	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv("REELCUT_WORKERS"))); err == nil && v > 0 {
		c.Workers = v
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("REELCUT_SEED")), 10, 64); err == nil {
		c.Allocation.Seed = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("REELCUT_MUSIC_GAIN")), 64); err == nil {
		c.Music.Gain = v
	}
}

// Validate rejects settings the core cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Index.Interval <= 0 {
		errs = append(errs, fmt.Errorf("index.interval must be > 0, got %v", c.Index.Interval))
	}
	if c.Allocation.ScanStep <= 0 {
		errs = append(errs, fmt.Errorf("allocation.scan_step must be > 0, got %v", c.Allocation.ScanStep))
	}
	if c.Allocation.FallbackStep <= 0 {
		errs = append(errs, fmt.Errorf("allocation.fallback_step must be > 0, got %v", c.Allocation.FallbackStep))
	}
	if c.Allocation.OverlapTolerance < 0 {
		errs = append(errs, fmt.Errorf("allocation.overlap_tolerance must be >= 0, got %v", c.Allocation.OverlapTolerance))
	}
	if c.Scoring.PlateauRatio <= 0 || c.Scoring.PlateauRatio > 1 {
		errs = append(errs, fmt.Errorf("scoring.plateau_ratio must be in (0, 1], got %v", c.Scoring.PlateauRatio))
	}
	if c.Scoring.OccurrenceCap < 0 {
		errs = append(errs, fmt.Errorf("scoring.occurrence_cap must be >= 0, got %v", c.Scoring.OccurrenceCap))
	}
	if c.Timeline.JCutDuration < 0 || c.Timeline.JCutRatio < 0 || c.Timeline.JCutRatio >= 1 {
		errs = append(errs, fmt.Errorf("timeline: jcut_duration must be >= 0 and jcut_ratio in [0, 1)"))
	}
	if c.Music.Gain < 0 {
		errs = append(errs, fmt.Errorf("music.gain must be >= 0, got %v", c.Music.Gain))
	}
	switch c.Index.CacheBackend {
	case "file", "redis":
	default:
		errs = append(errs, fmt.Errorf("index.cache_backend: unknown backend %q", c.Index.CacheBackend))
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return errors.Join(errs...)
}
