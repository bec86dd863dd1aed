package mixer

import (
	"math"

	"github.com/ivlev/reelcut/internal/logger"
)

// Track is an audio file with a known length.
type Track struct {
	Path     string  `yaml:"path"`
	Duration float64 `yaml:"duration"`
}

// Bed is the background track after looping and trimming to the timeline.
type Bed struct {
	Track          Track   `yaml:"track"`
	Loops          int     `yaml:"loops"`
	LoopedDuration float64 `yaml:"looped_duration"`
	Duration       float64 `yaml:"duration"`
	Gain           float64 `yaml:"gain"`
	FadeOut        float64 `yaml:"fade_out"`
}

// Mix is the narration track plus an optional background bed.
type Mix struct {
	Narration  Track   `yaml:"narration"`
	Background *Bed    `yaml:"background,omitempty"`
	Duration   float64 `yaml:"duration"`
}

type Mixer struct {
	Gain    float64
	FadeOut float64
	Log     *logger.Logger
}

func New(gain, fadeOut float64, log *logger.Logger) *Mixer {
	return &Mixer{Gain: gain, FadeOut: fadeOut, Log: log}
}

// Mix fits bg under a target-long narration track. A missing or empty bg
// yields a narration-only mix.
func (m *Mixer) Mix(bg *Track, target float64, narration Track) *Mix {
	log := logger.OrNop(m.Log)
	mix := &Mix{Narration: narration, Duration: target}

	if bg == nil || bg.Path == "" || bg.Duration <= 0 {
		log.Warn("no background track, narration only")
		return mix
	}
	if target <= 0 {
		return mix
	}

	loops := 1
	if bg.Duration < target {
		loops = int(math.Ceil(target / bg.Duration))
	}

	fade := math.Min(m.FadeOut, target*0.1)
	if fade < 0 {
		fade = 0
	}

	mix.Background = &Bed{
		Track:          *bg,
		Loops:          loops,
		LoopedDuration: float64(loops) * bg.Duration,
		Duration:       target,
		Gain:           m.Gain,
		FadeOut:        fade,
	}
	log.Debug("background bed", "track", bg.Path, "loops", loops, "duration", target, "gain", m.Gain)
	return mix
}
