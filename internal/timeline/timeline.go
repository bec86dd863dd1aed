package timeline

import (
	"math"

	"github.com/ivlev/reelcut/internal/allocator"
)

// Clip pairs a source window with the narration that plays over it.
type Clip struct {
	Window        allocator.Window
	AudioDuration float64
	MinDuration   float64
}

// Placement is where one clip lands on the video and audio tracks.
type Placement struct {
	Index         int              `yaml:"index"`
	VideoStart    float64          `yaml:"video_start"`
	VideoDuration float64          `yaml:"video_duration"`
	AudioStart    float64          `yaml:"audio_start"`
	AudioDuration float64          `yaml:"audio_duration"`
	Overlap       float64          `yaml:"overlap"`
	Source        allocator.Window `yaml:"source"`
}

// VideoEnd is the timeline position where the clip's picture ends.
func (p Placement) VideoEnd() float64 {
	return p.VideoStart + p.VideoDuration
}

// Options are the J-cut parameters.
type Options struct {
	JCutDuration float64 // overlap ceiling in seconds
	JCutRatio    float64 // overlap ceiling as a share of the clip's audio
}

func DefaultOptions() Options {
	return Options{JCutDuration: 0.5, JCutRatio: 0.3}
}

type Timeline struct {
	Placements []Placement
	Duration   float64
}

// Assemble lays clips end to end on the video track. From the second clip on,
// each clip's narration starts before its picture by the J-cut overlap. The
// overlap never exceeds the previous clip's hold, so narration starts never
// move backwards.
func Assemble(clips []Clip, opts Options) *Timeline {
	tl := &Timeline{Placements: make([]Placement, 0, len(clips))}
	cumulative := 0.0
	prevHold := 0.0

	for i, c := range clips {
		hold := math.Max(c.AudioDuration, c.MinDuration)
		overlap := 0.0
		if i > 0 {
			overlap = math.Min(opts.JCutDuration, c.AudioDuration*opts.JCutRatio)
			overlap = math.Min(overlap, prevHold)
		}
		prevHold = hold

		p := Placement{
			Index:         i,
			VideoStart:    cumulative,
			VideoDuration: hold - overlap,
			AudioStart:    cumulative - overlap,
			AudioDuration: c.AudioDuration,
			Overlap:       overlap,
			Source:        c.Window,
		}
		tl.Placements = append(tl.Placements, p)
		cumulative += p.VideoDuration
	}

	tl.Duration = cumulative
	return tl
}

// AudioSpan returns the start and audible duration of clip i's narration.
// Narration running past the last frame is cut off at Duration.
func (t *Timeline) AudioSpan(i int) (start, duration float64) {
	p := t.Placements[i]
	duration = p.AudioDuration
	if p.AudioStart+duration > t.Duration {
		duration = math.Max(0, t.Duration-p.AudioStart)
	}
	return p.AudioStart, duration
}
