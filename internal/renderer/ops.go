package renderer

import (
	"strings"

	"github.com/ivlev/reelcut/internal/director"
	"github.com/ivlev/reelcut/internal/mixer"
)

type OpKind string

const (
	OpCut       OpKind = "cut"
	OpComposite OpKind = "composite"
	OpSetAudio  OpKind = "set_audio"
	OpFade      OpKind = "fade"
	OpWrite     OpKind = "write"
)

// Track names used by set_audio and fade operations.
const (
	TrackVideo      = "video"
	TrackNarration  = "narration"
	TrackBackground = "background"
)

// Operation is one step of the render, in timeline terms.
type Operation struct {
	Kind     OpKind  `yaml:"kind"`
	Index    int     `yaml:"index"`
	Track    string  `yaml:"track,omitempty"`
	Source   string  `yaml:"source,omitempty"`
	Start    float64 `yaml:"start,omitempty"` // offset into Source
	Duration float64 `yaml:"duration"`
	At       float64 `yaml:"at"` // timeline position
	Gain     float64 `yaml:"gain,omitempty"`
	Loops    int     `yaml:"loops,omitempty"`
	Zoom     float64 `yaml:"zoom,omitempty"`
	Caption  string  `yaml:"caption,omitempty"`
	Path     string  `yaml:"path,omitempty"`
}

// Options control the visual treatment of cuts.
type Options struct {
	ZoomRatio     float64
	EmphasisWords []string
	FadeIn        float64
	Captions      bool
	Output        string
}

// BuildOps lists the operations that render plan over mix.
func BuildOps(plan *director.Plan, mix *mixer.Mix, opts Options) []Operation {
	tl := plan.Timeline()
	var ops []Operation

	for i, c := range plan.Cuts {
		p := c.Placement
		ops = append(ops, Operation{
			Kind:     OpCut,
			Index:    i,
			Track:    TrackVideo,
			Source:   plan.Source,
			Start:    c.Allocation.Window.Start,
			Duration: p.VideoDuration,
			At:       p.VideoStart,
		})

		comp := Operation{Kind: OpComposite, Index: i, Track: TrackVideo, Duration: p.VideoDuration, At: p.VideoStart, Zoom: 1}
		if opts.ZoomRatio > 1 && hasEmphasis(c.Text, opts.EmphasisWords) {
			comp.Zoom = opts.ZoomRatio
		}
		if opts.Captions {
			comp.Caption = c.Text
		}
		ops = append(ops, comp)

		if i > 0 && opts.FadeIn > 0 {
			ops = append(ops, Operation{Kind: OpFade, Index: i, Track: TrackVideo, Duration: opts.FadeIn, At: p.VideoStart})
		}

		start, dur := tl.AudioSpan(i)
		if c.AudioPath != "" && dur > 0 {
			ops = append(ops, Operation{
				Kind:     OpSetAudio,
				Index:    i,
				Track:    TrackNarration,
				Source:   c.AudioPath,
				Duration: dur,
				At:       start,
				Gain:     1,
			})
		}
	}

	if mix != nil && mix.Background != nil {
		bed := mix.Background
		ops = append(ops, Operation{
			Kind:     OpSetAudio,
			Track:    TrackBackground,
			Source:   bed.Track.Path,
			Duration: bed.Duration,
			Gain:     bed.Gain,
			Loops:    bed.Loops,
		})
		if bed.FadeOut > 0 {
			ops = append(ops, Operation{
				Kind:     OpFade,
				Track:    TrackBackground,
				Duration: bed.FadeOut,
				At:       bed.Duration - bed.FadeOut,
			})
		}
	}

	ops = append(ops, Operation{Kind: OpWrite, Duration: tl.Duration, Path: opts.Output})
	return ops
}

func hasEmphasis(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}
