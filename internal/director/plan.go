package director

import (
	"github.com/ivlev/reelcut/internal/allocator"
	"github.com/ivlev/reelcut/internal/timeline"
)

// Plan is the full edit decision list for one run.
type Plan struct {
	Version        string   `yaml:"version"`
	RunID          string   `yaml:"run_id,omitempty"`
	Source         string   `yaml:"source"`
	SourceDuration float64  `yaml:"source_duration"`
	Duration       float64  `yaml:"duration"` // Total timeline duration in seconds
	Cuts           []Cut    `yaml:"cuts"`
	Warnings       []string `yaml:"warnings,omitempty"`
}

// Cut joins a narration segment with the footage chosen for it.
type Cut struct {
	Index      int                  `yaml:"index"`
	Text       string               `yaml:"text"`
	Keywords   []string             `yaml:"keywords,omitempty"`
	AudioPath  string               `yaml:"audio"`
	Allocation allocator.Allocation `yaml:"allocation"`
	Placement  timeline.Placement   `yaml:"placement"`
}

// Timeline rebuilds the assembled timeline from the plan's placements.
func (p *Plan) Timeline() *timeline.Timeline {
	tl := &timeline.Timeline{Duration: p.Duration}
	for _, c := range p.Cuts {
		tl.Placements = append(tl.Placements, c.Placement)
	}
	return tl
}
