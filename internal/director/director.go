package director

import (
	"github.com/ivlev/reelcut/internal/allocator"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/narration"
	"github.com/ivlev/reelcut/internal/source"
	"github.com/ivlev/reelcut/internal/timeline"
)

const PlanVersion = "1.0"

// Director turns voiced narration into a plan, one allocation per segment in order.
type Director struct {
	Allocator *allocator.Allocator
	Timeline  timeline.Options
	Source    source.Video
	Log       *logger.Logger
}

func NewDirector(a *allocator.Allocator, src source.Video, opts timeline.Options, log *logger.Logger) *Director {
	return &Director{
		Allocator: a,
		Timeline:  opts,
		Source:    src,
		Log:       log,
	}
}

// Direct allocates a window for every segment, then lays them out as J-cuts.
func (d *Director) Direct(voiced []narration.Voiced) *Plan {
	log := logger.OrNop(d.Log)
	plan := &Plan{
		Version:        PlanVersion,
		Source:         d.Source.Path,
		SourceDuration: d.Source.Duration,
	}

	clips := make([]timeline.Clip, 0, len(voiced))
	for i, v := range voiced {
		var al allocator.Allocation
		if v.PreferredStart != nil {
			al = d.Allocator.AllocateAt(*v.PreferredStart, v.TargetDuration())
		} else {
			al = d.Allocator.Allocate(v.Keywords, v.TargetDuration())
		}
		if al.Warning != "" {
			plan.Warnings = append(plan.Warnings, al.Warning)
		}
		log.Info("segment allocated",
			"segment", i,
			"start", al.Window.Start,
			"end", al.Window.End,
			"score", al.Score,
			"strategy", al.Strategy,
		)

		plan.Cuts = append(plan.Cuts, Cut{
			Index:      i,
			Text:       v.Text,
			Keywords:   v.Keywords,
			AudioPath:  v.AudioPath,
			Allocation: al,
		})
		clips = append(clips, timeline.Clip{
			Window:        al.Window,
			AudioDuration: v.AudioDuration,
			MinDuration:   v.MinDuration,
		})
	}

	tl := timeline.Assemble(clips, d.Timeline)
	for i := range plan.Cuts {
		plan.Cuts[i].Placement = tl.Placements[i]
	}
	plan.Duration = tl.Duration
	return plan
}
