package allocator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/scorer"
)

// Options tune the window search.
type Options struct {
	ScanStep        float64
	Tolerance       float64
	FallbackStep    float64
	PreferredBuffer float64
	PlateauRatio    float64
}

func DefaultOptions() Options {
	return Options{
		ScanStep:        0.5,
		Tolerance:       0.5,
		FallbackStep:    5.0,
		PreferredBuffer: 0.5,
		PlateauRatio:    0.8,
	}
}

// Allocator hands out source-video windows for one run over one source video.
// It owns the list of windows already used and is not safe for concurrent use.
type Allocator struct {
	scorer   *scorer.Scorer
	duration float64
	opts     Options
	rng      *rand.Rand
	log      *logger.Logger
	used     []Window
}

func New(s *scorer.Scorer, videoDuration float64, opts Options, rng *rand.Rand, log *logger.Logger) *Allocator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Allocator{
		scorer:   s,
		duration: videoDuration,
		opts:     opts,
		rng:      rng,
		log:      logger.OrNop(log),
	}
}

// Used returns a copy of the windows allocated so far, in allocation order.
func (a *Allocator) Used() []Window {
	out := make([]Window, len(a.used))
	copy(out, a.used)
	return out
}

// Allocate picks the best-matching free window of length target.
// It never fails: with no match it falls back to the first free window, and
// with no free window it overlaps at zero and reports a warning.
func (a *Allocator) Allocate(keywords []string, target float64) Allocation {
	var cands []scorer.Candidate
	for _, start := range a.grid(a.opts.ScanStep, target) {
		w := Window{Start: start, End: start + target}
		if a.conflicts(w, a.opts.Tolerance) {
			continue
		}
		cands = append(cands, scorer.Candidate{
			Start: start,
			Score: a.scorer.ScoreWindow(keywords, w.Start, w.End),
		})
	}

	if best, ok := scorer.PickPlateau(cands, a.opts.PlateauRatio, a.rng); ok && best.Score > 0 {
		return a.take(Allocation{
			Window:   Window{Start: best.Start, End: best.Start + target},
			Score:    best.Score,
			Strategy: Matched,
		})
	}

	a.log.Info("no keyword match, using first free window", "keywords", keywords, "target", target)
	for _, start := range a.grid(a.opts.FallbackStep, target) {
		w := Window{Start: start, End: start + target}
		if !a.conflicts(w, 0) {
			return a.take(Allocation{Window: w, Score: scorer.NoMatch, Strategy: FirstFit})
		}
	}

	warning := fmt.Sprintf("no free %.2fs window in %.2fs source, overlapping at 0", target, a.duration)
	a.log.Warn("source exhausted, overlapping at zero", "target", target, "source_duration", a.duration, "used", len(a.used))
	return a.take(Allocation{
		Window:   Window{Start: 0, End: target},
		Score:    scorer.NoMatch,
		Strategy: OverlapAtZero,
		Warning:  warning,
	})
}

// AllocateAt places a window at a caller-chosen start, skipping the search.
// A window running past the end of the source is pulled back silently.
func (a *Allocator) AllocateAt(preferred, target float64) Allocation {
	start := math.Max(0, preferred)
	clamped := false
	if start+target > a.duration {
		start = math.Max(0, a.duration-target-a.opts.PreferredBuffer)
		clamped = true
		a.log.Debug("preferred start clamped", "preferred", preferred, "start", start, "target", target)
	}
	return a.take(Allocation{
		Window:   Window{Start: start, End: start + target},
		Score:    scorer.NoMatch,
		Strategy: Preferred,
		Clamped:  clamped,
	})
}

func (a *Allocator) take(al Allocation) Allocation {
	a.used = append(a.used, al.Window)
	return al
}

// grid lists i*step for i = 0..floor((duration-target)/step).
func (a *Allocator) grid(step, target float64) []float64 {
	span := a.duration - target
	if span < 0 || step <= 0 {
		return nil
	}
	n := int(math.Floor(span/step + 1e-9))
	starts := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		starts = append(starts, float64(i)*step)
	}
	return starts
}

func (a *Allocator) conflicts(w Window, tol float64) bool {
	for _, u := range a.used {
		if w.Conflicts(u, tol) {
			return true
		}
	}
	return false
}
