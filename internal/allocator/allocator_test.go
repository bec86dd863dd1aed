package allocator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ivlev/reelcut/internal/index"
	"github.com/ivlev/reelcut/internal/scorer"
)

func newAllocator(obs []index.Observation, duration float64) *Allocator {
	s := scorer.New(index.New(obs), scorer.DefaultWeights())
	return New(s, duration, DefaultOptions(), rand.New(rand.NewSource(42)), nil)
}

func TestAllocatePicksUniqueMatch(t *testing.T) {
	var obs []index.Observation
	for ts := 0; ts < 60; ts++ {
		obs = append(obs, index.Observation{Timestamp: float64(ts), Text: "static"})
	}
	obs[30].Text = "the vault, the vault, the vault"

	// Only the window starting at 30 covers the match when target is 0.5.
	a := newAllocator(obs, 60)
	al := a.Allocate([]string{"vault"}, 0.5)
	if al.Strategy != Matched {
		t.Fatalf("expected matched strategy, got %s", al.Strategy)
	}
	if al.Score != 13 {
		t.Errorf("expected score 13, got %d", al.Score)
	}
	if al.Window.Start != 30 || al.Window.End != 30.5 {
		t.Errorf("expected window (30, 30.5), got %+v", al.Window)
	}
}

func TestAllocateWindowsDoNotOverlap(t *testing.T) {
	var obs []index.Observation
	for ts := 0; ts < 120; ts++ {
		obs = append(obs, index.Observation{Timestamp: float64(ts), Text: "clue"})
	}
	a := newAllocator(obs, 120)

	targets := []float64{4, 7.5, 3.2, 10, 6, 2.5, 8}
	for _, target := range targets {
		al := a.Allocate([]string{"clue"}, target)
		if al.Strategy == OverlapAtZero {
			t.Fatalf("unexpected overlap-at-zero for target %.1f", target)
		}
		if got := al.Window.Duration(); math.Abs(got-target) > 1e-9 {
			t.Errorf("window duration %.2f, want %.2f", got, target)
		}
	}

	used := a.Used()
	tol := DefaultOptions().Tolerance
	for i := range used {
		for j := i + 1; j < len(used); j++ {
			if used[i].Conflicts(used[j], tol) {
				t.Errorf("windows %d %+v and %d %+v overlap", i, used[i], j, used[j])
			}
		}
	}
	t.Logf("allocated %v", used)
}

func TestAllocateFallsBackToFirstFit(t *testing.T) {
	a := newAllocator([]index.Observation{{Timestamp: 0, Text: "nothing"}}, 30)

	first := a.Allocate([]string{"absent"}, 4)
	if first.Strategy != FirstFit || first.Window.Start != 0 {
		t.Errorf("expected first-fit at 0, got %+v", first)
	}
	second := a.Allocate([]string{"absent"}, 4)
	if second.Strategy != FirstFit || second.Window.Start != 5 {
		t.Errorf("expected first-fit at 5, got %+v", second)
	}
}

func TestAllocateOverlapsAtZeroWhenTargetExceedsSource(t *testing.T) {
	a := newAllocator([]index.Observation{{Timestamp: 0, Text: "x"}}, 10)

	al := a.Allocate([]string{"x"}, 12)
	if al.Strategy != OverlapAtZero {
		t.Fatalf("expected overlap-at-zero, got %s", al.Strategy)
	}
	if al.Window.Start != 0 || al.Window.End != 12 {
		t.Errorf("expected window (0, 12), got %+v", al.Window)
	}
	if al.Warning == "" {
		t.Error("expected a warning")
	}
}

func TestAllocateOverlapsAtZeroWhenExhausted(t *testing.T) {
	a := newAllocator(nil, 10)
	a.Allocate(nil, 8)
	al := a.Allocate(nil, 5)
	if al.Strategy != OverlapAtZero || al.Window.Start != 0 {
		t.Errorf("expected overlap-at-zero, got %+v", al)
	}
}

func TestAllocateScanIncludesLastStart(t *testing.T) {
	obs := []index.Observation{{Timestamp: 9.5, Text: "end"}}
	a := newAllocator(obs, 10)
	al := a.Allocate([]string{"end"}, 0.5)
	if al.Window.Start != 9.5 {
		t.Errorf("expected start 9.5, got %+v", al)
	}
}

func TestAllocateAt(t *testing.T) {
	tests := []struct {
		name        string
		preferred   float64
		target      float64
		wantStart   float64
		wantClamped bool
	}{
		{"fits", 12, 5, 12, false},
		{"negative", -3, 5, 0, false},
		{"overruns", 27, 5, 24.5, true},
		{"longer than source", 0, 40, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAllocator(nil, 30)
			al := a.AllocateAt(tt.preferred, tt.target)
			if al.Window.Start != tt.wantStart || al.Clamped != tt.wantClamped {
				t.Errorf("AllocateAt(%.1f, %.1f) = %+v, want start %.1f clamped %v",
					tt.preferred, tt.target, al, tt.wantStart, tt.wantClamped)
			}
			if al.Strategy != Preferred {
				t.Errorf("expected preferred strategy, got %s", al.Strategy)
			}
			if len(a.Used()) != 1 {
				t.Errorf("expected the window to be recorded")
			}
		})
	}
}
