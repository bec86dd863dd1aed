package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/reelcut/internal/allocator"
	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/director"
	"github.com/ivlev/reelcut/internal/effects"
	"github.com/ivlev/reelcut/internal/index"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/renderer"
)

type fakeIndexer struct {
	calls int
}

func (f *fakeIndexer) Build(context.Context, string, string) ([]index.Observation, error) {
	f.calls++
	var obs []index.Observation
	for ts := 0; ts < 120; ts++ {
		text := "corridor"
		switch {
		case ts >= 30 && ts < 34:
			text = "门 门 门"
		case ts >= 80 && ts < 83:
			text = "钥匙"
		}
		obs = append(obs, index.Observation{Timestamp: float64(ts), Text: text})
	}
	return obs, nil
}

type fakeSynth struct{}

func (fakeSynth) Synthesize(_ context.Context, text, outPath string) error {
	return os.WriteFile(outPath, []byte(text), 0644)
}

type fakeProber struct {
	source float64
}

func (f fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if strings.HasSuffix(path, ".mp4") {
		return f.source, nil
	}
	if strings.Contains(path, "bgm") {
		return 2.5, nil
	}
	return 3.0, nil
}

type fakeEncoder struct {
	graph *renderer.Graph
	out   string
}

func (f *fakeEncoder) Render(_ context.Context, g *renderer.Graph, out string, _ config.OutputConfig) error {
	f.graph, f.out = g, out
	return nil
}

func newTestProject(t *testing.T) (*Project, *fakeIndexer, *fakeEncoder) {
	t.Helper()
	dir := t.TempDir()

	script := filepath.Join(dir, "script.yaml")
	os.WriteFile(script, []byte(`
- text: 门开了
  keywords: [门]
- text: 钥匙在哪里
  keywords: [钥匙]
- text: 没人知道
  keywords: [不存在]
`), 0644)

	bgm := filepath.Join(dir, "bgm", "suspense", "bgm_a.mp3")
	os.MkdirAll(filepath.Dir(bgm), 0755)
	os.WriteFile(bgm, []byte("x"), 0644)

	cfg := config.Default()
	cfg.InputVideo = filepath.Join(dir, "movie.mp4")
	cfg.NarrationPath = script
	cfg.OutputVideo = filepath.Join(dir, "out", "reel.mp4")
	cfg.WorkDir = filepath.Join(dir, "work")
	cfg.Voice.Dir = filepath.Join(dir, "work", "voice")
	cfg.Music.Dir = filepath.Join(dir, "bgm")
	cfg.Allocation.Seed = 7

	p := NewProject(cfg, logger.NewNop())
	idxr := &fakeIndexer{}
	enc := &fakeEncoder{}
	p.Cache = index.NewFileCache(filepath.Join(dir, "cache"), cfg.Index.Interval)
	p.Indexer = idxr
	p.Synth = fakeSynth{}
	p.Prober = fakeProber{source: 120}
	p.Encoder = enc
	p.Effect = &effects.DefaultEffect{}
	return p, idxr, enc
}

func TestRun(t *testing.T) {
	p, idxr, enc := newTestProject(t)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if idxr.calls != 1 {
		t.Errorf("expected one indexing pass, got %d", idxr.calls)
	}

	plan := res.Plan
	if len(plan.Cuts) != 3 {
		t.Fatalf("expected 3 cuts, got %d", len(plan.Cuts))
	}
	if w := plan.Cuts[0].Allocation.Window; w.Start < 27.5 || w.Start > 33.5 {
		t.Errorf("first cut should land on the door footage, got %+v", w)
	}
	if w := plan.Cuts[1].Allocation.Window; w.Start < 77.5 || w.Start > 82.5 {
		t.Errorf("second cut should land on the key footage, got %+v", w)
	}
	if s := plan.Cuts[2].Allocation.Strategy; s != allocator.FirstFit {
		t.Errorf("unmatched keywords should fall back to first fit, got %s", s)
	}

	tol := p.Config.Allocation.OverlapTolerance
	for i := range plan.Cuts {
		for j := i + 1; j < len(plan.Cuts); j++ {
			a, b := plan.Cuts[i].Allocation.Window, plan.Cuts[j].Allocation.Window
			if a.Conflicts(b, tol) {
				t.Errorf("cuts %d and %d share footage: %+v %+v", i, j, a, b)
			}
		}
	}

	if enc.graph == nil || enc.out != p.Config.OutputVideo {
		t.Fatalf("encoder not invoked with output %s", p.Config.OutputVideo)
	}
	if !strings.Contains(enc.graph.Filter, "amix=inputs=4") {
		t.Errorf("expected narration and bed to be mixed: %s", enc.graph.Filter)
	}
	if res.Mix.Background == nil || res.Mix.Background.Loops != 4 {
		t.Errorf("expected a 4-loop bed under %.1fs, got %+v", plan.Duration, res.Mix.Background)
	}
}

func TestRunUsesCacheAndWritesPlan(t *testing.T) {
	p, idxr, enc := newTestProject(t)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	p.Config.PlanOnly = true
	enc.graph = nil
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("plan-only run failed: %v", err)
	}
	if idxr.calls != 1 {
		t.Errorf("expected cached index on second run, indexer called %d times", idxr.calls)
	}
	if enc.graph != nil {
		t.Error("plan-only run should not render")
	}
	if res.PlanPath == "" {
		t.Fatal("expected a plan path")
	}

	plan, err := director.ReadPlan(res.PlanPath)
	if err != nil {
		t.Fatalf("ReadPlan failed: %v", err)
	}
	if len(plan.Cuts) != 3 || plan.RunID != p.RunID {
		t.Errorf("unexpected plan read back: %d cuts, run %s", len(plan.Cuts), plan.RunID)
	}
}
