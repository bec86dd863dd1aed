package index

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ivlev/reelcut/internal/analyzer"
	"github.com/ivlev/reelcut/internal/source"
)

type fakeSampler struct {
	frames []source.Frame
}

func (s *fakeSampler) Sample(_ context.Context, _ string, _ float64, _ string) ([]source.Frame, error) {
	return s.frames, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	texts map[string]string
	fail  map[string]bool
}

func (e *fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, path)
	if e.fail[path] {
		return "", errors.New("ocr failed")
	}
	return e.texts[path], nil
}

type fakeCache struct {
	obs   []Observation
	found bool
	saved int
}

func (c *fakeCache) Load(context.Context, string) ([]Observation, bool, error) {
	return c.obs, c.found, nil
}

func (c *fakeCache) Save(_ context.Context, _ string, obs []Observation) error {
	c.saved++
	c.obs = obs
	return nil
}

func writeFrame(t *testing.T, dir string, i int, v uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for p := range img.Pix {
		img.Pix[p] = v
	}
	path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuilderReusesTextForStaticFrames(t *testing.T) {
	dir := t.TempDir()
	levels := []uint8{0, 2, 200, 198, 0}
	var frames []source.Frame
	for i, v := range levels {
		frames = append(frames, source.Frame{Index: i, Timestamp: float64(i), Path: writeFrame(t, dir, i, v)})
	}

	ext := &fakeExtractor{texts: map[string]string{
		frames[0].Path: "dark",
		frames[2].Path: "bright",
		frames[4].Path: "dark again",
	}}
	b := &Builder{
		Sampler:   &fakeSampler{frames: frames},
		Extractor: ext,
		Detector:  analyzer.NewDiffDetector(),
		Interval:  1,
		Workers:   3,
	}

	obs, err := b.Build(context.Background(), "movie.mp4", dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(ext.calls) != 3 {
		t.Errorf("expected 3 extractions, got %d: %v", len(ext.calls), ext.calls)
	}
	want := []string{"dark", "dark", "bright", "bright", "dark again"}
	for i, o := range obs {
		if o.Text != want[i] {
			t.Errorf("frame %d: got %q, want %q", i, o.Text, want[i])
		}
		if o.Timestamp != float64(i) {
			t.Errorf("frame %d: timestamp %.1f", i, o.Timestamp)
		}
	}
}

func TestBuilderToleratesExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	frames := []source.Frame{
		{Index: 0, Timestamp: 0, Path: writeFrame(t, dir, 0, 0)},
		{Index: 1, Timestamp: 1, Path: writeFrame(t, dir, 1, 255)},
	}
	ext := &fakeExtractor{
		texts: map[string]string{frames[1].Path: "ok"},
		fail:  map[string]bool{frames[0].Path: true},
	}
	b := &Builder{
		Sampler:   &fakeSampler{frames: frames},
		Extractor: ext,
		Detector:  analyzer.NewDiffDetector(),
		Interval:  1,
	}

	obs, err := b.Build(context.Background(), "movie.mp4", dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if obs[0].Text != "" || obs[1].Text != "ok" {
		t.Errorf("unexpected observations: %+v", obs)
	}
}

func TestLoadOrBuild(t *testing.T) {
	ctx := context.Background()
	built := 0
	build := func(context.Context) ([]Observation, error) {
		built++
		return []Observation{{Timestamp: 0, Text: "fresh"}}, nil
	}

	cache := &fakeCache{}
	idx, hit, err := LoadOrBuild(ctx, cache, "id", build, nil)
	if err != nil {
		t.Fatalf("LoadOrBuild miss: %v", err)
	}
	if hit || built != 1 || cache.saved != 1 {
		t.Errorf("miss: hit=%v built=%d saved=%d", hit, built, cache.saved)
	}
	if idx.TextInWindow(0, 1) != "fresh" {
		t.Errorf("unexpected text %q", idx.TextInWindow(0, 1))
	}

	cache.found = true
	idx, hit, err = LoadOrBuild(ctx, cache, "id", build, nil)
	if err != nil {
		t.Fatalf("LoadOrBuild hit: %v", err)
	}
	if !hit || built != 1 {
		t.Errorf("hit: hit=%v built=%d", hit, built)
	}
	if idx.Len() != 1 {
		t.Errorf("expected 1 observation, got %d", idx.Len())
	}
}
