package mixer

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestMixLoopsShortBed(t *testing.T) {
	m := New(0.12, 1.0, nil)
	tests := []struct {
		name      string
		bg        float64
		target    float64
		wantLoops int
	}{
		{"shorter", 25, 60, 3},
		{"exact multiple", 20, 60, 3},
		{"longer", 90, 60, 1},
		{"equal", 60, 60, 1},
		{"tiny", 0.7, 8, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mix := m.Mix(&Track{Path: "bgm.mp3", Duration: tt.bg}, tt.target, Track{Path: "voice.wav", Duration: tt.target})
			bed := mix.Background
			if bed == nil {
				t.Fatal("expected a background bed")
			}
			if bed.Loops != tt.wantLoops {
				t.Errorf("loops %d, want %d", bed.Loops, tt.wantLoops)
			}
			if bed.LoopedDuration < tt.target {
				t.Errorf("looped %.2f shorter than target %.2f", bed.LoopedDuration, tt.target)
			}
			if bed.Duration != tt.target {
				t.Errorf("trimmed %.2f, want %.2f", bed.Duration, tt.target)
			}
			if bed.Gain != 0.12 {
				t.Errorf("gain %.2f, want 0.12", bed.Gain)
			}
			if bed.FadeOut > tt.target*0.1+1e-9 {
				t.Errorf("fade-out %.2f exceeds 10%% of %.2f", bed.FadeOut, tt.target)
			}
		})
	}
}

func TestMixWithoutBackground(t *testing.T) {
	m := New(0.12, 1.0, nil)
	for _, bg := range []*Track{nil, {Path: "x.mp3"}, {Duration: 10}} {
		mix := m.Mix(bg, 30, Track{Path: "voice.wav", Duration: 30})
		if mix.Background != nil {
			t.Errorf("expected narration-only mix for %+v", bg)
		}
		if mix.Duration != 30 {
			t.Errorf("duration %.2f, want 30", mix.Duration)
		}
	}
}

func TestMixFadeOutClamped(t *testing.T) {
	mix := New(0.12, 3.0, nil).Mix(&Track{Path: "b.mp3", Duration: 100}, 12, Track{})
	if math.Abs(mix.Background.FadeOut-1.2) > 1e-9 {
		t.Errorf("fade-out %.2f, want 1.2", mix.Background.FadeOut)
	}
}

func TestPoolSelect(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"suspense/a.mp3", "suspense/notes.txt", "epic/b.wav"} {
		path := filepath.Join(dir, f)
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pool, err := LoadPool(dir, []string{"suspense", "epic", "emotional"})
	if err != nil {
		t.Fatalf("LoadPool failed: %v", err)
	}
	if got := len(pool.All()); got != 2 {
		t.Fatalf("expected 2 tracks, got %d: %v", got, pool.All())
	}
	if len(pool.Mood("emotional")) != 0 {
		t.Error("expected empty mood for missing directory")
	}

	rng := rand.New(rand.NewSource(7))
	picked := pool.Select(rng, "")
	if picked == "" {
		t.Error("expected a pool track")
	}

	def := filepath.Join(dir, "epic", "b.wav")
	if got := pool.Select(rng, def); got != def {
		t.Errorf("expected default %s, got %s", def, got)
	}
	if got := pool.Select(rng, filepath.Join(dir, "missing.mp3")); got == "" {
		t.Error("expected fallback to pool when default is missing")
	}

	empty, _ := LoadPool(filepath.Join(dir, "nowhere"), []string{"epic"})
	if got := empty.Select(rng, ""); got != "" {
		t.Errorf("expected no track from empty pool, got %s", got)
	}
}
