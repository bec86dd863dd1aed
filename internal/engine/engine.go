package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/reelcut/internal/allocator"
	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/director"
	"github.com/ivlev/reelcut/internal/effects"
	"github.com/ivlev/reelcut/internal/index"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/mixer"
	"github.com/ivlev/reelcut/internal/narration"
	"github.com/ivlev/reelcut/internal/renderer"
	"github.com/ivlev/reelcut/internal/scorer"
	"github.com/ivlev/reelcut/internal/source"
	"github.com/ivlev/reelcut/internal/system"
	"github.com/ivlev/reelcut/internal/timeline"
	"github.com/ivlev/reelcut/internal/video"
)

// Indexer builds observations for a video on a cache miss.
type Indexer interface {
	Build(ctx context.Context, videoPath, frameDir string) ([]index.Observation, error)
}

// Project is one assembly run: index, voice, direct, mix and render.
type Project struct {
	Config  *config.Config
	Log     *logger.Logger
	Cache   index.Cache
	Indexer Indexer
	Synth   narration.Synthesizer
	Prober  narration.Prober
	Encoder video.VideoEncoder
	Effect  effects.Effect

	RunID string
	rng   *rand.Rand
	seed  int64
	stats runStats
}

type runStats struct {
	start    time.Time
	index    time.Duration
	voice    time.Duration
	direct   time.Duration
	render   time.Duration
	cacheHit bool
	segments int
}

// Result is what a run produced.
type Result struct {
	RunID    string
	Plan     *director.Plan
	PlanPath string
	Output   string
	Mix      *mixer.Mix
	Ops      []renderer.Operation
}

func NewProject(cfg *config.Config, log *logger.Logger) *Project {
	p := &Project{
		Config: cfg,
		RunID:  uuid.NewString(),
	}
	p.Log = logger.OrNop(log).With("run", p.RunID)

	p.seed = cfg.Allocation.Seed
	if p.seed == 0 {
		p.seed = time.Now().UnixNano()
	}
	p.rng = rand.New(rand.NewSource(p.seed))
	return p
}

// Run executes the whole pipeline. With PlanOnly set it stops after writing the plan.
func (p *Project) Run(ctx context.Context) (*Result, error) {
	p.stats.start = time.Now()
	p.Log.Info("run started", "input", p.Config.InputVideo, "narration", p.Config.NarrationPath, "seed", p.seed)

	plan, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: p.RunID, Plan: plan}
	if p.Config.PlanOutput != "" || p.Config.PlanOnly {
		path := p.Config.PlanOutput
		if path == "" {
			path = director.GeneratePlanPath(filepath.Join(p.Config.WorkDir, "plans"))
		}
		if err := director.WritePlan(plan, path); err != nil {
			return nil, fmt.Errorf("write plan: %w", err)
		}
		res.PlanPath = path
		p.Log.Info("plan written", "path", path)
	}
	if p.Config.PlanOnly {
		return res, nil
	}

	mix, ops, err := p.Render(ctx, plan)
	if err != nil {
		return nil, err
	}
	res.Mix, res.Ops, res.Output = mix, ops, p.Config.OutputVideo

	if p.Config.ShowStats {
		p.report(plan)
	}
	return res, nil
}

// LoadIndex returns the content index of the input video, building it on a cache miss.
func (p *Project) LoadIndex(ctx context.Context) (*index.Index, source.Video, error) {
	start := time.Now()
	defer func() { p.stats.index = time.Since(start) }()

	src := source.Video{Path: p.Config.InputVideo, Identity: index.Identity(p.Config.InputVideo)}
	dur, err := p.Prober.Duration(ctx, src.Path)
	if err != nil {
		return nil, src, fmt.Errorf("probe source video: %w", err)
	}
	src.Duration = dur

	frameDir := filepath.Join(p.Config.WorkDir, "frames", src.Identity)
	build := func(ctx context.Context) ([]index.Observation, error) {
		if p.Indexer == nil {
			return nil, errors.New("no indexer configured")
		}
		return p.Indexer.Build(ctx, src.Path, frameDir)
	}
	idx, hit, err := index.LoadOrBuild(ctx, p.Cache, src.Identity, build, p.Log)
	if err != nil {
		return nil, src, err
	}
	p.stats.cacheHit = hit
	p.Log.Info("content index ready", "observations", idx.Len(), "source_duration", dur, "cached", hit)
	return idx, src, nil
}

// Plan indexes the source, voices the script and allocates footage.
func (p *Project) Plan(ctx context.Context) (*director.Plan, error) {
	idx, src, err := p.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}

	segs, err := narration.LoadScript(p.Config.NarrationPath)
	if err != nil {
		return nil, err
	}
	p.stats.segments = len(segs)

	voiceStart := time.Now()
	voiced, err := narration.Voice(ctx, segs, p.Synth, p.Prober, p.Config.Voice.Dir, p.Config.Workers, p.Log)
	if err != nil {
		return nil, err
	}
	p.stats.voice = time.Since(voiceStart)

	directStart := time.Now()
	cfg := p.Config
	sc := scorer.New(idx, scorer.Weights{
		Base:  cfg.Scoring.BaseWeight,
		Bonus: cfg.Scoring.BonusWeight,
		Cap:   cfg.Scoring.OccurrenceCap,
	})
	alloc := allocator.New(sc, src.Duration, allocator.Options{
		ScanStep:        cfg.Allocation.ScanStep,
		Tolerance:       cfg.Allocation.OverlapTolerance,
		FallbackStep:    cfg.Allocation.FallbackStep,
		PreferredBuffer: cfg.Allocation.PreferredBuffer,
		PlateauRatio:    cfg.Scoring.PlateauRatio,
	}, p.rng, p.Log)

	d := director.NewDirector(alloc, src, timeline.Options{
		JCutDuration: cfg.Timeline.JCutDuration,
		JCutRatio:    cfg.Timeline.JCutRatio,
	}, p.Log)
	plan := d.Direct(voiced)
	plan.RunID = p.RunID
	p.stats.direct = time.Since(directStart)

	for _, w := range plan.Warnings {
		p.Log.Warn("plan warning", "warning", w)
	}
	p.Log.Info("plan ready", "cuts", len(plan.Cuts), "duration", plan.Duration)
	return plan, nil
}

// Render mixes the background bed under plan and encodes the result.
func (p *Project) Render(ctx context.Context, plan *director.Plan) (*mixer.Mix, []renderer.Operation, error) {
	start := time.Now()
	cfg := p.Config

	mix := mixer.New(cfg.Music.Gain, cfg.Music.FadeOut, p.Log).
		Mix(p.selectBed(ctx), plan.Duration, mixer.Track{Duration: plan.Duration})

	ops := renderer.BuildOps(plan, mix, renderer.Options{
		ZoomRatio:     cfg.Effects.ZoomRatio,
		EmphasisWords: cfg.Effects.EmphasisWords,
		FadeIn:        cfg.Effects.FadeIn,
		Captions:      cfg.Effects.Captions,
		Output:        cfg.OutputVideo,
	})

	graph, err := renderer.BuildFilterGraph(ops, p.Effect, config.ClipParams{
		Width:    cfg.Output.Width,
		Height:   cfg.Output.Height,
		FPS:      cfg.Output.FPS,
		Vertical: cfg.Effects.Vertical,
		FontFile: cfg.Effects.FontFile,
		FontSize: cfg.Effects.FontSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build filter graph: %w", err)
	}

	p.Log.Info("rendering", "output", cfg.OutputVideo, "cuts", len(plan.Cuts), "duration", plan.Duration, "encoder", cfg.Output.VideoEncoder)
	if err := p.Encoder.Render(ctx, graph, cfg.OutputVideo, cfg.Output); err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}
	p.stats.render = time.Since(start)
	p.Log.Info("render finished", "output", cfg.OutputVideo, "elapsed", p.stats.render.String())
	return mix, ops, nil
}

func (p *Project) selectBed(ctx context.Context) *mixer.Track {
	pool, err := mixer.LoadPool(p.Config.Music.Dir, p.Config.Music.Moods)
	if err != nil {
		p.Log.Warn("background pool unreadable", "dir", p.Config.Music.Dir, "error", err)
		return nil
	}
	path := pool.Select(p.rng, p.Config.Music.Default)
	if path == "" {
		return nil
	}
	dur, err := p.Prober.Duration(ctx, path)
	if err != nil {
		p.Log.Warn("background track unreadable, skipping", "track", path, "error", err)
		return nil
	}
	return &mixer.Track{Path: path, Duration: dur}
}

func (p *Project) report(plan *director.Plan) {
	total := time.Since(p.stats.start)
	host := system.CollectHostStats(200 * time.Millisecond)

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Run: %s\n"+
			"Total Time: %.2fs\n"+
			"Indexing: %.2fs (cached: %v)\n"+
			"Narration: %.2fs\n"+
			"Directing: %.3fs\n"+
			"Rendering: %.2fs\n"+
			"Host: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, p.RunID, total.Seconds(), p.stats.index.Seconds(), p.stats.cacheHit,
		p.stats.voice.Seconds(), p.stats.direct.Seconds(), p.stats.render.Seconds(), host,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Run: %s | Input: %s | Segments: %d | Timeline: %.2fs | Total: %.2fs | Index: %.2fs | Render: %.2fs | CPU: %.1f%%\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.RunID,
		filepath.Base(p.Config.InputVideo),
		p.stats.segments,
		plan.Duration,
		total.Seconds(),
		p.stats.index.Seconds(),
		p.stats.render.Seconds(),
		host.CPUPercent,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Log.Warn("could not write benchmark.log", "error", err)
		return
	}
	defer f.Close()
	f.WriteString(logEntry)
}
