package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/reelcut/internal/config"
	"github.com/ivlev/reelcut/internal/logger"
	"github.com/ivlev/reelcut/internal/system"
)

var (
	configPath string
	flagLog    string
	flagInput  string
	flagScript string
	flagOutput string
	flagWork   string
	flagWorker int
	flagSeed   int64
	flagStats  bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelcut",
	Short: "Assemble narrated short-form videos from long source footage",
	Long: `reelcut cuts a narrated short from a source video. Each narration line is
matched against on-screen text to pick fresh footage, lines are laid out as
J-cuts, and a background music bed is looped underneath.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (defaults are used when empty)")
	pf.StringVar(&flagLog, "log-mode", "", "Log mode: dev or prod")
	pf.StringVarP(&flagInput, "input", "i", "", "Source video or directory (default: newest video in input/video/)")
	pf.StringVarP(&flagScript, "narration", "n", "", "Narration script, YAML or JSON (default: newest script in input/script/)")
	pf.StringVarP(&flagOutput, "output", "o", "", "Output video (default: generated in output/)")
	pf.StringVar(&flagWork, "work-dir", "", "Directory for frames, narration audio and plans")
	pf.IntVar(&flagWorker, "workers", 0, "Parallel workers for indexing and narration")
	pf.Int64Var(&flagSeed, "seed", 0, "Seed for tie-breaks and music choice (0 = time-based)")
	pf.BoolVar(&flagStats, "stats", false, "Print a performance report and append it to benchmark.log")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(renderCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	cfg.BuildVersion = buildVersion

	flags := cmd.Flags()
	if flags.Changed("log-mode") {
		cfg.LogMode = flagLog
	}
	if flags.Changed("input") {
		cfg.InputVideo = flagInput
	}
	if flags.Changed("narration") {
		cfg.NarrationPath = flagScript
	}
	if flags.Changed("output") {
		cfg.OutputVideo = flagOutput
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = flagWork
		cfg.Voice.Dir = filepath.Join(flagWork, "voice")
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorker
	}
	if flags.Changed("seed") {
		cfg.Allocation.Seed = flagSeed
	}
	if flags.Changed("stats") {
		cfg.ShowStats = flagStats
	}

	log, err = logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	system.InitResourceLimits(log)

	for _, d := range []string{"input/video", "input/script", "output"} {
		os.MkdirAll(d, 0755)
	}

	if cfg.InputVideo == "" {
		cfg.InputVideo = "input/video"
	}
	if cfg.InputVideo, err = system.ResolveInput(cfg.InputVideo, system.VideoExts); err != nil {
		return fmt.Errorf("no source video: %w. Put a video in input/video/", err)
	}
	if needsNarration(cmd) {
		if cfg.NarrationPath == "" {
			cfg.NarrationPath = "input/script"
		}
		if cfg.NarrationPath, err = system.ResolveInput(cfg.NarrationPath, system.ScriptExts); err != nil {
			return fmt.Errorf("no narration script: %w. Put a script in input/script/", err)
		}
	}

	if cfg.OutputVideo == "" {
		cfg.OutputVideo = defaultOutput(cfg.InputVideo)
	}
	resolveEncoder(cmd.Context(), cfg)

	return cfg.Validate()
}

// needsNarration is false for commands that never read the script: indexing,
// and rendering a saved plan.
func needsNarration(cmd *cobra.Command) bool {
	switch cmd {
	case indexCmd:
		return false
	case renderCmd:
		return !cmd.Flags().Changed("plan")
	}
	return true
}

func defaultOutput(input string) string {
	baseName := filepath.Base(input)
	nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	cleanName := strings.ReplaceAll(nameOnly, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
}

// resolveEncoder picks a hardware encoder for "auto" and a matching default quality.
func resolveEncoder(ctx context.Context, cfg *config.Config) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Output.VideoEncoder == "" || cfg.Output.VideoEncoder == "auto" {
		cfg.Output.VideoEncoder = system.GetBestH264Encoder(ctx)
		if cfg.Output.VideoEncoder != "libx264" {
			log.Info("hardware encoder detected", "encoder", cfg.Output.VideoEncoder)
		}
	}
	if cfg.Output.Quality == 0 {
		switch cfg.Output.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Output.Quality = 75
		case "h264_nvenc":
			cfg.Output.Quality = 28
		default:
			cfg.Output.Quality = 23
		}
	}
}
