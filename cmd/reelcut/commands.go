package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/reelcut/internal/director"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build (or load) the on-screen text index of the source video",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := newProject(cmd.Context(), cfg, log)
		defer cleanup()
		if err != nil {
			return err
		}
		idx, src, err := p.LoadIndex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("[+++] Indexed %s: %d observations over %.1fs\n", src.Path, idx.Len(), src.Duration)
		return nil
	},
}

var planOut string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Voice the script and write the edit plan without rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.PlanOnly = true
		if planOut != "" {
			cfg.PlanOutput = planOut
		}
		p, cleanup, err := newProject(cmd.Context(), cfg, log)
		defer cleanup()
		if err != nil {
			return err
		}
		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, w := range res.Plan.Warnings {
			fmt.Printf("[!] %s\n", w)
		}
		fmt.Printf("[+++] Plan saved: %s (%d cuts, %.2fs)\n", res.PlanPath, len(res.Plan.Cuts), res.Plan.Duration)
		return nil
	},
}

var renderPlan string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Assemble and encode the final video",
	Long: `Runs the whole pipeline. With --plan the edit plan is read from a file
("latest" picks the newest plan in <work-dir>/plans) and only mixing and
encoding are done.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := newProject(cmd.Context(), cfg, log)
		defer cleanup()
		if err != nil {
			return err
		}

		if renderPlan == "" {
			if planOut != "" {
				cfg.PlanOutput = planOut
			}
			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("[+++] Success! Result: %s\n", res.Output)
			return nil
		}

		path := renderPlan
		if path == "latest" {
			if path, err = director.FindLatestPlan(plansDir()); err != nil {
				return err
			}
		}
		plan, err := director.ReadPlan(path)
		if err != nil {
			return fmt.Errorf("read plan: %w", err)
		}
		log.Info("rendering from plan", "plan", path, "cuts", len(plan.Cuts))
		if _, _, err := p.Render(cmd.Context(), plan); err != nil {
			return err
		}
		fmt.Printf("[+++] Success! Result: %s\n", cfg.OutputVideo)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planOut, "plan-out", "", "Plan file (default: timestamped file in <work-dir>/plans)")
	renderCmd.Flags().StringVar(&planOut, "plan-out", "", "Also save the plan to this file")
	renderCmd.Flags().StringVar(&renderPlan, "plan", "", `Render an existing plan file, or "latest"`)
}
