package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"camtrap/internal/classifier"
	"camtrap/internal/config"
	"camtrap/internal/deployments"
	"camtrap/internal/linker"
	"camtrap/internal/media"
	"camtrap/internal/observations"
	"camtrap/internal/reconcile"
	"camtrap/internal/stage"
)

func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newSingleStageCommand(ctx, "extract", "Extract media metadata into media.csv", func(cfg *config.Config) stage.Handler {
			return media.NewStage(cfg)
		}),
		newSingleStageCommand(ctx, "deployments", "Build deployments.csv from the raw deployment sheet", func(cfg *config.Config) stage.Handler {
			return deployments.NewStage(cfg)
		}),
		newSingleStageCommand(ctx, "link", "Link media to deployments by camera serial and time", func(cfg *config.Config) stage.Handler {
			return linker.NewStage(cfg)
		}),
		newObservationsCommand(ctx),
		newDetectCommand(ctx),
		newMergeCommand(ctx),
	}
}

func newSingleStageCommand(ctx *commandContext, use, short string, build func(*config.Config) stage.Handler) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runStage(cmd, ctx, build(cfg))
		},
	}
}

func newObservationsCommand(ctx *commandContext) *cobra.Command {
	var opts observations.Options

	cmd := &cobra.Command{
		Use:   "observations",
		Short: "Generate the observation template from linked media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runStage(cmd, ctx, observations.NewStage(cfg, opts))
		},
	}

	cmd.Flags().StringVar(&opts.MediaPath, "media", "", "Media table to read (default: package media.csv)")
	cmd.Flags().BoolVar(&opts.LabelTemplate, "label-template", false, "Also write observations_to_label.csv for human annotation")
	return cmd
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var opts classifier.StageOptions

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run the image classifier over media and write detections.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runStage(cmd, ctx, classifier.NewStage(cfg, opts))
		},
	}

	cmd.Flags().StringVar(&opts.MediaPath, "media", "", "Media table to read (default: package media.csv)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Classify only the first N media rows (0 = all)")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var opts reconcile.StageOptions
	var threshold float64

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge human labels and AI detections into observations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ai-threshold") {
				if threshold < 0 || threshold > 1 {
					return fmt.Errorf("--ai-threshold must be between 0 and 1, got %v", threshold)
				}
				opts.Threshold = &threshold
			}
			return runStage(cmd, ctx, reconcile.NewStage(cfg, opts))
		},
	}

	cmd.Flags().StringVar(&opts.ObservationsPath, "observations", "", "Observations table to merge into (default: package observations.csv)")
	cmd.Flags().StringVar(&opts.LabelsPath, "labels", "", "Human label table (default: package observations_to_label.csv)")
	cmd.Flags().StringVar(&opts.DetectionsPath, "ai", "", "AI detections table (default: package detections.csv)")
	cmd.Flags().Float64Var(&threshold, "ai-threshold", 0, "Minimum classification probability for AI fills (default: merge.ai_threshold)")
	cmd.Flags().StringVar(&opts.OutPath, "out", "", "Merged output table (default: package observations_merged.csv)")
	cmd.Flags().BoolVar(&opts.InPlace, "inplace", false, "Replace observations.csv with the merged table")
	return cmd
}

// runStage checks the handler's readiness, runs it and prints its summary.
func runStage(cmd *cobra.Command, ctx *commandContext, handler stage.Handler) error {
	if checker, ok := handler.(stage.HealthChecker); ok {
		if health := checker.HealthCheck(cmd.Context()); !health.Ready {
			return fmt.Errorf("%s not ready: %s", handler.Name(), health.Detail)
		}
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	report, err := stage.Run(cmd.Context(), logger, handler)
	if err != nil {
		return err
	}
	return printReports(cmd, ctx.jsonOutput(), report)
}
