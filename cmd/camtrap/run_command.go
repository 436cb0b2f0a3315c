package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"camtrap/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.Options
	var threshold float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the whole package: extract, deployments, link, observations",
		Long: "Run every stage in order against the configured project. --detect adds the\n" +
			"classifier pass and --merge reconciles labels and detections afterwards.",
		Args: cobra.NoArgs,
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
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			reports, runErr := pipeline.New(cfg, opts).Run(cmd.Context(), logger)
			if len(reports) > 0 {
				if err := printReports(cmd, ctx.jsonOutput(), reports...); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&opts.Detect, "detect", false, "Run the image classifier after generating observations")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "Merge human labels and AI detections at the end")
	cmd.Flags().Float64Var(&threshold, "ai-threshold", 0, "Minimum classification probability for AI fills (default: merge.ai_threshold)")
	cmd.Flags().BoolVar(&opts.InPlace, "inplace", false, "Replace observations.csv with the merged table")
	return cmd
}
