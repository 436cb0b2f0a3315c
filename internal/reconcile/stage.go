package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/services"
	"camtrap/internal/stage"
)

// Report counter names.
const (
	CounterObservations         = "observations"
	CounterHumanUpdated         = "human_updated"
	CounterHumanRejected        = "human_rejected"
	CounterLabelsUnmatched      = "labels_unmatched"
	CounterAIFilled             = "ai_filled"
	CounterSkippedLowConfidence = "skipped_low_confidence"
	CounterSkippedHumanOverride = "skipped_human_override"
	CounterUnmatchedAI          = "unmatched_ai"
)

// StageOptions selects the inputs and output of one merge run. Empty paths
// use the package layout defaults.
type StageOptions struct {
	ObservationsPath string
	LabelsPath       string
	DetectionsPath   string
	OutPath          string
	// Threshold overrides merge.ai_threshold when non-nil.
	Threshold *float64
	// InPlace promotes the merged table over observations.csv.
	InPlace bool
}

// Stage merges labels and detections into observations_merged.csv.
type Stage struct {
	cfg    *config.Config
	layout datapackage.Layout
	opts   StageOptions
	clock  Clock
}

// NewStage constructs the merge stage.
func NewStage(cfg *config.Config, opts StageOptions) *Stage {
	return NewStageWithDependencies(cfg, opts, nil)
}

// NewStageWithDependencies allows injecting the clock (used in tests).
func NewStageWithDependencies(cfg *config.Config, opts StageOptions, clock Clock) *Stage {
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	opts.ObservationsPath = orDefault(opts.ObservationsPath, layout.Observations())
	opts.LabelsPath = orDefault(opts.LabelsPath, layout.LabelTemplate())
	opts.DetectionsPath = orDefault(opts.DetectionsPath, layout.Detections())
	opts.OutPath = orDefault(opts.OutPath, layout.MergedObservations())
	return &Stage{cfg: cfg, layout: layout, opts: opts, clock: clock}
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func (s *Stage) Name() string { return "merge" }

// HealthCheck reports whether the observations table exists.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.Exists(s.opts.ObservationsPath) {
		return stage.Unhealthy(s.Name(), "missing "+s.opts.ObservationsPath)
	}
	return stage.Healthy(s.Name())
}

// Run merges and writes the result. observations.csv is required; missing
// labels or detections skip that pass.
func (s *Stage) Run(_ context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(),
		CounterObservations, CounterHumanUpdated, CounterHumanRejected, CounterLabelsUnmatched,
		CounterAIFilled, CounterSkippedLowConfidence, CounterSkippedHumanOverride, CounterUnmatchedAI,
	)
	logger = logging.NewComponentLogger(logger, "reconcile")

	header, observations, err := datapackage.ReadObservations(s.opts.ObservationsPath)
	if err != nil {
		return report, err
	}
	labelHeader, labels, err := datapackage.ReadLabels(s.opts.LabelsPath)
	if err != nil {
		if !errors.Is(err, services.ErrInputMissing) {
			return report, err
		}
		logger.Info("no label sheet; skipping human merge", logging.String(logging.FieldFile, s.opts.LabelsPath))
	}
	detections, err := datapackage.ReadDetections(s.opts.DetectionsPath)
	if err != nil {
		if !errors.Is(err, services.ErrInputMissing) {
			return report, err
		}
		logger.Info("no detections; skipping AI merge", logging.String(logging.FieldFile, s.opts.DetectionsPath))
	}

	threshold := s.cfg.Merge.AIThreshold
	if s.opts.Threshold != nil {
		threshold = *s.opts.Threshold
	}
	merged, summary := Merge(observations, labels, labelHeader, detections, Options{
		HumanClassifiedBy: s.cfg.Merge.HumanClassifiedBy,
		AIClassifiedBy:    s.cfg.Merge.AIClassifiedBy,
		Threshold:         threshold,
		Clock:             s.clock,
	})
	for _, rejected := range summary.Human.Rejected {
		logging.WarnWithContext(logger, "label row rejected", "label_row_rejected",
			append([]logging.Attr{
				logging.String("observation_id", rejected.ObservationID),
				logging.String(logging.FieldErrorHint, "fix the values in the label sheet and merge again"),
				logging.String(logging.FieldImpact, "none of the row's edits applied"),
			}, logging.ErrorAttrs(rejected)...)...,
		)
	}

	if err := datapackage.WriteObservations(s.opts.OutPath, header, merged); err != nil {
		return report, err
	}
	report.Wrote(s.opts.OutPath)

	if s.opts.InPlace {
		if err := Promote(s.opts.OutPath, s.opts.ObservationsPath); err != nil {
			return report, err
		}
		logger.Info("merged observations promoted", logging.String(logging.FieldFile, s.opts.ObservationsPath))
		report.Wrote(s.opts.ObservationsPath)
	}

	report.Set(CounterObservations, len(merged))
	report.Set(CounterHumanUpdated, summary.Human.Updated)
	report.Set(CounterHumanRejected, len(summary.Human.Rejected))
	report.Set(CounterLabelsUnmatched, summary.Human.Unmatched)
	report.Set(CounterAIFilled, summary.AI.Filled)
	report.Set(CounterSkippedLowConfidence, summary.AI.LowConfidence)
	report.Set(CounterSkippedHumanOverride, summary.AI.HumanOverride)
	report.Set(CounterUnmatchedAI, summary.AI.Unmatched)
	return report, nil
}
