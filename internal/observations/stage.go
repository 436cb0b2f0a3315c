package observations

import (
	"context"
	"log/slog"
	"strings"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/stage"
)

// Report counter names.
const (
	CounterMedia        = "media"
	CounterObservations = "observations"
	CounterSkipped      = "skipped"
)

// Options selects the input table and whether the label template is written.
type Options struct {
	// MediaPath overrides the media table read; empty means media.csv.
	MediaPath     string
	LabelTemplate bool
}

// Stage writes observations.csv, and optionally observations_to_label.csv,
// from the linked media table.
type Stage struct {
	layout datapackage.Layout
	opts   Options
	newID  datapackage.IDGenerator
}

// NewStage constructs the observations stage.
func NewStage(cfg *config.Config, opts Options) *Stage {
	return NewStageWithDependencies(cfg, opts, nil)
}

// NewStageWithDependencies allows injecting the ID generator (used in tests).
func NewStageWithDependencies(cfg *config.Config, opts Options, newID datapackage.IDGenerator) *Stage {
	return &Stage{layout: datapackage.NewLayout(cfg.Paths.PackageDir), opts: opts, newID: newID}
}

func (s *Stage) Name() string { return "observations" }

func (s *Stage) mediaPath() string {
	if path := strings.TrimSpace(s.opts.MediaPath); path != "" {
		return path
	}
	return s.layout.Media()
}

// HealthCheck reports whether the media table exists.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.Exists(s.mediaPath()) {
		return stage.Unhealthy(s.Name(), "missing "+s.mediaPath())
	}
	return stage.Healthy(s.Name())
}

// Run generates the observation template. A missing media table is fatal.
func (s *Stage) Run(_ context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(), CounterMedia, CounterObservations, CounterSkipped)
	logger = logging.NewComponentLogger(logger, "observations")

	_, media, err := datapackage.ReadMedia(s.mediaPath())
	if err != nil {
		return report, err
	}
	result := Generate(media, s.newID)
	if result.Skipped > 0 {
		logging.WarnWithContext(logger, "media rows without observation", "observation_rows_skipped",
			logging.Int("skipped", result.Skipped),
			logging.String(logging.FieldErrorHint, "rows need mediaID, deploymentID and timestamp"),
			logging.String(logging.FieldImpact, "no observation generated for those rows"),
		)
	}

	if err := datapackage.WriteObservations(s.layout.Observations(), nil, result.Observations); err != nil {
		return report, err
	}
	report.Wrote(s.layout.Observations())

	if s.opts.LabelTemplate {
		if len(result.Labels) == 0 {
			logging.WarnWithContext(logger, "no rows for label template", "label_template_empty",
				logging.String(logging.FieldErrorHint, "link media before generating observations"),
				logging.String(logging.FieldImpact, "observations_to_label.csv not written"),
			)
		} else {
			if err := datapackage.WriteLabels(s.layout.LabelTemplate(), result.Labels); err != nil {
				return report, err
			}
			report.Wrote(s.layout.LabelTemplate())
		}
	}

	report.Set(CounterMedia, len(media))
	report.Set(CounterObservations, len(result.Observations))
	report.Set(CounterSkipped, result.Skipped)
	return report, nil
}
