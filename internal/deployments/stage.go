package deployments

import (
	"context"
	"log/slog"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/stage"
)

// Report counter names.
const (
	CounterRows     = "rows"
	CounterWritten  = "written"
	CounterRejected = "rejected"
)

// Stage builds deployments.csv from raw_deployment.csv.
type Stage struct {
	cfg    *config.Config
	layout datapackage.Layout
}

// NewStage constructs the deployments stage for cfg.
func NewStage(cfg *config.Config) *Stage {
	return &Stage{cfg: cfg, layout: datapackage.NewLayout(cfg.Paths.PackageDir)}
}

func (s *Stage) Name() string { return "deployments" }

// HealthCheck reports whether the raw deployment sheet is present.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.Exists(s.layout.RawDeployments()) {
		return stage.Unhealthy(s.Name(), "missing "+s.layout.RawDeployments())
	}
	return stage.Healthy(s.Name())
}

// Run reads the raw sheet, builds the deployments and writes them. A missing
// sheet is fatal; rejected rows are counted.
func (s *Stage) Run(_ context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(), CounterRows, CounterWritten, CounterRejected)
	logger = logging.NewComponentLogger(logger, "deployments")

	table, err := datapackage.ReadTable(s.layout.RawDeployments())
	if err != nil {
		return report, err
	}
	result, err := Build(table, Options{DefaultTimezone: s.cfg.Deployments.DefaultTimezone}, logger)
	if err != nil {
		return report, err
	}
	if result.EndTimeHeader == "" {
		logging.WarnWithContext(logger, "no EndTime column in deployment sheet", "end_time_header_missing",
			logging.String(logging.FieldErrorHint, "add an \"EndTime <TZ>\" column to record end times"),
			logging.String(logging.FieldImpact, "deployment ends default to 23:59:59"),
		)
	}

	if err := datapackage.WriteDeployments(s.layout.Deployments(), result.Deployments); err != nil {
		return report, err
	}
	report.Set(CounterRows, result.Rows)
	report.Set(CounterWritten, len(result.Deployments))
	report.Set(CounterRejected, len(result.Rejected))
	report.Wrote(s.layout.Deployments())
	return report, nil
}
