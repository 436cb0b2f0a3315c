package linker

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
	CounterTotal           = "total"
	CounterLinked          = "linked"
	CounterMissingSerial   = "missing_serial"
	CounterAmbiguous       = "ambiguous"
	CounterAlreadyAssigned = "already_assigned"
)

// Stage links media.csv against deployments.csv and writes media_linked.csv.
type Stage struct {
	cfg    *config.Config
	layout datapackage.Layout
}

// NewStage constructs the link stage for cfg.
func NewStage(cfg *config.Config) *Stage {
	return &Stage{cfg: cfg, layout: datapackage.NewLayout(cfg.Paths.PackageDir)}
}

func (s *Stage) Name() string { return "link" }

// HealthCheck reports whether both input tables exist.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	for _, path := range []string{s.layout.Deployments(), s.layout.Media()} {
		if !fileutil.Exists(path) {
			return stage.Unhealthy(s.Name(), "missing "+path)
		}
	}
	return stage.Healthy(s.Name())
}

// Run links every media row. Missing deployments or media tables are fatal;
// the metadata sidecar is optional.
func (s *Stage) Run(_ context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(), CounterTotal, CounterLinked, CounterMissingSerial, CounterAmbiguous, CounterAlreadyAssigned)
	logger = logging.NewComponentLogger(logger, "linker")

	deployments, err := datapackage.ReadDeployments(s.layout.Deployments())
	if err != nil {
		return report, err
	}
	header, rows, err := datapackage.ReadMedia(s.layout.Media())
	if err != nil {
		return report, err
	}
	sidecar, err := datapackage.ReadSidecar(s.layout.MediaMetadata())
	if err != nil {
		logging.WarnWithContext(logger, "metadata sidecar unreadable", "sidecar_unreadable",
			append([]logging.Attr{
				logging.String(logging.FieldFile, s.layout.MediaMetadata()),
				logging.String(logging.FieldErrorHint, "re-run camtrap extract to regenerate media_metadata.json"),
				logging.String(logging.FieldImpact, "serials only read from exifData"),
			}, logging.ErrorAttrs(err)...)...,
		)
		sidecar = nil
	}

	index := NewIndex(deployments, logger)
	logger.Info("deployment index built",
		logging.Int("deployments", len(deployments)),
		logging.Int("serials", index.Serials()),
		logging.Int("sidecar_entries", len(sidecar)),
	)

	linked, counts := Link(rows, index, sidecar, Options{
		PlaceholderPrefix: s.cfg.Linking.PlaceholderPrefix,
		ProjectDir:        s.cfg.Paths.ProjectDir,
	}, logger)

	if err := datapackage.WriteMedia(s.layout.MediaLinked(), header, linked); err != nil {
		return report, err
	}
	report.Wrote(s.layout.MediaLinked())
	report.Set(CounterTotal, counts.Total)
	report.Set(CounterLinked, counts.Linked)
	report.Set(CounterMissingSerial, counts.MissingSerial)
	report.Set(CounterAmbiguous, counts.Ambiguous)
	report.Set(CounterAlreadyAssigned, counts.AlreadyAssigned)
	return report, nil
}
