package media

import (
	"context"
	"log/slog"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/deps"
	"camtrap/internal/exiftool"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/stage"
)

// Report counter names.
const (
	CounterFiles       = "files"
	CounterExtracted   = "extracted"
	CounterFailed      = "failed"
	CounterNoTimestamp = "no_timestamp"
)

// Stage writes media.csv and media_metadata.json from the images under the
// data directory.
type Stage struct {
	cfg       *config.Config
	layout    datapackage.Layout
	inspector Inspector
	newID     datapackage.IDGenerator
}

// NewStage constructs the extract stage. exiftool is resolved when the stage
// runs.
func NewStage(cfg *config.Config) *Stage {
	return NewStageWithDependencies(cfg, nil, nil)
}

// NewStageWithDependencies allows injecting the metadata reader and ID
// generator (used in tests).
func NewStageWithDependencies(cfg *config.Config, inspector Inspector, newID datapackage.IDGenerator) *Stage {
	return &Stage{
		cfg:       cfg,
		layout:    datapackage.NewLayout(cfg.Paths.PackageDir),
		inspector: inspector,
		newID:     newID,
	}
}

func (s *Stage) Name() string { return "extract" }

// HealthCheck reports whether the data directory exists and exiftool resolves.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.DirExists(s.cfg.Paths.DataDir) {
		return stage.Unhealthy(s.Name(), "missing data directory "+s.cfg.Paths.DataDir)
	}
	if s.inspector == nil {
		if status := deps.CheckExiftool(s.cfg.ExiftoolBinary(), s.cfg.Paths.ProjectDir); !status.Available {
			return stage.Unhealthy(s.Name(), status.Detail)
		}
	}
	return stage.Healthy(s.Name())
}

// Run discovers images, extracts their metadata and writes the media table
// and metadata sidecar. An empty data directory still writes both files.
func (s *Stage) Run(ctx context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(), CounterFiles, CounterExtracted, CounterFailed, CounterNoTimestamp)
	logger = logging.NewComponentLogger(logger, "extract")

	files, err := Discover(s.cfg.Paths.DataDir, s.cfg.Exiftool.Recursive)
	if err != nil {
		return report, err
	}
	report.Set(CounterFiles, len(files))
	if len(files) == 0 {
		logging.WarnWithContext(logger, "no media found", "media_none_found",
			logging.String("data_dir", s.cfg.Paths.DataDir),
			logging.String(logging.FieldErrorHint, "place .jpg/.jpeg/.png files under the data directory or enable exiftool.recursive"),
			logging.String(logging.FieldImpact, "empty media table written"),
		)
	}

	inspector := s.inspector
	if inspector == nil && len(files) > 0 {
		binary, err := deps.ResolveExiftool(s.cfg.ExiftoolBinary(), s.cfg.Paths.ProjectDir)
		if err != nil {
			return report, err
		}
		logger.Debug("using exiftool", logging.String("binary", binary))
		inspector = exiftool.NewClient(binary)
	}

	extractor := NewExtractor(inspector, s.newID, Options{
		ProjectDir:            s.cfg.Paths.ProjectDir,
		PlaceholderDeployment: s.cfg.Exiftool.PlaceholderDeployment,
		FilePublic:            s.cfg.Exiftool.FilePublic,
		EmbedFullExif:         s.cfg.Exiftool.EmbedFullExif,
	}, logger)
	result, err := extractor.Extract(ctx, files)
	if err != nil {
		return report, err
	}

	if err := datapackage.WriteMedia(s.layout.Media(), nil, result.Media); err != nil {
		return report, err
	}
	report.Wrote(s.layout.Media())
	if err := datapackage.WriteSidecar(s.layout.MediaMetadata(), result.Sidecar); err != nil {
		return report, err
	}
	report.Wrote(s.layout.MediaMetadata())

	report.Set(CounterExtracted, len(result.Media))
	report.Set(CounterFailed, len(result.Failed))
	report.Set(CounterNoTimestamp, result.NoTimestamp)
	return report, nil
}
