package classifier

import (
	"context"
	"log/slog"
	"time"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/deps"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/services"
	"camtrap/internal/stage"
)

// Report counter names.
const (
	CounterMedia      = "media"
	CounterDetections = "detections"
	CounterMissing    = "missing"
	CounterFailed     = "failed"
)

// StageOptions tune one detect run.
type StageOptions struct {
	// MediaPath overrides the package media table.
	MediaPath string
	Limit     int
}

// Stage classifies media and writes detections.csv.
type Stage struct {
	cfg        *config.Config
	layout     datapackage.Layout
	opts       StageOptions
	classifier Classifier
}

// NewStage constructs the detect stage using the configured command.
func NewStage(cfg *config.Config, opts StageOptions) *Stage {
	return NewStageWithDependencies(cfg, opts, nil)
}

// NewStageWithDependencies allows injecting the classifier (used in tests).
func NewStageWithDependencies(cfg *config.Config, opts StageOptions, cls Classifier) *Stage {
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	if opts.MediaPath == "" {
		opts.MediaPath = layout.Media()
	}
	return &Stage{cfg: cfg, layout: layout, opts: opts, classifier: cls}
}

func (s *Stage) Name() string { return "detect" }

// HealthCheck reports whether the media table exists and the classifier
// command resolves.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if !fileutil.Exists(s.opts.MediaPath) {
		return stage.Unhealthy(s.Name(), "missing "+s.opts.MediaPath)
	}
	if s.classifier == nil {
		status := deps.CheckBinaries([]deps.Requirement{{Name: "classifier", Command: s.cfg.ClassifierBinary()}})[0]
		if !status.Available {
			return stage.Unhealthy(s.Name(), status.Detail)
		}
	}
	return stage.Healthy(s.Name())
}

// Run classifies every media row with an on-disk file.
func (s *Stage) Run(ctx context.Context, logger *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name(), CounterMedia, CounterDetections, CounterMissing, CounterFailed)
	logger = logging.NewComponentLogger(logger, "detect")

	cls := s.classifier
	if cls == nil {
		command := s.cfg.ClassifierBinary()
		if command == "" {
			return report, services.Wrap(services.ErrConfiguration, "detect", "resolve classifier",
				"set classifier.command in the config file", nil)
		}
		cls = NewCommandClassifier(command, CommandOptions{
			Args:         s.cfg.Classifier.Args,
			SpeciesFile:  s.cfg.Classifier.SpeciesFile,
			Autocontrast: s.cfg.Classifier.Autocontrast,
			Timeout:      time.Duration(s.cfg.Classifier.TimeoutSeconds) * time.Second,
		})
	}

	_, rows, err := datapackage.ReadMedia(s.opts.MediaPath)
	if err != nil {
		return report, err
	}
	report.Set(CounterMedia, len(rows))

	result, err := Detect(ctx, cls, rows, DetectOptions{
		ProjectDir:            s.cfg.Paths.ProjectDir,
		ClassifiedBy:          s.cfg.Classifier.ClassifiedBy,
		MinSpeciesProbability: s.cfg.Classifier.MinSpeciesProbability,
		Limit:                 s.opts.Limit,
	}, logger)
	if err != nil {
		return report, err
	}
	report.Set(CounterDetections, len(result.Detections))
	report.Set(CounterMissing, result.Missing)
	report.Set(CounterFailed, result.Failed)
	if result.Missing > 0 {
		logging.WarnWithContext(logger, "media files not found", "detect_missing_files",
			logging.Int("count", result.Missing),
			logging.String(logging.FieldErrorHint, "filePath values resolve relative to the project directory"),
			logging.String(logging.FieldImpact, "missing media have no detection"),
		)
	}

	if err := datapackage.WriteDetections(s.layout.Detections(), result.Detections); err != nil {
		return report, err
	}
	report.Wrote(s.layout.Detections())
	return report, nil
}
