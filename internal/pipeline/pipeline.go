package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"camtrap/internal/classifier"
	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/deployments"
	"camtrap/internal/linker"
	"camtrap/internal/logging"
	"camtrap/internal/media"
	"camtrap/internal/observations"
	"camtrap/internal/preflight"
	"camtrap/internal/reconcile"
	"camtrap/internal/stage"
)

// ErrLocked reports that another run holds the package directory lock.
var ErrLocked = errors.New("package directory locked by another run")

// Options select the optional tail of the chain.
type Options struct {
	Detect bool
	Merge  bool
	// Threshold overrides merge.ai_threshold when non-nil.
	Threshold *float64
	// InPlace promotes the merged observations over observations.csv.
	InPlace bool
}

// Dependencies are injectable collaborators. Nil fields use the real
// implementations.
type Dependencies struct {
	Inspector  media.Inspector
	NewID      datapackage.IDGenerator
	Classifier classifier.Classifier
	Clock      reconcile.Clock
}

// Runner executes the stage chain for one configuration.
type Runner struct {
	cfg    *config.Config
	opts   Options
	deps   Dependencies
	layout datapackage.Layout
}

// New constructs a runner using the real collaborators.
func New(cfg *config.Config, opts Options) *Runner {
	return NewWithDependencies(cfg, opts, Dependencies{})
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, opts Options, deps Dependencies) *Runner {
	newID := deps.NewID
	if newID == nil {
		newID = datapackage.NewID
	}
	// Extract and observations share one generator so IDs stay unique
	// across both tables.
	deps.NewID = datapackage.Unique(newID)
	return &Runner{cfg: cfg, opts: opts, deps: deps, layout: datapackage.NewLayout(cfg.Paths.PackageDir)}
}

// Stages returns the handlers in execution order.
func (r *Runner) Stages() []stage.Handler {
	handlers := []stage.Handler{
		media.NewStageWithDependencies(r.cfg, r.deps.Inspector, r.deps.NewID),
		deployments.NewStage(r.cfg),
		linker.NewStage(r.cfg),
		newPromoteStage(r.layout),
		observations.NewStageWithDependencies(r.cfg, observations.Options{LabelTemplate: true}, r.deps.NewID),
	}
	if r.opts.Detect {
		handlers = append(handlers, classifier.NewStageWithDependencies(r.cfg, classifier.StageOptions{}, r.deps.Classifier))
	}
	if r.opts.Merge {
		handlers = append(handlers, reconcile.NewStageWithDependencies(r.cfg, reconcile.StageOptions{
			Threshold: r.opts.Threshold,
			InPlace:   r.opts.InPlace,
		}, r.deps.Clock))
	}
	return handlers
}

// Run validates inputs, takes the package lock and executes every stage in
// order. It stops at the first failing stage and returns the reports of the
// stages that ran, including the failed one.
func (r *Runner) Run(ctx context.Context, logger *slog.Logger) ([]stage.Report, error) {
	logger = logging.NewComponentLogger(logger, "pipeline")

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	if err := r.checkInputs(ctx, logger); err != nil {
		return nil, err
	}

	lock := flock.New(r.layout.LockFile())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, r.layout.LockFile())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release package lock",
				logging.String("lock", r.layout.LockFile()),
				logging.Error(err),
			)
		}
	}()

	var reports []stage.Report
	for _, handler := range r.Stages() {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := stage.Run(ctx, logger, handler)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	logger.Info("pipeline completed",
		logging.Int("stages", len(reports)),
		logging.String("package_dir", r.layout.Dir),
		logging.String(logging.FieldEventType, "pipeline_complete"),
	)
	return reports, nil
}

func (r *Runner) checkInputs(ctx context.Context, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, r.cfg)
	kept := results[:0]
	for _, res := range results {
		if res.Name == "exiftool" && r.deps.Inspector != nil {
			continue
		}
		if res.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", res.Name),
				logging.String("detail", res.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
		} else {
			logger.Error("preflight check failed",
				logging.String("check", res.Name),
				logging.String("detail", res.Detail),
				logging.String(logging.FieldEventType, "preflight_failed"),
				logging.String(logging.FieldErrorHint, "fix the reported issue and rerun"),
			)
		}
		kept = append(kept, res)
	}
	return preflight.Err(kept)
}
