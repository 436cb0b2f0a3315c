package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"camtrap/internal/logging"
	"camtrap/internal/services"
)

// Run executes handler under a stage-annotated context and logs start,
// completion and failure with the standard event types.
func Run(ctx context.Context, logger *slog.Logger, handler Handler) (Report, error) {
	if handler == nil {
		return Report{}, errors.New("stage handler unavailable")
	}
	name := handler.Name()
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()

	report, err := handler.Run(stageCtx, stageLogger)
	if report.Stage == "" {
		report.Stage = name
	}
	if err != nil {
		attrs := append([]logging.Attr{
			logging.Bool("fatal", services.IsFatal(err)),
		}, logging.ErrorAttrs(err)...)
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure", attrs...)
		return report, fmt.Errorf("%s: %w", name, err)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	}
	for _, c := range report.Counters {
		attrs = append(attrs, logging.Int(c.Name, c.Value))
	}
	stageLogger.Info("stage completed", logging.Args(attrs...)...)
	return report, nil
}
