// Package stage defines the contract every pipeline stage implements and the
// runner that executes one with consistent logging.
package stage

import (
	"context"
	"log/slog"
)

// Handler is one batch step of the pipeline: it reads whole input tables,
// transforms them and writes whole output tables.
type Handler interface {
	Name() string
	Run(ctx context.Context, logger *slog.Logger) (Report, error)
}

// HealthChecker is implemented by stages that depend on external tools or
// inputs and can report readiness before running.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}
