// Package logging assembles structured slog loggers and formatting helpers used
// across the camtrap pipeline stages.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with the run identifier and stage name. Warnings go through
// WarnWithContext so every skipped row or file carries an event type, a hint
// and its impact. The package also provides a no-op logger for tests.
package logging
