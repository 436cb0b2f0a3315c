// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and run identifiers for logging.
//   - Structured error markers plus the Wrap helper that separate fatal stage
//     preconditions (missing inputs) from row-level problems that are counted
//     and skipped.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
