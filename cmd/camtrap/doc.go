// Package main hosts the camtrap CLI entrypoint and command graph.
//
// Each pipeline stage is exposed as its own subcommand so a single table can
// be rebuilt after a hand edit, and `run` chains them for a full package
// build. Configuration is resolved once per invocation; the logger is built
// lazily from it so `config init` works before any config exists.
//
// Keep this package thin: behaviour lives in the internal packages and the
// commands here only translate flags into stage options and print summaries.
package main
