// Package config loads, normalizes, and validates camtrap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAMTRAP_DATA_DIR. The Config type centralizes every knob the pipeline
// stages and CLI need, so the project, data and datapackage directories and
// the external tool settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
