// Package media discovers camera-trap images under the data directory and
// turns their exiftool metadata into media table rows.
//
// Extraction is per file: a file whose metadata cannot be read or whose
// capture time cannot be parsed is logged and skipped without stopping the
// batch. Every extracted row starts with the placeholder deploymentID; the
// linker resolves it later. The full tag maps are also written to
// media_metadata.json so the linker can fall back to them when the embedded
// exifData is a summary.
package media
