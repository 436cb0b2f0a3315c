// Package exiftool provides a typed wrapper around exiftool JSON output.
//
// Key types:
//   - Metadata: one file's tag map with named accessors. Every accessor reports
//     whether the tag was present, so callers branch on absence explicitly
//     instead of comparing against zero values.
//
// Primary entry points:
//   - Inspect: executes exiftool -json against a file and returns Metadata
//   - Decode: parses an embedded exifData JSON object (as stored in media.csv)
package exiftool
