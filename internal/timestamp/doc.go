// Package timestamp normalizes the date, time, and timezone spellings found in
// camera-trap field sheets and EXIF headers into one canonical zoned form:
// YYYY-MM-DDTHH:MM:SS followed by Z or a ±HH:MM offset.
//
// Offsets are labels on the local wall clock, never conversions: a row recorded
// at 08:00 EST is written as 08:00-05:00. Resolution order for the label is an
// explicit per-row value, then a hint lifted from a column header, then the
// caller default, then UTC. Explicit values that match no recognised form pass
// through untouched so intentional but exotic spellings are not dropped.
//
// Canonical output is accepted as input, so Normalize is idempotent.
package timestamp
