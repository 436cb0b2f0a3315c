// Package linker resolves each media row's deploymentID from the camera serial
// in its metadata and its capture timestamp.
//
// An Index maps serial numbers to candidate deployments and is built once per
// run. Resolution rules:
//   - a serial with exactly one candidate is assigned unconditionally, even
//     when the timestamp falls outside that deployment's window
//   - a serial with several candidates is assigned only when exactly one
//     window [start, end] contains the timestamp; a missing start or end is
//     open-ended
//   - unknown serials, absent timestamps and zero or multiple matching windows
//     leave the row unchanged and are counted
//
// Only rows whose deploymentID is empty or starts with the placeholder prefix
// are considered; manual assignments are never overwritten.
package linker
