// Package pipeline chains the stages of a full package build: extract,
// deployments, link, promote, observations and, when requested, detect and
// merge. A run validates its inputs up front and holds an advisory lock on the
// package directory so two builds never interleave writes.
package pipeline
