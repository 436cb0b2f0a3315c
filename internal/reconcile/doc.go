// Package reconcile merges human annotations and AI detections into the
// observation table.
//
// classificationMethod drives a per-observation state machine:
//
//	""                 UNSET    human and AI may both write
//	"machine learning" MACHINE  AI may refresh its own fields; a human edit wins
//	"human"            HUMAN    terminal; AI never writes again
//
// ApplyHuman and ApplyAI are pure: they take an observation snapshot and
// return a new one. Writing the merged table over observations.csv is a
// separate Promote step.
package reconcile
