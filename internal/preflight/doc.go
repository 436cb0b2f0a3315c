// Package preflight provides readiness checks for the filesystem paths and
// external tools a pipeline run depends on.
//
// These checks run in two contexts:
//   - "camtrap run" calls RunAll before the first stage. If any check fails the
//     run aborts before writing anything.
//   - "camtrap status" displays the same results alongside dependency status.
package preflight
