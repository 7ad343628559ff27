// Package preflight verifies stagehand's environment before and between
// runs: the pipeline interpreter is on PATH, the output root (when present)
// is readable, the log directory is writable, and the host opener exists.
//
// A missing output root is reported as informational, not a failure: a
// fresh checkout has no outputs until the first pipeline run.
package preflight
