// Package runner invokes the external conversation-generation pipeline.
//
// The pipeline is an opaque collaborator: stagehand hands it a turn count,
// model and backend selections, and feature flags, then blocks until the
// process exits. Configuration that the pipeline reads from its environment
// (mock speech recognition, hosted-LLM credential) is built explicitly from
// Options at spawn time rather than inherited ambiently, so a run is fully
// described by its Options value.
package runner
