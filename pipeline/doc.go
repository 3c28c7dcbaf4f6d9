// Package pipeline drives jobs through the fixed stage sequence
// ingest → transcribe → chunk → summarise → export.
//
// Execution is strictly sequential with fail-fast semantics: the first
// stage failure is recorded through the registry and no later stage runs.
// The runner holds no cross-job state; each run works on a private Context
// discarded when the run ends.
package pipeline
