// Package studyforge turns user-submitted documents and reference links
// into structured study notes.
//
// Each submission becomes a job that runs through a fixed pipeline
// (ingest → transcribe → chunk → summarise → export) on its own worker,
// with live per-stage progress tracked in an in-memory registry and
// terminal metadata persisted to a BadgerDB catalog. Summarisation calls an
// Ollama-compatible generation endpoint and degrades deterministically when
// the endpoint is unavailable.
package studyforge
