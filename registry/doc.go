// Package registry provides the in-memory job and stage registry.
//
// The registry owns all job records exclusively: callers register a job,
// the pipeline runner drives stage transitions through it, and query
// surfaces read copies back out. Once a job reaches a terminal status
// (completed or failed) the registry rejects further transitions.
package registry
