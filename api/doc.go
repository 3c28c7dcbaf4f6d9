// Package api serves the read-only job query surface: newest-first job
// listings, single job records with ISO-8601 timestamps and stage status
// strings, and a websocket stream of live per-stage progress.
package api
