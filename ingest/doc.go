// Package ingest adapts user-submitted source files into text.
//
// The pipeline only depends on the Extract(path) contract; concrete
// extractors are selected per file extension and can be replaced or
// extended by the caller.
package ingest
