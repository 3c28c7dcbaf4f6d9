// Package catalog persists terminal export records in BadgerDB so
// completed runs remain queryable across process restarts.
//
// It implements the pipeline's Recorder contract; the export stage writes
// one record per completed job.
package catalog
