// Package workflow runs the chart pipeline for one publication cycle.
//
// A run executes a subset of four stages in fixed order: plates, which
// converts every document in the plates catalog; supplements, which converts
// the chart supplement pages; package, which rebuilds every region and state
// bundle from the files on disk; and publish, which uploads the bundles built
// by the same run. Conversion fans out per airport through the dispatch
// package and aborts the run on the first tool failure.
//
// Every run is recorded in the ledger under a fresh UUID, and metrics are
// flushed to the configured textfile when the run ends regardless of outcome.
package workflow
