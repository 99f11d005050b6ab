// Package preflight provides readiness checks for the filesystem paths and
// external tools a pipeline run depends on.
//
// The workflow runner calls RunAll before converting anything so a run with a
// missing tool or a full disk fails before hours of rasterising. The CLI
// "deps" command renders the same results as a table.
package preflight
