// Command platebundle converts a staged chart publication into distribution
// bundles.
//
// The work directory must already hold the publisher's plates metafile, the
// chart supplement indexes and every referenced PDF. Subcommands run single
// pipeline stages (plates, supplements, package) or the whole pipeline (run),
// print the current cycle, check external tools, and list run history.
package main
