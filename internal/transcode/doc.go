// Package transcode converts chart source PDFs into the PNG layout consumed
// by the packager.
//
// Every plate is first probed for a projected coordinate system. Projected
// sources are reprojected, calibrated and converted untrimmed with the
// calibration embedded as the image comment. Everything else is classified by
// output name prefix: airport diagrams carry an optional per-airport comment,
// minimums documents are split into the pages that mention the airport, and
// all other charts convert whole.
//
// Output paths are <plates_dir>/<airport>/<CODE>-<AREA>-<NAME>[-<n>].png and
// <supplements_dir>/<airport>/CS-<REGION>_<n>.png.
package transcode
