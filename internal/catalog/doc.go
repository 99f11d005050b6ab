// Package catalog parses the publisher's XML metadata into airports and the
// chart documents that belong to them.
//
// Two documents are supported: the terminal procedures metafile
// (state → city → airport → record) and the chart supplement index
// (airport → pages → pdf). Every string field is upper-cased on read because
// the publisher mixes case between revisions and output file matching is
// case-sensitive. Airports without an identifier and records without a
// source file are dropped without error; the feed routinely carries such
// placeholders.
package catalog
