// Package ledger records run history in SQLite.
//
// Each invocation of the pipeline is a run keyed by a UUID. A run records the
// cycle it targeted, which stages it executed, every output it produced, and
// the digest of every bundle it wrote. The history command and the publish
// step read from here.
package ledger
