// Package airac derives 28-day aeronautical publication cycle identifiers.
//
// Cycles are named YYcc: the two-digit year of the cycle's start date followed
// by its 1-based sequence within that year. The calculator walks forward from
// a fixed 2020 anchor in 28-day steps, so every identifier it produces sits on
// the same timeline. Each step also flips a parity flag that marks the cycles
// on which the 56-day chart products are republished.
//
// Key entry points:
//   - CurrentAndEffective: the cycle in effect at a time plus the most recent
//     56-day cycle, both derived from one shared walk
//   - At: the full Cycle record (start, sequence, parity) for a time
//   - FirstCycleDay / VersionStart: lookups against the per-year anchor table
//
// Everything in this package is pure. Callers that need "now" use Now, which
// reads a swappable clockwork clock so tests can pin the date.
package airac
