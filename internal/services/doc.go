// Package services defines shared utilities consumed by the pipeline stages
// and the external tool wrappers under this directory.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, cycles, airports, and stage names
//     for structured logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     as tool failures, missing inputs, or configuration problems.
//   - The Executor abstraction that every tool wrapper uses to launch child
//     processes, so tests can substitute canned output.
//
// Use these helpers when wiring new tool boundaries so failure handling and
// observability stay uniform across the pipeline.
package services
