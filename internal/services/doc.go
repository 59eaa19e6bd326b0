// Package services defines shared utilities consumed by the packaging stages
// and their external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus typed errors for the four failure classes
//     the pipeline reports: rejected input, missing tools, failed stages, and
//     partial publication.
//   - The Wrap helper for tagging ad hoc failures with a marker.
//
// Use these helpers when wiring new stage logic so diagnostics stay uniform
// across the pipeline.
package services
