// Package services defines shared utilities consumed by the sync workflow and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and layout modes for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent (fatal configuration problems vs contained
//     remote failures).
//
// Use these helpers when wiring new sync logic so operational behaviour (error
// handling, observability) stays uniform across the tool.
package services
