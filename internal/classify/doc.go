// Package classify groups remote assets into logical bins, either by
// containing folder or by source library, applying skip-path exclusion rules.
//
// Partitioning is a pure function of its inputs: it issues no requests and
// mutates nothing, which keeps the reconciliation core testable without a
// server.
package classify
