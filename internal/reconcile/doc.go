// Package reconcile applies computed asset bins to the remote album catalog.
// Each bin is matched against the persisted mapping and the server's album
// list, then created, topped up, or skipped; with clean updates enabled,
// members no longer present in the bin are removed first. Failures are
// contained per bin so one bad album never aborts the pass.
package reconcile
