// Package runlog persists a history of sync runs in SQLite.
//
// Each finished pass is stored as one row carrying its identifiers, layout
// mode, per-action counts, and final status. The store backs the "albumsync
// history" command and degrades to a no-op when history is disabled in
// configuration.
package runlog
