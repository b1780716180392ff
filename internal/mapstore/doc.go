// Package mapstore persists the association between bin keys (folder paths or
// library ids) and remote album ids across sync runs.
//
// # Storage
//
// The store is a JSON document holding two independent tables, folder_layout
// and name_layout, one per layout mode. Saving rewrites only the active
// mode's table; everything else in the document is preserved. Writes are
// atomic (temp file + rename) so a crashed run never leaves a half-written
// document behind.
//
// # Usage
//
// CLI commands for inspection and management:
//
//	albumsync mapping list               # List entries for a layout mode
//	albumsync mapping remove <key>       # Remove one entry
//	albumsync mapping clear              # Empty the active mode's table
package mapstore
