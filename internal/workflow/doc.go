// Package workflow drives complete sync passes. A Runner loads the album
// mapping, fetches the photo server inventory, partitions assets into album
// bins, reconciles every bin, then persists the mapping table and a run
// history record.
package workflow
