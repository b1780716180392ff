// Package main hosts the albumsync CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the sync pass itself plus the
// surrounding chores: listing server albums and libraries, inspecting and
// pruning the mapping file, browsing run history, and configuration
// scaffolding. It centralizes configuration resolution and logger setup so
// subcommands stay small.
//
// Keep this package lean: new behavior belongs in the internal packages
// first, surfaced here through dedicated commands or flags.
package main
