// Package sqlite provides a unified SQLite-backed implementation of the
// metadata store interfaces: sources, cursors, record collections, content
// blocks, the change journal and scheduler state.
//
// All data lives in a single database file with WAL mode enabled for
// concurrent access. Schema changes are applied through embedded
// migrations on startup.
package sqlite
