// Package sqlite provides the SQLite-backed chunk payload store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file holds the payloads
// of one vector index (the "<name>.docs" artifact):
//
//   - chunks: chunk text, offsets and metadata keyed by index position
//   - index_meta: index-level attributes (dimension, embedding model, build time)
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. SQLite serialises writers; the store keeps
// the default rollback journal so the artifact stays a single file.
package sqlite
