// Package flat provides an exact, in-memory nearest-neighbour index.
//
// Every query is compared against every stored vector using squared
// Euclidean distance, so results are exact and ordered ascending (closest
// first). Ties are broken by insertion order.
//
// # Persistence
//
// An index is saved as two artifacts in a directory:
//
//   - <name>.index: binary header followed by little-endian float32 vectors
//   - <name>.docs: SQLite database holding the chunk payloads
//
// Both are written to temporary files and renamed into place.
package flat
