package driven

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// VectorIndex stores embedded chunks and answers nearest-neighbour queries.
// An index is bound to one dimension and is append-only.
type VectorIndex interface {
	// Initialize empties the index and binds it to dimension.
	Initialize(dimension int) error

	// Add appends entries. If any vector has the wrong dimension
	// nothing is added and ErrDimensionMismatch is returned.
	Add(ctx context.Context, entries []domain.EmbeddedChunk) error

	// Search returns up to k chunks ordered by ascending distance.
	// k <= 0 or an empty index yields an empty result.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error)

	// Len returns the number of entries.
	Len() int

	// Dimension returns the bound dimension, zero before Initialize.
	Dimension() int

	// Save writes the index artifacts into dir.
	Save(ctx context.Context, dir string) error

	// Load replaces the index with the artifacts in dir.
	// Returns false without error when either artifact is missing.
	Load(ctx context.Context, dir string) (bool, error)

	// Close releases resources.
	Close() error
}

// VectorIndexFactory creates empty indexes. Each build gets its own instance.
type VectorIndexFactory func() VectorIndex
