package flat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("flat: index is closed")

// Index is an exact squared-L2 vector index.
type Index struct {
	mu        sync.RWMutex
	name      string
	openStore driven.PayloadStoreOpener
	dimension int
	entries   []domain.IndexedEntry
	closed    bool
}

// New creates an empty, uninitialised index. name is the artifact base name
// and openStore opens the payload database used by Save and Load.
func New(name string, openStore driven.PayloadStoreOpener) *Index {
	if name == "" {
		name = domain.DefaultIndexName
	}
	return &Index{
		name:      name,
		openStore: openStore,
	}
}

// Factory returns a driven.VectorIndexFactory producing independent indexes.
func Factory(name string, openStore driven.PayloadStoreOpener) driven.VectorIndexFactory {
	return func() driven.VectorIndex {
		return New(name, openStore)
	}
}

// Name returns the artifact base name.
func (idx *Index) Name() string {
	return idx.name
}

// Initialize empties the index and binds it to dimension.
func (idx *Index) Initialize(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrClosed
	}
	idx.dimension = dimension
	idx.entries = nil
	return nil
}

// Add appends entries. The batch is rejected as a whole on any dimension mismatch.
func (idx *Index) Add(_ context.Context, entries []domain.EmbeddedChunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrClosed
	}
	if idx.dimension == 0 {
		return fmt.Errorf("%w: index not initialised", domain.ErrInvalidInput)
	}

	for i, e := range entries {
		if len(e.Vector) != idx.dimension {
			return fmt.Errorf("%w: entry %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(e.Vector), idx.dimension)
		}
	}

	for _, e := range entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		idx.entries = append(idx.entries, domain.IndexedEntry{
			Vector:         vec,
			Chunk:          e.Chunk,
			InsertionOrder: len(idx.entries),
		})
	}
	return nil
}

// Search returns up to k chunks ordered by ascending squared distance.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, ErrClosed
	}
	if k <= 0 || len(idx.entries) == 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}

	type scored struct {
		order int
		dist  float64
	}
	all := make([]scored, len(idx.entries))
	for i := range idx.entries {
		all[i] = scored{order: idx.entries[i].InsertionOrder, dist: squaredL2(query, idx.entries[i].Vector)}
	}
	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	if k > len(all) {
		k = len(all)
	}
	results := make([]domain.RetrievalResult, k)
	for i := 0; i < k; i++ {
		results[i] = domain.RetrievalResult{
			Chunk: idx.entries[all[i].order].Chunk,
			Score: all[i].dist,
		}
	}
	return results, nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimension returns the bound dimension, zero before Initialize.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.entries = nil
	return nil
}

// squaredL2 accumulates in float64 so large dimensions keep precision.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
