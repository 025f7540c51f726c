package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// DefaultEmbedBatchSize is the number of texts sent per provider call.
const DefaultEmbedBatchSize = domain.DefaultEmbeddingBatch

// Embedder turns text into vectors through one EmbeddingService and refuses
// to pass on output that cannot be meaningfully compared.
type Embedder struct {
	service   driven.EmbeddingService
	batchSize int

	// mu guards dimension, which is learned from the first response when
	// not known up front. Indexing and querying share the Embedder.
	mu        sync.Mutex
	dimension int
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithBatchSize sets how many texts are embedded per provider call.
func WithBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithDimension pins the expected vector size. Without it the size is taken
// from the service, or learned from the first response.
func WithDimension(d int) EmbedderOption {
	return func(e *Embedder) {
		if d > 0 {
			e.dimension = d
		}
	}
}

// NewEmbedder creates an Embedder over service.
func NewEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		service:   service,
		batchSize: DefaultEmbedBatchSize,
		dimension: service.Dimensions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimension returns the expected vector size, zero until known.
func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

// ModelName returns the underlying model name.
func (e *Embedder) ModelName() string {
	return e.service.ModelName()
}

// EmbedDocuments embeds texts in batches. Output i corresponds to input i.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	logger.Debug("Embedding %d texts with %s (batch size %d)", len(texts), e.service.ModelName(), e.batchSize)

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.service.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, asProviderError(e.service.ModelName(), err))
		}
		if len(batch) != end-start {
			return nil, domain.NewInvalidResponseError(e.service.ModelName(), "embed",
				fmt.Errorf("expected %d vectors, got %d", end-start, len(batch)))
		}
		for i, v := range batch {
			if err := e.validate(v); err != nil {
				return nil, fmt.Errorf("text %d: %w", start+i, err)
			}
			vectors = append(vectors, v)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query with the same service as the documents.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := e.service.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", asProviderError(e.service.ModelName(), err))
	}
	if len(v) == 0 {
		return v, nil
	}
	if err := e.validate(v); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return v, nil
}

// learnDimension returns the expected size, adopting n if none is set yet.
func (e *Embedder) learnDimension(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimension == 0 {
		e.dimension = n
	}
	return e.dimension
}

// validate rejects vectors that would make distance comparisons meaningless.
func (e *Embedder) validate(v []float32) error {
	name := e.service.ModelName()
	if len(v) == 0 {
		return domain.NewInvalidResponseError(name, "embed", errors.New("empty vector"))
	}
	if want := e.learnDimension(len(v)); len(v) != want {
		return domain.NewInvalidResponseError(name, "embed",
			fmt.Errorf("%w: got %d dimensions, expected %d", domain.ErrDimensionMismatch, len(v), want))
	}

	allZero, constant := true, true
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.NewInvalidResponseError(name, "embed", fmt.Errorf("non-finite value at %d", i))
		}
		if x != 0 {
			allZero = false
		}
		if x != v[0] {
			constant = false
		}
	}
	if allZero {
		return domain.NewInvalidResponseError(name, "embed", errors.New("all-zero vector"))
	}
	if constant && len(v) > 1 {
		return domain.NewInvalidResponseError(name, "embed", errors.New("constant vector"))
	}
	return nil
}

// asProviderError keeps typed provider errors and wraps anything else as transient.
func asProviderError(provider string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) || errors.Is(err, domain.ErrConfiguration) || errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewProviderError(provider, "embed", 0, err)
}
