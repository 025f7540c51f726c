package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// QueryEmbedder embeds a query into the index's vector space.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds the chunks closest to a query.
type Retriever struct {
	embedder QueryEmbedder
	index    driven.VectorIndex
}

// NewRetriever creates a retriever bound to one index.
func NewRetriever(embedder QueryEmbedder, index driven.VectorIndex) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns up to k chunks ordered by relevance. A blank query or an
// empty embedding yields no results; embedding failures are returned as-is
// so callers can tell them apart from "nothing found".
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, k=%d", query, k)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		logger.Warn("Query embedding is empty, returning no results")
		return []domain.RetrievalResult{}, nil
	}
	logger.Debug("Query embedded: %d dimensions", len(vector))

	results, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	for i, res := range results {
		logger.Debug("  %d. chunk %d (page %d) distance=%.4f", i+1, res.Chunk.ChunkIndex, res.Chunk.PageNumber, res.Score)
	}
	return results, nil
}
