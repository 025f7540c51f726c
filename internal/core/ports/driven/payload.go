package driven

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// PayloadStore persists chunk payloads keyed by their position in the index.
type PayloadStore interface {
	// ReplaceAll stores chunks in order, discarding previous content.
	ReplaceAll(ctx context.Context, chunks []domain.TextChunk) error

	// LoadAll returns every chunk ordered by position.
	LoadAll(ctx context.Context) ([]domain.TextChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// SetMeta records index-level attributes such as dimension or model.
	SetMeta(ctx context.Context, key, value string) error

	// Meta returns an attribute, or "" when unset.
	Meta(ctx context.Context, key string) (string, error)

	// Close releases resources.
	Close() error
}

// PayloadStoreOpener opens (creating if needed) a payload store at path.
type PayloadStoreOpener func(path string) (PayloadStore, error)
