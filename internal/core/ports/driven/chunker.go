package driven

import "github.com/custodia-labs/pdfchat/internal/core/domain"

// Chunker splits text into overlapping, sentence-aware chunks.
type Chunker interface {
	// Chunk splits text. metadata must carry a "source" entry and is
	// copied onto every chunk. Empty text yields no chunks.
	Chunk(text string, metadata map[string]string) ([]domain.TextChunk, error)
}
