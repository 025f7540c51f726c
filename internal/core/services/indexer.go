package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Indexer builds a complete vector index for one document.
type Indexer struct {
	chunker  driven.Chunker
	embedder *Embedder
	newIndex driven.VectorIndexFactory
}

// NewIndexer creates an indexer. Each Build gets a fresh index from newIndex.
func NewIndexer(chunker driven.Chunker, embedder *Embedder, newIndex driven.VectorIndexFactory) *Indexer {
	return &Indexer{
		chunker:  chunker,
		embedder: embedder,
		newIndex: newIndex,
	}
}

// Chunk splits every non-blank page of doc, numbering chunks across the
// whole document.
func (ix *Indexer) Chunk(doc *domain.SourceDocument) ([]domain.TextChunk, error) {
	var all []domain.TextChunk
	for _, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		meta := map[string]string{
			domain.MetaSource:     doc.Name,
			domain.MetaFilePath:   doc.Path,
			domain.MetaPageNumber: strconv.Itoa(page.Number),
		}
		chunks, err := ix.chunker.Chunk(page.Text, meta)
		if err != nil {
			return nil, fmt.Errorf("chunk page %d: %w", page.Number, err)
		}
		for _, c := range chunks {
			c.ChunkIndex = len(all)
			c.Metadata[domain.MetaChunkIndex] = strconv.Itoa(c.ChunkIndex)
			all = append(all, c)
		}
	}
	return all, nil
}

// Build chunks, embeds and indexes doc. On any failure no index is returned.
func (ix *Indexer) Build(ctx context.Context, doc *domain.SourceDocument) (driven.VectorIndex, error) {
	logger.Section("Index Build")
	logger.Info("Indexing %s (%d pages)", doc.Name, len(doc.Pages))

	chunks, err := ix.Chunk(doc)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.Name, domain.ErrEmptyDocument)
	}
	logger.Debug("Created %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	entries := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		entries[i] = domain.EmbeddedChunk{Vector: vectors[i], Chunk: chunks[i]}
	}

	index := ix.newIndex()
	if err := index.Initialize(ix.embedder.Dimension()); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("initialise index: %w", err)
	}
	if err := index.Add(ctx, entries); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("add to index: %w", err)
	}

	logger.Info("Indexed %d chunks from %s (dim=%d)", index.Len(), doc.Name, index.Dimension())
	return index, nil
}
