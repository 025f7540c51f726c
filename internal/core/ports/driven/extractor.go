package driven

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// TextExtractor reads page text out of a document file.
type TextExtractor interface {
	// Extract returns the document's text, one entry per page.
	Extract(ctx context.Context, path string) (*domain.SourceDocument, error)
}
