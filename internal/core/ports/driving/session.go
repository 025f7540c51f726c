package driving

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// ChatSession answers questions about a single indexed document.
type ChatSession interface {
	// Process extracts, chunks, embeds and indexes the PDF at path.
	// The previous index stays in use until the new one is complete.
	Process(ctx context.Context, path string) (*IndexSummary, error)

	// Load restores the persisted index, reporting whether one was found.
	Load(ctx context.Context) (bool, error)

	// Ask answers a question grounded in the indexed document.
	// Provider failures produce an apology message, not an error.
	Ask(ctx context.Context, question string) (domain.ChatMessage, error)

	// Search returns the chunks most relevant to query without generating an answer.
	Search(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error)

	// History returns a copy of the conversation log.
	History() []domain.ChatMessage

	// ClearHistory empties the conversation log.
	ClearHistory()

	// State returns the current turn state.
	State() domain.TurnState

	// Ready reports whether an index is available.
	Ready() bool

	// Document returns the name of the indexed document, if any.
	Document() string
}

// IndexSummary describes a completed index build.
type IndexSummary struct {
	// Document is the display name of the indexed file.
	Document string

	// Pages is the number of pages extracted.
	Pages int

	// Chunks is the number of chunks indexed.
	Chunks int

	// Dimension is the embedding size.
	Dimension int

	// Saved reports whether the index was persisted.
	Saved bool
}
