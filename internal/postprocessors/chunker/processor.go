// Package chunker provides a sentence-aware sliding-window text chunker.
package chunker

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Verify interface compliance.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into overlapping chunks, preferring to end each
// chunk just after a sentence terminator in the second half of the window.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into chunks. Offsets are byte offsets into text.
// metadata must contain a "source" entry; "page_number" is parsed when present.
func (p *Processor) Chunk(text string, metadata map[string]string) ([]domain.TextChunk, error) {
	source := metadata[domain.MetaSource]
	if source == "" {
		return nil, fmt.Errorf("%w: chunk metadata requires %q", domain.ErrInvalidInput, domain.MetaSource)
	}
	page := 0
	if v, ok := metadata[domain.MetaPageNumber]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: page_number %q", domain.ErrInvalidInput, v)
		}
		page = n
	}

	if text == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	textLen := len(text)
	if textLen <= p.chunkSize {
		return []domain.TextChunk{p.newChunk(text, source, page, 0, 0, textLen, metadata)}, nil
	}

	estimatedChunks := (textLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.TextChunk, 0, estimatedChunks)

	start := 0
	for start < textLen {
		end := start + p.chunkSize
		if end > textLen {
			end = textLen
		}
		if end < textLen {
			end = p.sentenceEnd(text, start, end)
		}
		end = alignRune(text, start, end)

		chunks = append(chunks, p.newChunk(text[start:end], source, page, len(chunks), start, end, metadata))
		if end >= textLen {
			break
		}

		next := end - p.overlap
		if next < 0 {
			next = 0
		}
		// Always make progress, even when the break point fell early.
		if next <= start {
			next = end
		}
		start = alignRuneStart(text, next)
	}

	return chunks, nil
}

// sentenceEnd scans back from end-1 towards the middle of the window for
// '.', '!' or '?' followed by whitespace or the end of text.
func (p *Processor) sentenceEnd(text string, start, end int) int {
	floor := start + p.chunkSize/2
	for i := end - 1; i > floor; i-- {
		switch text[i] {
		case '.', '!', '?':
			if i+1 >= len(text) || isSpaceAt(text, i+1) {
				return i + 1
			}
		}
	}
	return end
}

func isSpaceAt(text string, i int) bool {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsSpace(r)
}

// alignRune moves end back so a multi-byte rune is never split, keeping
// at least one rune in the chunk.
func alignRune(text string, start, end int) int {
	if end >= len(text) {
		return end
	}
	e := end
	for e > start && !utf8.RuneStart(text[e]) {
		e--
	}
	if e == start {
		// A single rune wider than the window; take it whole.
		_, size := utf8.DecodeRuneInString(text[start:])
		return start + size
	}
	return e
}

func alignRuneStart(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

func (p *Processor) newChunk(content, source string, page, index, start, end int, metadata map[string]string) domain.TextChunk {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[domain.MetaChunkIndex] = strconv.Itoa(index)

	return domain.TextChunk{
		ID:             uuid.New().String(),
		Content:        content,
		SourceDocument: source,
		PageNumber:     page,
		ChunkIndex:     index,
		StartOffset:    start,
		EndOffset:      end,
		Metadata:       meta,
	}
}
