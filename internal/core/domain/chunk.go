package domain

// Well-known chunk metadata keys.
const (
	// MetaSource is the document name shown as an answer source.
	MetaSource = "source"

	// MetaFilePath is the absolute path of the indexed file.
	MetaFilePath = "file_path"

	// MetaPageNumber is the 1-based page the chunk was cut from.
	MetaPageNumber = "page_number"

	// MetaChunkIndex is the chunk's position within the document.
	MetaChunkIndex = "chunk_index"
)

// Page is the extracted text of a single page.
type Page struct {
	// Number is 1-based.
	Number int

	// Text is the page text with layout whitespace preserved.
	Text string
}

// SourceDocument is the extracted text of one PDF.
type SourceDocument struct {
	// Name is the display name, usually the file's base name.
	Name string

	// Path is where the document was read from.
	Path string

	// Pages holds the text of each page in order.
	Pages []Page
}

// Text returns all pages joined by blank lines.
func (d *SourceDocument) Text() string {
	var n int
	for _, p := range d.Pages {
		n += len(p.Text) + 2
	}
	buf := make([]byte, 0, n)
	for i, p := range d.Pages {
		if i > 0 {
			buf = append(buf, '\n', '\n')
		}
		buf = append(buf, p.Text...)
	}
	return string(buf)
}

// TextChunk is a bounded, overlapping span of document text.
// Content always equals the source text between StartOffset and EndOffset.
type TextChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the chunk text.
	Content string

	// SourceDocument is the name of the originating document.
	SourceDocument string

	// PageNumber is the 1-based page, zero when unknown.
	PageNumber int

	// ChunkIndex is the position within the document, contiguous from 0.
	ChunkIndex int

	// StartOffset is the inclusive byte offset into the page text.
	StartOffset int

	// EndOffset is the exclusive byte offset into the page text.
	EndOffset int

	// Metadata carries source, file_path, page_number and chunk_index.
	Metadata map[string]string
}

// Source returns the chunk's source label, falling back to the document name.
func (c TextChunk) Source() string {
	if s := c.Metadata[MetaSource]; s != "" {
		return s
	}
	return c.SourceDocument
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Vector []float32
	Chunk  TextChunk
}

// IndexedEntry is a chunk stored in a vector index.
type IndexedEntry struct {
	Vector []float32
	Chunk  TextChunk

	// InsertionOrder breaks distance ties.
	InsertionOrder int
}

// RetrievalResult is a chunk returned by similarity search.
type RetrievalResult struct {
	// Chunk is the matched chunk.
	Chunk TextChunk

	// Score is the squared Euclidean distance to the query. Lower is closer.
	Score float64
}
