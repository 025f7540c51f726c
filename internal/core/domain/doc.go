// Package domain defines the core business entities for pdfchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: Extracted text of one PDF, page by page
//   - TextChunk: A bounded, overlapping span of document text
//   - EmbeddedChunk: A chunk paired with its embedding vector
//   - RetrievalResult: A chunk returned by nearest-neighbour search
//   - ChatMessage: One entry in the append-only conversation log
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
