// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Reads page text out of a PDF
//   - Chunker: Splits page text into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Exact nearest-neighbour search over embedded chunks
//   - LLMService: Generates grounded answers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PayloadStore: Persists chunk payloads next to the index vectors
//   - CredentialProvider: Google credentials for the Vertex provider
//   - FileWatcher: Notifies when PDFs in a directory change
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
