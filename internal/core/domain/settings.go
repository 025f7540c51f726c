package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderVertex is Google Vertex AI.
	AIProviderVertex AIProvider = "vertex"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderVertex, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// RequiresGoogleProject returns true if this provider needs a Google Cloud project.
func (p AIProvider) RequiresGoogleProject() bool {
	return p == AIProviderVertex
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderVertex:
		return "Google Vertex AI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings controls how document text is split.
type ChunkingSettings struct {
	// Size is the maximum chunk length in bytes.
	Size int

	// Overlap is how many bytes consecutive chunks share.
	Overlap int
}

// RetrievalSettings controls query-time behaviour.
type RetrievalSettings struct {
	// TopK is how many chunks ground an answer.
	TopK int

	// MaxHistory is how many prior messages are included in the prompt.
	MaxHistory int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the known model dimension when non-zero.
	Dimensions int

	// BatchSize is how many texts are sent per provider call.
	BatchSize int

	// RequestsPerSecond paces batch calls. Zero disables pacing.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature, in [0, 1].
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GoogleSettings holds Google Cloud configuration for the Vertex provider.
type GoogleSettings struct {
	// Project is the Google Cloud project ID.
	Project string

	// Location is the Vertex AI region.
	Location string

	// Credentials is a key file path, raw JSON or base64 JSON.
	// Empty means Application Default Credentials.
	Credentials string
}

// IndexSettings controls where the index is persisted.
type IndexSettings struct {
	// Dir is the directory holding index artifacts.
	Dir string

	// Name is the artifact base name.
	Name string
}

// LogSettings controls the operational log file.
type LogSettings struct {
	// Dir is the directory holding log files. Empty disables the file log.
	Dir string

	// MaxBytes is the size at which the log is rotated.
	MaxBytes int64

	// Backups is how many rotated files are kept.
	Backups int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Google    GoogleSettings
	Index     IndexSettings
	Log       LogSettings
}

// Validate checks value ranges. Provider availability is checked separately.
func (s AppSettings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", ErrConfiguration)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, chunking.size)", ErrConfiguration)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrConfiguration)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 1 {
		return fmt.Errorf("%w: llm.temperature must be in [0, 1]", ErrConfiguration)
	}
	if s.LLM.MaxTokens <= 0 {
		return fmt.Errorf("%w: llm.max_tokens must be positive", ErrConfiguration)
	}
	if s.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: embedding.batch_size must be positive", ErrConfiguration)
	}
	if s.Embedding.Provider.RequiresGoogleProject() || s.LLM.Provider.RequiresGoogleProject() {
		if s.Google.Project == "" {
			return fmt.Errorf("%w: google.project is required for the vertex provider", ErrConfiguration)
		}
	}
	return nil
}

// Default values.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultTopK             = 5
	DefaultMaxHistory       = 6
	DefaultTemperature      = 0.1
	DefaultMaxTokens        = 2048
	DefaultEmbeddingBatch   = 16
	DefaultGoogleLocation   = "us-central1"
	DefaultIndexName        = "pdf_documents"
	DefaultLogMaxBytes      = 5 * 1024 * 1024
	DefaultLogBackups       = 5
	DefaultEmbeddingRateRPS = 5
)

// DefaultAppSettings returns settings with sensible defaults.
// Both providers default to Vertex AI; directories are filled in by the caller.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:       DefaultTopK,
			MaxHistory: DefaultMaxHistory,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderVertex,
			Model:             DefaultEmbeddingModels()[AIProviderVertex],
			BatchSize:         DefaultEmbeddingBatch,
			RequestsPerSecond: DefaultEmbeddingRateRPS,
		},
		LLM: LLMSettings{
			Provider:    AIProviderVertex,
			Model:       DefaultLLMModels()[AIProviderVertex],
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Google: GoogleSettings{
			Location: DefaultGoogleLocation,
		},
		Index: IndexSettings{
			Name: DefaultIndexName,
		},
		Log: LogSettings{
			MaxBytes: DefaultLogMaxBytes,
			Backups:  DefaultLogBackups,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderVertex,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderVertex,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderVertex: "text-embedding-004",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderVertex:    "gemini-1.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Vertex models
		"text-embedding-004": 768,
		"text-embedding-005": 768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// ResolveEmbeddingDimensions returns the configured override or the known
// dimension for the model, zero when unknown.
func (e EmbeddingSettings) ResolveEmbeddingDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}
