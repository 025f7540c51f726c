// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/auth"
	ollamaembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/openai"
	vertexembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/vertex"
	anthropicllm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/openai"
	vertexllm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/vertex"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CredentialLoader builds a Google credential provider from a key source.
type CredentialLoader func(ctx context.Context, source string) (driven.CredentialProvider, error)

// loadGoogleCredentials is the default CredentialLoader.
func loadGoogleCredentials(ctx context.Context, source string) (driven.CredentialProvider, error) {
	return auth.NewGoogleCredentialProvider(ctx, source)
}

// Factory creates the provider selected in settings. There is no fallback:
// an unusable selection is a configuration error.
type Factory struct {
	google domain.GoogleSettings
	load   CredentialLoader

	mu    sync.Mutex
	creds driven.CredentialProvider
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithCredentialLoader replaces how Google credentials are loaded.
func WithCredentialLoader(load CredentialLoader) FactoryOption {
	return func(f *Factory) {
		f.load = load
	}
}

// NewFactory creates a factory using google for Vertex AI providers.
func NewFactory(google domain.GoogleSettings, opts ...FactoryOption) *Factory {
	f := &Factory{
		google: google,
		load:   loadGoogleCredentials,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Credentials returns the Google credential provider, loading it once.
// Embedding and generation share it.
func (f *Factory) Credentials(ctx context.Context) (driven.CredentialProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.creds != nil {
		return f.creds, nil
	}
	creds, err := f.load(ctx, f.google.Credentials)
	if err != nil {
		return nil, err
	}
	f.creds = creds
	return creds, nil
}

// Services holds the AI services of one process.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// CreateServices creates the embedding and LLM services from settings.
func (f *Factory) CreateServices(ctx context.Context, settings domain.AppSettings) (*Services, error) {
	embedding, err := f.CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	llm, err := f.CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		embedding.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}
	return &Services{Embedding: embedding, LLM: llm}, nil
}

// CreateEmbeddingService creates the embedding service selected in settings,
// paced by its configured request rate.
func (f *Factory) CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if err := checkConfigured(settings.Provider, settings.APIKey); err != nil {
		return nil, err
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderVertex:
		svc, err = f.createVertexEmbedding(ctx, settings)

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use vertex, ollama or openai",
			domain.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond})
	return ratelimit.WrapEmbedding(svc, limiter), nil
}

// CreateLLMService creates the LLM service selected in settings.
func (f *Factory) CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if err := checkConfigured(settings.Provider, settings.APIKey); err != nil {
		return nil, err
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderVertex:
		svc, err = f.createVertexLLM(ctx, settings)

	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %q", domain.ErrConfiguration, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	// Generation is not paced, but backs off after a 429.
	return ratelimit.WrapLLM(svc, ratelimit.NewLimiter(ratelimit.Config{})), nil
}

func checkConfigured(provider domain.AIProvider, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: %s requires an API key", domain.ErrConfiguration, provider)
	}
	return nil
}

// createVertexEmbedding creates a Vertex AI embedding service.
func (f *Factory) createVertexEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	creds, err := f.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	return vertexembed.NewEmbeddingService(ctx, vertexembed.Config{
		Project:     f.google.Project,
		Location:    f.google.Location,
		Model:       settings.Model,
		Dimensions:  settings.ResolveEmbeddingDimensions(),
		Credentials: creds,
		BaseURL:     settings.BaseURL,
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.ResolveEmbeddingDimensions(),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.ResolveEmbeddingDimensions(),
	})
}

// createVertexLLM creates a Gemini service on Vertex AI.
func (f *Factory) createVertexLLM(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	creds, err := f.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	return vertexllm.NewLLMService(ctx, vertexllm.Config{
		Project:     f.google.Project,
		Location:    f.google.Location,
		Model:       settings.Model,
		Credentials: creds,
		BaseURL:     settings.BaseURL,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
