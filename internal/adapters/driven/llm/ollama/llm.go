// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second

	providerName = "ollama"
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var resp generateResponse
	err := httpapi.Do(ctx, s.client, httpapi.Request{
		Provider: providerName,
		Op:       "generate",
		URL:      s.baseURL + "/api/generate",
		Body: generateRequest{
			Model:  s.model,
			Prompt: prompt,
			Stream: false,
			Options: options{
				NumPredict:  opts.MaxTokens,
				Temperature: opts.Temperature,
				Stop:        opts.StopWords,
			},
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return httpapi.Do(ctx, s.client, httpapi.Request{
		Provider: providerName,
		Op:       "ping",
		Method:   http.MethodGet,
		URL:      s.baseURL + "/api/tags",
	}, nil)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
