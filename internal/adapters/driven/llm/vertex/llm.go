// Package vertex provides an LLM service adapter using Gemini on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/google"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel    = "gemini-1.5-flash"
	DefaultLocation = "us-central1"
	DefaultTimeout  = 120 * time.Second

	providerName = "vertex"
)

// Config holds configuration for the Vertex AI LLM service.
type Config struct {
	// Project is the Google Cloud project ID. Falls back to the project
	// embedded in the credentials.
	Project string

	// Location is the Vertex AI region (default: us-central1).
	Location string

	// Model is the Gemini model to use (default: gemini-1.5-flash).
	Model string

	// Credentials supplies access tokens (required).
	Credentials driven.CredentialProvider

	// BaseURL overrides the regional endpoint, e.g. for tests.
	BaseURL string

	// HTTPClient overrides the authorised client built from Credentials.
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates text with Gemini through generateContent.
type LLMService struct {
	client      *http.Client
	credentials driven.CredentialProvider
	endpoint    string
	model       string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// NewLLMService creates a new Vertex AI LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("%w: vertex generation requires Google credentials", domain.ErrConfiguration)
	}
	if cfg.Project == "" {
		cfg.Project = cfg.Credentials.ProjectID()
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("%w: google.project is required for vertex generation", domain.ErrConfiguration)
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		var err error
		client, err = google.NewHTTPClient(ctx, cfg.Credentials)
		if err != nil {
			return nil, err
		}
		client.Timeout = cfg.Timeout
	}

	return &LLMService{
		client:      client,
		credentials: cfg.Credentials,
		endpoint:    google.ModelEndpoint(cfg.BaseURL, cfg.Project, cfg.Location, cfg.Model) + ":generateContent",
		model:       cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
			StopSequences:   opts.StopWords,
		},
	}

	var resp generateResponse
	if err := google.PostJSON(ctx, s.client, providerName, "generate", s.endpoint, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		reason := "no candidates returned"
		if resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + resp.PromptFeedback.BlockReason
		}
		return "", domain.NewInvalidResponseError(providerName, "generate", errors.New(reason))
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that credentials yield an access token.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.credentials.GetToken(ctx); err != nil {
		return fmt.Errorf("vertex credentials: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
