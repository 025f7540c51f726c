// Package vertex provides an embedding service adapter using Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/google"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultLocation   = "us-central1"
	DefaultDimensions = 768
	DefaultTimeout    = 60 * time.Second

	providerName = "vertex"
)

// Task types tell the model which side of a retrieval pair it is embedding.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// Config holds configuration for the Vertex AI embedding service.
type Config struct {
	// Project is the Google Cloud project ID. Falls back to the project
	// embedded in the credentials.
	Project string

	// Location is the Vertex AI region (default: us-central1).
	Location string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the expected vector size (default: 768).
	Dimensions int

	// Credentials supplies access tokens (required).
	Credentials driven.CredentialProvider

	// BaseURL overrides the regional endpoint, e.g. for tests.
	BaseURL string

	// HTTPClient overrides the authorised client built from Credentials.
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using the Vertex AI predict endpoint.
type EmbeddingService struct {
	client      *http.Client
	credentials driven.CredentialProvider
	endpoint    string
	model       string
	dimensions  int
}

type instance struct {
	Content  string `json:"content"`
	TaskType string `json:"task_type"`
}

type predictRequest struct {
	Instances []instance `json:"instances"`
}

type predictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float64 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
}

// NewEmbeddingService creates a new Vertex AI embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("%w: vertex embedding requires Google credentials", domain.ErrConfiguration)
	}
	if cfg.Project == "" {
		cfg.Project = cfg.Credentials.ProjectID()
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("%w: google.project is required for vertex embeddings", domain.ErrConfiguration)
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
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

	return &EmbeddingService{
		client:      client,
		credentials: cfg.Credentials,
		endpoint:    google.ModelEndpoint(cfg.BaseURL, cfg.Project, cfg.Location, cfg.Model) + ":predict",
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
	}, nil
}

// Embed generates a query embedding for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.predict(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates document embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return s.predict(ctx, texts, taskDocument)
}

func (s *EmbeddingService) predict(ctx context.Context, texts []string, task string) ([][]float32, error) {
	req := predictRequest{Instances: make([]instance, len(texts))}
	for i, text := range texts {
		req.Instances[i] = instance{Content: text, TaskType: task}
	}

	var resp predictResponse
	if err := google.PostJSON(ctx, s.client, providerName, "embed", s.endpoint, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) != len(texts) {
		return nil, domain.NewInvalidResponseError(providerName, "embed",
			fmt.Errorf("got %d embeddings for %d inputs", len(resp.Predictions), len(texts)))
	}

	vectors := make([][]float32, len(resp.Predictions))
	for i, p := range resp.Predictions {
		vec := make([]float32, len(p.Embeddings.Values))
		for j, v := range p.Embeddings.Values {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that credentials yield an access token. It does not call the
// model, so it costs nothing.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.credentials.GetToken(ctx); err != nil {
		return fmt.Errorf("vertex credentials: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
