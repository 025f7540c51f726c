package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_NilConfig(t *testing.T) {
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateLLM(nil))
}

func TestConfigValidator_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "test-model"})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func newOllamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConfigValidator_ValidateEmbedding_Reachable(t *testing.T) {
	server := newOllamaServer(t, http.StatusOK)
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  server.URL,
	})

	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEmbedding_Unreachable(t *testing.T) {
	server := newOllamaServer(t, http.StatusServiceUnavailable)
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  server.URL,
	})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	ok := newOllamaServer(t, http.StatusOK)
	down := newOllamaServer(t, http.StatusBadGateway)
	validator := NewConfigValidator(newTestFactory(&countingLoader{}))

	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, Model: "llama3.2", BaseURL: ok.URL,
	}))

	err := validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, Model: "llama3.2", BaseURL: down.URL,
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestConfigValidator_VertexPingUsesCredentials(t *testing.T) {
	loader := &countingLoader{}
	validator := NewConfigValidator(newTestFactory(loader))

	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderVertex, Model: "gemini-1.5-flash"})

	assert.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
}
