package vertex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

type mockCredentials struct {
	project string
	err     error
}

func (m *mockCredentials) GetToken(_ context.Context) (string, error) {
	return "token", m.err
}

func (m *mockCredentials) ProjectID() string {
	return m.project
}

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(context.Background(), Config{
		Project:     "my-project",
		Credentials: &mockCredentials{},
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
	})
	require.NoError(t, err)
	return svc
}

func writePredictions(w http.ResponseWriter, vectors ...[]float64) {
	predictions := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		predictions[i] = map[string]any{"embeddings": map[string]any{"values": v}}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"predictions": predictions})
}

func TestNewEmbeddingService_RequiresCredentials(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{Project: "p"})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewEmbeddingService_RequiresProject(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{Credentials: &mockCredentials{}, HTTPClient: http.DefaultClient})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewEmbeddingService_ProjectFromCredentials(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{
		Credentials: &mockCredentials{project: "from-key"},
		HTTPClient:  http.DefaultClient,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"https://us-central1-aiplatform.googleapis.com/v1/projects/from-key/locations/us-central1/publishers/google/models/text-embedding-004:predict",
		svc.endpoint)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbedBatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/my-project/locations/us-central1/publishers/google/models/text-embedding-004:predict", r.URL.Path)
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 2)
		assert.Equal(t, "first", req.Instances[0].Content)
		assert.Equal(t, "RETRIEVAL_DOCUMENT", req.Instances[0].TaskType)

		writePredictions(w, []float64{1, 2}, []float64{3, 4})
	})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, vectors)
}

func TestEmbed_UsesQueryTask(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "RETRIEVAL_QUERY", req.Instances[0].TaskType)

		writePredictions(w, []float64{0.5, 0.25})
	})

	vec, err := svc.Embed(context.Background(), "what is it?")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	vectors, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		writePredictions(w, []float64{1, 2})
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.ProviderErrorInvalidResponse, pe.Kind)
}

func TestEmbed_QuotaExceeded(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded"}}`))
	})

	_, err := svc.Embed(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.IsTransient())
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(_ http.ResponseWriter, _ *http.Request) {})
	assert.NoError(t, svc.Ping(context.Background()))

	svc.credentials = &mockCredentials{err: fmt.Errorf("%w: expired key", domain.ErrConfiguration)}
	err := svc.Ping(context.Background())
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
