package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywords are the axes of the mock embedding space.
var keywords = []string{"cat", "dog", "sky", "sea"}

// keywordVector places text in a small space where shared keywords mean
// smaller distances. The offsets keep vectors non-constant.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(keywords))
	for i, kw := range keywords {
		v[i] = float32(i+1) + 10*float32(strings.Count(lower, kw))
	}
	return v
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu        sync.Mutex
	embedFn   func(string) []float32
	embedErr  error
	dims      int
	batches   []int
	queries   []string
	pingErr   error
	truncated bool

	// embedStarted and embedBlock hold single-text embeds (queries).
	embedStarted chan struct{}
	embedBlock   chan struct{}
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{embedFn: keywordVector, dims: len(keywords)}
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	signal(m.embedStarted)
	if m.embedBlock != nil {
		select {
		case <-m.embedBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedFn(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, len(texts))
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.embedFn(t)
	}
	if m.truncated && len(result) > 0 {
		result = result[:len(result)-1]
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
	started  chan struct{}
	block    chan struct{}
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	signal(m.started)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	doc     *domain.SourceDocument
	err     error
	started chan struct{}
	block   chan struct{}
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (*domain.SourceDocument, error) {
	signal(m.started)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	doc := *m.doc
	doc.Path = path
	return &doc, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompt string
	err    error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	return m.prompt, m.err
}

func (m *mockPromptStore) Reload() {}

// --- Test helpers ---

func signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func testDocument() *domain.SourceDocument {
	return &domain.SourceDocument{
		Name: "animals.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: "The cat sat on the mat. The cat likes fish."},
			{Number: 2, Text: "A dog runs in the park. The dog barks loudly."},
			{Number: 3, Text: "The sky is blue above the sea. Waves on the sea."},
		},
	}
}

func result(content string, page int, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.TextChunk{
			Content:        content,
			SourceDocument: "animals.pdf",
			PageNumber:     page,
			Metadata:       map[string]string{domain.MetaSource: "animals.pdf"},
		},
		Score: score,
	}
}
