package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// mockChatSession implements driving.ChatSession for testing.
type mockChatSession struct {
	reply     domain.ChatMessage
	askErr    error
	asked     []string
	results   []domain.RetrievalResult
	searchErr error
	lastK     int
	summary   *driving.IndexSummary
	indexErr  error
	indexed   string
	history   []domain.ChatMessage
	document  string
}

var _ driving.ChatSession = (*mockChatSession)(nil)

func (m *mockChatSession) Process(_ context.Context, path string) (*driving.IndexSummary, error) {
	m.indexed = path
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.summary, nil
}

func (m *mockChatSession) Load(context.Context) (bool, error) { return m.document != "", nil }

func (m *mockChatSession) Ask(_ context.Context, question string) (domain.ChatMessage, error) {
	m.asked = append(m.asked, question)
	if m.askErr != nil {
		return domain.ChatMessage{}, m.askErr
	}
	reply := m.reply
	reply.Timestamp = time.Now()
	return reply, nil
}

func (m *mockChatSession) Search(_ context.Context, _ string, k int) ([]domain.RetrievalResult, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockChatSession) History() []domain.ChatMessage { return m.history }
func (m *mockChatSession) ClearHistory()                 { m.history = nil }
func (m *mockChatSession) State() domain.TurnState       { return domain.TurnIdle }
func (m *mockChatSession) Ready() bool                   { return m.document != "" }
func (m *mockChatSession) Document() string              { return m.document }
