package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.ChatSession = (*Session)(nil)

// SessionConfig wires a Session.
type SessionConfig struct {
	Extractor driven.TextExtractor
	Indexer   *Indexer
	Embedder  *Embedder
	Composer  *Composer

	// NewIndex creates the index that Load fills.
	NewIndex driven.VectorIndexFactory

	// IndexDir is where the index is persisted. Empty disables persistence.
	IndexDir string

	// TopK is how many chunks ground each answer.
	TopK int

	// OnStateChange, if set, is called on every turn state transition.
	OnStateChange func(domain.TurnState)
}

// Session is one user's conversation about one document. It owns the
// index and the conversation log; at most one build and one query run at a time.
type Session struct {
	cfg SessionConfig

	buildMu sync.Mutex
	queryMu sync.Mutex

	mu       sync.RWMutex
	index    driven.VectorIndex
	document string
	history  []domain.ChatMessage
	state    domain.TurnState

	// generation changes whenever the log is reset. Turns started on an
	// older generation do not write to it.
	generation uint64
}

// NewSession creates a session with no document.
func NewSession(cfg SessionConfig) *Session {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	return &Session{
		cfg:   cfg,
		state: domain.TurnIdle,
	}
}

// Process extracts, chunks, embeds and indexes the PDF at path. The previous
// index keeps serving queries until the new one is complete and is closed
// after any query still using it returns.
func (s *Session) Process(ctx context.Context, path string) (*driving.IndexSummary, error) {
	if !s.buildMu.TryLock() {
		return nil, domain.ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	doc, err := s.cfg.Extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("extract %s: %v", path, err)
		return nil, fmt.Errorf("extract text: %w", err)
	}

	index, err := s.cfg.Indexer.Build(ctx, doc)
	if err != nil {
		logger.Error("index %s: %v", doc.Name, err)
		return nil, err
	}

	summary := &driving.IndexSummary{
		Document:  doc.Name,
		Pages:     len(doc.Pages),
		Chunks:    index.Len(),
		Dimension: index.Dimension(),
	}

	if s.cfg.IndexDir != "" {
		if err := index.Save(ctx, s.cfg.IndexDir); err != nil {
			logger.Warn("Saving index to %s failed: %v", s.cfg.IndexDir, err)
		} else {
			summary.Saved = true
		}
	}

	s.swap(index, doc.Name)
	return summary, nil
}

// Load restores the persisted index, reporting whether one was found.
func (s *Session) Load(ctx context.Context) (bool, error) {
	if s.cfg.IndexDir == "" {
		return false, nil
	}
	if !s.buildMu.TryLock() {
		return false, domain.ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	index := s.cfg.NewIndex()
	ok, err := index.Load(ctx, s.cfg.IndexDir)
	if err != nil || !ok {
		_ = index.Close()
		return false, err
	}

	if want := s.cfg.Embedder.Dimension(); want != 0 && want != index.Dimension() {
		_ = index.Close()
		return false, fmt.Errorf("%w: saved index has %d dimensions but %s produces %d; re-index the document",
			domain.ErrConfiguration, index.Dimension(), s.cfg.Embedder.ModelName(), want)
	}

	name := ""
	if results, err := index.Search(ctx, make([]float32, index.Dimension()), 1); err == nil && len(results) > 0 {
		name = results[0].Chunk.SourceDocument
	}
	s.swap(index, name)
	logger.Info("Loaded saved index from %s (%d chunks)", s.cfg.IndexDir, index.Len())
	return true, nil
}

// swap installs index and closes the one it replaces once no query holds it.
func (s *Session) swap(index driven.VectorIndex, document string) {
	s.mu.Lock()
	old := s.index
	s.index = index
	s.document = document
	s.history = nil
	s.generation++
	s.mu.Unlock()

	if old == nil {
		return
	}
	s.queryMu.Lock()
	_ = old.Close()
	s.queryMu.Unlock()
}

// Ask answers a question grounded in the indexed document. Provider failures
// produce the apology message with a nil error; configuration failures are
// also returned as errors so the caller can point the user at their setup.
func (s *Session) Ask(ctx context.Context, question string) (domain.ChatMessage, error) {
	if !s.queryMu.TryLock() {
		return domain.ChatMessage{}, domain.ErrQueryInProgress
	}
	defer s.queryMu.Unlock()

	s.mu.RLock()
	index := s.index
	gen := s.generation
	prior := append([]domain.ChatMessage(nil), s.history...)
	s.mu.RUnlock()
	if index == nil {
		return domain.ChatMessage{}, domain.ErrIndexNotReady
	}

	s.setState(domain.TurnQueryReceived)
	defer s.setState(domain.TurnIdle)
	s.appendHistory(gen, domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	s.setState(domain.TurnRetrieving)
	results, err := NewRetriever(s.cfg.Embedder, index).Retrieve(ctx, question, s.cfg.TopK)
	if err != nil {
		msg := s.cfg.Composer.Fail(question, err)
		return s.respond(gen, msg, err)
	}

	if len(results) == 0 {
		s.setState(domain.TurnNoContextFallback)
	} else {
		s.setState(domain.TurnComposing)
	}
	msg, err := s.cfg.Composer.Answer(ctx, question, results, prior)
	return s.respond(gen, msg, err)
}

func (s *Session) respond(gen uint64, msg domain.ChatMessage, err error) (domain.ChatMessage, error) {
	if !s.appendHistory(gen, msg) {
		logger.Debug("Conversation reset while answering; reply not recorded")
	}
	s.setState(domain.TurnResponded)
	if err != nil && (domain.IsConfigurationError(err) || errors.Is(err, context.Canceled)) {
		return msg, err
	}
	return msg, nil
}

// Search returns the chunks most relevant to query without generating an answer.
func (s *Session) Search(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	if !s.queryMu.TryLock() {
		return nil, domain.ErrQueryInProgress
	}
	defer s.queryMu.Unlock()

	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		return nil, domain.ErrIndexNotReady
	}
	if k <= 0 {
		k = s.cfg.TopK
	}
	return NewRetriever(s.cfg.Embedder, index).Retrieve(ctx, strings.TrimSpace(query), k)
}

// History returns a copy of the conversation log.
func (s *Session) History() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.history...)
}

// ClearHistory empties the conversation log.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.generation++
}

// State returns the current turn state.
func (s *Session) State() domain.TurnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether an index is available.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Document returns the name of the indexed document, if any.
func (s *Session) Document() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document
}

// Close releases the current index.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// appendHistory records msg unless the log was reset after generation gen.
func (s *Session) appendHistory(gen uint64, msg domain.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.history = append(s.history, msg)
	return true
}

func (s *Session) setState(state domain.TurnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	logger.Debug("Turn state: %s", state)
	if s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(state)
	}
}
