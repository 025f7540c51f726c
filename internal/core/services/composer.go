package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure Composer accepts a prompt store.
var _ driven.PromptStoreAware = (*Composer)(nil)

// Composer turns retrieved chunks into a grounded answer.
type Composer struct {
	llm        driven.LLMService
	prompts    driven.PromptStore
	opts       driven.GenerateOptions
	maxHistory int
	now        func() time.Time
}

// NewComposer creates a composer. maxHistory bounds how many prior messages
// are included in the prompt.
func NewComposer(llm driven.LLMService, settings domain.LLMSettings, maxHistory int) *Composer {
	return &Composer{
		llm: llm,
		opts: driven.GenerateOptions{
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Compose answers query from retrieved. It never returns an empty message:
// no context yields NoContextMessage without calling the model, and a failed
// or blank generation yields ApologyMessage with the cause logged.
func (c *Composer) Compose(
	ctx context.Context, query string, retrieved []domain.RetrievalResult, history []domain.ChatMessage,
) domain.ChatMessage {
	msg, _ := c.Answer(ctx, query, retrieved, history)
	return msg
}

// Answer is Compose that also reports the logged failure, if any.
// The returned message is always safe to show to the user.
func (c *Composer) Answer(
	ctx context.Context, query string, retrieved []domain.RetrievalResult, history []domain.ChatMessage,
) (domain.ChatMessage, error) {
	if len(retrieved) == 0 {
		logger.Debug("No context retrieved, using fallback answer")
		return c.message(domain.NoContextMessage, nil), nil
	}

	prompt := c.BuildPrompt(query, retrieved, history)
	logger.Debug("Prompt: %d chars, %d chunks, %d history messages", len(prompt), len(retrieved), len(history))

	answer, err := c.llm.Generate(ctx, prompt, c.opts)
	if err != nil {
		err = fmt.Errorf("generate answer: %w", err)
		return c.Fail(query, err), err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		err := domain.NewInvalidResponseError(c.llm.ModelName(), "generate", errors.New("empty answer"))
		return c.Fail(query, err), err
	}

	return c.message(answer, Sources(retrieved)), nil
}

// Fail records err in the operational log and returns the apology message.
func (c *Composer) Fail(query string, err error) domain.ChatMessage {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		logger.Error("answer failed for %q: provider=%s op=%s kind=%s: %v", query, pe.Provider, pe.Op, pe.Kind, err)
	} else {
		logger.Error("answer failed for %q: %v", query, err)
	}
	return c.message(domain.ApologyMessage, nil)
}

// BuildPrompt assembles the grounded prompt.
func (c *Composer) BuildPrompt(query string, retrieved []domain.RetrievalResult, history []domain.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(c.preamble())
	sb.WriteString("\n")

	if c.maxHistory > 0 && len(history) > 0 {
		if len(history) > c.maxHistory {
			history = history[len(history)-c.maxHistory:]
		}
		sb.WriteString("\nConversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
	}

	sb.WriteString("\nContext from the PDF:\n")
	for i, r := range retrieved {
		fmt.Fprintf(&sb, "[%d] (page %d)\n%s\n\n", i+1, r.Chunk.PageNumber, r.Chunk.Content)
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// SetPromptStore lets users override the answer instructions.
func (c *Composer) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

func (c *Composer) preamble() string {
	if c.prompts == nil {
		return domain.GroundedAnswerPrompt
	}
	p, err := c.prompts.Load(driven.PromptGroundedAnswer)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Warn("Using built-in answer prompt: %v", err)
		return domain.GroundedAnswerPrompt
	}
	return strings.TrimSpace(p)
}

// Sources returns distinct chunk sources in first-seen order.
func Sources(retrieved []domain.RetrievalResult) []string {
	seen := make(map[string]bool, len(retrieved))
	var sources []string
	for _, r := range retrieved {
		s := r.Chunk.Source()
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		sources = append(sources, s)
	}
	return sources
}

func (c *Composer) message(content string, sources []string) domain.ChatMessage {
	return domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: c.now(),
		Sources:   sources,
	}
}
