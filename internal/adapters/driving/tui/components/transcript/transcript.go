// Package transcript renders the conversation log in a scrollable viewport.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// Transcript displays chat messages, newest at the bottom.
type Transcript struct {
	viewport viewport.Model
	styles   *styles.Styles
	messages []domain.ChatMessage
	pending  string
	spinner  string
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		viewport: viewport.New(80, 20),
		styles:   s,
	}
	t.refresh()
	return t
}

// Update forwards scrolling keys and mouse events to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// SetMessages replaces the log and scrolls to the bottom.
func (t *Transcript) SetMessages(msgs []domain.ChatMessage) {
	t.messages = msgs
	t.refresh()
}

// SetPending shows a question that is still being answered.
// An empty question removes the pending entry.
func (t *Transcript) SetPending(question, spinner string) {
	t.pending = question
	t.spinner = spinner
	t.refresh()
}

// Pending returns the question awaiting an answer.
func (t *Transcript) Pending() string {
	return t.pending
}

// Messages returns the displayed messages.
func (t *Transcript) Messages() []domain.ChatMessage {
	return t.messages
}

// SetDimensions resizes the viewport and re-wraps the content.
func (t *Transcript) SetDimensions(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.messages) == 0 && t.pending == "" {
		return t.styles.Muted.Render("Ask a question to start the conversation.")
	}

	width := t.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	blocks := make([]string, 0, len(t.messages)+1)
	for _, m := range t.messages {
		blocks = append(blocks, t.renderMessage(m, width))
	}
	if t.pending != "" {
		blocks = append(blocks,
			t.styles.UserLabel.Render("You")+"\n"+t.styles.Normal.Width(width).Render(t.pending),
			t.styles.AssistantLabel.Render("Assistant")+"\n"+t.styles.Muted.Render(t.spinner+" thinking..."),
		)
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) renderMessage(m domain.ChatMessage, width int) string {
	var label string
	if m.Role == domain.RoleUser {
		label = t.styles.UserLabel.Render("You")
	} else {
		label = t.styles.AssistantLabel.Render("Assistant")
	}
	if !m.Timestamp.IsZero() {
		label += t.styles.Muted.Render(" " + m.Timestamp.Format("15:04"))
	}

	out := label + "\n" + t.styles.Normal.Width(width).Render(m.Content)
	if len(m.Sources) > 0 {
		out += "\n" + t.styles.Source.Render("Sources: "+strings.Join(m.Sources, ", "))
	}
	return out
}
