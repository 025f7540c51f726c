// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// ContextList displays retrieved chunks in a navigable list.
// The selected chunk is shown in full, the others as one-line previews.
type ContextList struct {
	results  []domain.RetrievalResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewContextList creates a new context list component.
func NewContextList(s *styles.Styles) *ContextList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ContextList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (c *ContextList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation.
func (c *ContextList) Update(msg tea.Msg) (*ContextList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // only navigation keys are relevant
		switch msg.Type {
		case tea.KeyUp:
			c.MoveUp()
		case tea.KeyDown:
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the list.
func (c *ContextList) View() string {
	if len(c.results) == 0 {
		return c.styles.Muted.Render("No context retrieved")
	}

	lines := make([]string, 0, len(c.results)+4)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Context (%d chunks)", len(c.results))), "")

	for i := range c.results {
		lines = append(lines, c.renderHeader(i))
		if i == c.selected {
			lines = append(lines, c.renderBody(&c.results[i]), "")
		}
	}
	return strings.Join(lines, "\n")
}

func (c *ContextList) renderHeader(index int) string {
	r := &c.results[index]
	label := fmt.Sprintf("%s p.%d #%d", r.Chunk.SourceDocument, r.Chunk.PageNumber, r.Chunk.ChunkIndex)
	score := fmt.Sprintf("%.3f", r.Score)

	if index == c.selected {
		return c.styles.Selected.Render(fmt.Sprintf("> %s  %s", label, score))
	}

	preview := truncate(strings.Join(strings.Fields(r.Chunk.Content), " "), c.width-lenRunes(label)-14)
	return c.styles.Normal.Render("  "+label+"  ") +
		c.styles.Muted.Render(score+"  "+preview)
}

func (c *ContextList) renderBody(r *domain.RetrievalResult) string {
	body := strings.TrimSpace(r.Chunk.Content)
	// leave room for the headers of the other results
	maxLines := c.height - len(c.results) - 4
	if maxLines < 3 {
		maxLines = 3
	}
	bodyLines := strings.Split(body, "\n")
	if len(bodyLines) > maxLines {
		bodyLines = append(bodyLines[:maxLines], "...")
	}
	for i, l := range bodyLines {
		bodyLines[i] = "    " + truncate(l, c.width-6)
	}
	return c.styles.Normal.Render(strings.Join(bodyLines, "\n"))
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func lenRunes(s string) int {
	return len([]rune(s))
}

// SetResults replaces the list contents and resets the selection.
func (c *ContextList) SetResults(results []domain.RetrievalResult) {
	c.results = results
	c.selected = 0
}

// Results returns the current results.
func (c *ContextList) Results() []domain.RetrievalResult {
	return c.results
}

// Selected returns the index of the selected result.
func (c *ContextList) Selected() int {
	return c.selected
}

// SelectedResult returns the selected result, or nil when empty.
func (c *ContextList) SelectedResult() *domain.RetrievalResult {
	if len(c.results) == 0 {
		return nil
	}
	return &c.results[c.selected]
}

// MoveUp moves selection up.
func (c *ContextList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *ContextList) MoveDown() {
	if c.selected < len(c.results)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *ContextList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of results.
func (c *ContextList) Count() int {
	return len(c.results)
}
