// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// Bar shows the indexed document, the turn state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	hints    []key.Binding
	document string
	turn     domain.TurnState
	err      string
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		hints:  km.ShortHelp(),
		turn:   domain.TurnIdle,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	doc := s.document
	if doc == "" {
		doc = "no document"
	}
	left := s.styles.Normal.Render(doc) + s.styles.Muted.Render(" · ")

	if s.err != "" {
		return left + s.styles.Error.Render("Error: "+s.err)
	}

	switch s.turn {
	case domain.TurnQueryReceived, domain.TurnRetrieving:
		return left + s.styles.Warning.Render("Searching document...")
	case domain.TurnComposing:
		return left + s.styles.Warning.Render("Composing answer...")
	case domain.TurnNoContextFallback:
		return left + s.styles.Muted.Render("No relevant context")
	case domain.TurnIdle, domain.TurnResponded:
		return left + s.styles.Muted.Render("Ready")
	}
	return left + s.styles.Muted.Render(s.turn.String())
}

func (s *Bar) renderRight() string {
	hints := make([]string, 0, len(s.hints))
	for _, b := range s.hints {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetTurn sets the displayed turn state and clears any error.
func (s *Bar) SetTurn(turn domain.TurnState) {
	s.turn = turn
	s.err = ""
}

// Turn returns the displayed turn state.
func (s *Bar) Turn() domain.TurnState {
	return s.turn
}

// SetError shows an error until the next turn change.
func (s *Bar) SetError(err error) {
	if err == nil {
		s.err = ""
		return
	}
	s.err = err.Error()
}

// Error returns the displayed error text.
func (s *Bar) Error() string {
	return s.err
}

// SetDocument sets the document name.
func (s *Bar) SetDocument(name string) {
	s.document = name
}

// SetHints replaces the keybinding hints.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
