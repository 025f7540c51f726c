// Package tui provides an interactive chat interface for pdfchat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Chat answers questions about the indexed document.
	Chat driving.ChatSession

	// ContextSize is how many chunks the context view retrieves.
	ContextSize int
}

// NewPorts creates a new Ports aggregate.
func NewPorts(chat driving.ChatSession, contextSize int) *Ports {
	return &Ports{Chat: chat, ContextSize: contextSize}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Chat == nil {
		return ErrMissingChatSession
	}
	return nil
}
