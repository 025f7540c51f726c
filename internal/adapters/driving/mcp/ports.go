package mcp

import (
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Chat answers questions about the indexed document.
	Chat driving.ChatSession

	// DefaultLimit is how many chunks the search tool returns when the
	// caller does not ask for a specific number.
	DefaultLimit int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Chat == nil {
		return ErrMissingChatSession
	}
	return nil
}
