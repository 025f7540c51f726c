package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme   = "pdfchat://"
	documentURI = uriScheme + "document"
	historyURI  = uriScheme + "history"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentURI,
		Name:        "document",
		Description: "The currently indexed document and its readiness",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "history",
		Description: "The conversation log of this session",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

type documentInfo struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

type historyEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
}

func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := documentInfo{
		Name:  s.ports.Chat.Document(),
		Ready: s.ports.Chat.Ready(),
		State: s.ports.Chat.State().String(),
	}
	return jsonResource(req.Params.URI, info)
}

func (s *Server) handleHistoryResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	history := s.ports.Chat.History()
	entries := make([]historyEntry, len(history))
	for i, m := range history {
		entries[i] = historyEntry{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Sources:   m.Sources,
		}
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
