package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find relevant passages for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is a single retrieved chunk.
type PassageOutput struct {
	Document   string  `json:"document"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// IndexInput is the input schema for the index tool.
type IndexInput struct {
	Path string `json:"path" jsonschema:"absolute path of the PDF to index"`
}

// IndexOutput is the output schema for the index tool.
type IndexOutput struct {
	Document  string `json:"document"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Dimension int    `json:"dimension"`
	Saved     bool   `json:"saved"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the content of the indexed PDF",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Return the passages of the indexed PDF most relevant to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index",
		Description: "Index a PDF, replacing the current document",
	}, s.handleIndex)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	reply, err := s.ports.Chat.Ask(ctx, question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{Answer: reply.Content, Sources: reply.Sources}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.ports.DefaultLimit
	}

	results, err := s.ports.Chat.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]PassageOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = PassageOutput{
			Document:   results[i].Chunk.SourceDocument,
			Page:       results[i].Chunk.PageNumber,
			ChunkIndex: results[i].Chunk.ChunkIndex,
			Score:      results[i].Score,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	summary, err := s.ports.Chat.Process(ctx, input.Path)
	if err != nil {
		return nil, IndexOutput{}, err
	}

	return nil, IndexOutput{
		Document:  summary.Document,
		Pages:     summary.Pages,
		Chunks:    summary.Chunks,
		Dimension: summary.Dimension,
		Saved:     summary.Saved,
	}, nil
}
