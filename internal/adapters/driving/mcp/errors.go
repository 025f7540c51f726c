// Package mcp provides an MCP (Model Context Protocol) server adapter for pdfchat.
// It lets AI assistants query the indexed document through the chat session.
package mcp

import "errors"

// ErrMissingChatSession is returned when the chat session is not provided.
var ErrMissingChatSession = errors.New("mcp: chat session is required")
