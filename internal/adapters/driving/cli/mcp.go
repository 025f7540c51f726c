package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about the indexed document.

Tools:
  ask     answer a question from the document
  search  return the most relevant passages
  index   index a different PDF

By default, the server communicates over stdio using JSON-RPC.
Use --port to start a streamable HTTP server instead.

Examples:
  pdfchat mcp serve
  pdfchat mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pdfchat": {
        "command": "/path/to/pdfchat",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := cmd.Context()
	session, cleanup, err := newChatSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// An empty index is fine here: the index tool can build one.
	if found, err := session.Load(ctx); err != nil {
		logger.Warn("mcp: loading saved index: %v", err)
	} else if !found {
		logger.Info("mcp: no saved index, waiting for the index tool")
	}

	ports := &mcp.Ports{Chat: session}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			ports.DefaultLimit = settings.Retrieval.TopK
		}
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
