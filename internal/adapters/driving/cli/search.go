package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed document",
	Long: `Returns the chunks of the indexed document closest to the query, without
generating an answer. Scores are squared Euclidean distances: lower is closer.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := session.Search(ctx, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

type searchResultJSON struct {
	Document   string  `json:"document"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			Document:   r.Chunk.SourceDocument,
			Page:       r.Chunk.PageNumber,
			ChunkIndex: r.Chunk.ChunkIndex,
			Score:      r.Score,
			Content:    r.Chunk.Content,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

const snippetLen = 160

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		// [N] document p.P (score)
		cmd.Printf("  [%d] %s p.%d (%.4f)\n", i+1, r.Chunk.SourceDocument, r.Chunk.PageNumber, r.Score)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, snippetLen))
		cmd.Println()
	}
	return nil
}

func snippet(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit-3]) + "..."
}
