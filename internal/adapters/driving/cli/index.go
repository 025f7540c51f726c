package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

var indexCmd = &cobra.Command{
	Use:   "index <file.pdf>",
	Short: "Index a PDF document",
	Long: `Extract the text of a PDF, split it into chunks, embed them and save the
vector index. The new index replaces any previously indexed document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	session, cleanup, err := newChatSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	cmd.Printf("Indexing %s...\n", args[0])
	summary, err := session.Process(ctx, args[0])
	if err != nil {
		return err
	}
	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *driving.IndexSummary) {
	cmd.Printf("Indexed %s: %d pages, %d chunks, %d dimensions\n", s.Document, s.Pages, s.Chunks, s.Dimension)
	if !s.Saved {
		cmd.Println("Warning: index was not saved; it is only available for this run.")
	}
}
