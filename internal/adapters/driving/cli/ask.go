package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

var askPDF string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question about the indexed document",
	Long: `Answer one question using the saved index, or index --pdf first.

Examples:
  pdfchat ask "What does the warranty cover?"
  pdfchat ask --pdf manual.pdf "How do I reset the device?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "index this PDF before answering")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.TrimSpace(strings.Join(args, " "))

	session, cleanup, err := prepareSession(ctx, askPDF, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := session.Ask(ctx, question)
	if reply.Content != "" {
		printReply(cmd, reply)
	}
	return err
}

func printReply(cmd *cobra.Command, reply domain.ChatMessage) {
	cmd.Println(reply.Content)
	if len(reply.Sources) > 0 {
		cmd.Printf("\nSources: %s\n", strings.Join(reply.Sources, ", "))
	}
}
