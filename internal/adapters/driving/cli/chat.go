package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat [file.pdf]",
	Short: "Chat with a PDF document",
	Long: `Start a conversation about a PDF. With a file argument the document is
indexed first; otherwise the saved index is used.

In a terminal the interactive chat UI is started:
  Enter   - Ask the question
  Ctrl+S  - Show the retrieved context for the last question
  Ctrl+L  - Clear the conversation
  F1      - Help
  Ctrl+C  - Quit

When input is piped, or with --plain, a line-oriented prompt is used instead.
It understands /clear, /history, /help and /quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

// isTerminal reports whether the command talks to an interactive terminal.
// Replaced in tests.
var isTerminal = func(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(out.Fd())) {
		return false
	}
	in, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(in.Fd()))
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use the line prompt even in a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var pdfPath string
	if len(args) == 1 {
		pdfPath = args[0]
	}

	session, cleanup, err := prepareSession(ctx, pdfPath, func(s *driving.IndexSummary) {
		printSummary(cmd, s)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	if chatPlain || !isTerminal(cmd) {
		return runREPL(cmd, session)
	}
	return runTUI(cmd, session)
}

func runTUI(cmd *cobra.Command, session driving.ChatSession) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tui panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("chat UI crashed: %v", r)
		}
	}()

	topK := 0
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			topK = settings.Retrieval.TopK
		}
	}

	app, err := tui.NewApp(tui.NewPorts(session, topK))
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}

const replHelp = `Type a question and press Enter.
  /history  show the conversation
  /clear    clear the conversation
  /help     show this help
  /quit     exit`

// runREPL reads one question per line until EOF, /quit or cancellation.
func runREPL(cmd *cobra.Command, session driving.ChatSession) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	if doc := session.Document(); doc != "" {
		cmd.Printf("Chatting about %s. Type /help for commands.\n", doc)
	}

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			cmd.Println(replHelp)
			continue
		case "/clear":
			session.ClearHistory()
			cmd.Println("Conversation cleared.")
			continue
		case "/history":
			printHistory(out, session)
			continue
		}

		reply, err := session.Ask(ctx, line)
		if reply.Content != "" {
			printReply(cmd, reply)
			cmd.Println()
		}
		if err != nil {
			cmd.PrintErrln(FormatError(err))
		}
	}
}

func printHistory(out io.Writer, session driving.ChatSession) {
	history := session.History()
	if len(history) == 0 {
		fmt.Fprintln(out, "No messages yet.")
		return
	}
	for _, m := range history {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.Role, m.Content)
	}
}
