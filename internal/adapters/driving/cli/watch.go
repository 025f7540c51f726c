package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/watcher"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-index whenever a PDF in a directory changes",
	Long: `Watch a directory and index each PDF that is created or rewritten there.
The most recent PDF replaces the saved index. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// newFileWatcher creates the directory watcher. Replaced in tests.
var newFileWatcher = func() driven.FileWatcher {
	return watcher.New()
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New(dir + " is not a directory")
	}

	session, cleanup, err := newChatSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	events, err := newFileWatcher().Watch(ctx, dir)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for PDF changes (Ctrl+C to stop)\n", dir)
	for ev := range events {
		if ev.Type == driven.FileRemoved {
			logger.Info("watch: %s removed", ev.Path)
			continue
		}

		cmd.Printf("%s %s, indexing...\n", ev.Path, ev.Type)
		summary, err := session.Process(ctx, ev.Path)
		switch {
		case errors.Is(err, domain.ErrBuildInProgress):
			logger.Warn("watch: skipped %s, build in progress", ev.Path)
		case err != nil:
			logger.Error("watch: indexing %s: %v", ev.Path, err)
			cmd.PrintErrln(FormatError(err))
		default:
			printSummary(cmd, summary)
		}
	}
	return nil
}
