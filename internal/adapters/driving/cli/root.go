// Package cli provides the cobra command tree for pdfchat.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/core/services"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

const logFileName = "pdfchat.log"

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	configDir string
	verbose   bool

	// baseDir is the resolved application directory.
	baseDir string

	settingsService driving.SettingsService
	aiValidator     driven.AIConfigValidator

	// newChatSession builds a session from the current settings.
	// Replaced in tests.
	newChatSession = openChatSession

	logFile *logger.RotatingFile
)

var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Ask questions about a PDF document",
	Long: `pdfchat indexes a PDF and answers questions grounded in its content.

The document is extracted page by page, split into overlapping chunks,
embedded and stored in a local vector index. Each question retrieves the
most similar chunks, which an LLM uses to compose an answer that cites
the document.

Get started:
  pdfchat settings show
  pdfchat index manual.pdf
  pdfchat chat`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
	PersistentPostRun: func(*cobra.Command, []string) {
		closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "application directory (default ~/.pdfchat)")
}

// Execute runs the root command. The log file is closed even when the
// command fails, since cobra skips post-run hooks after an error.
func Execute(ctx context.Context) error {
	defer closeLog()
	return rootCmd.ExecuteContext(ctx)
}

// bootstrap wires settings and logging before any command runs.
// Services injected beforehand are kept.
func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if settingsService != nil {
		return nil
	}

	dir := configDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return fmt.Errorf("resolving application directory: %w", err)
		}
		dir = d
	}

	var store driven.ConfigStore
	store, err := file.NewConfigStore(dir)
	if err != nil {
		// Read-only homes still get defaults and environment overrides.
		logger.Warn("config: %v, settings will not be saved", err)
		store = memory.NewConfigStore()
	}
	svc := services.NewSettingsService(store, dir)
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	baseDir = dir
	settingsService = svc
	aiValidator = ai.NewConfigValidator(ai.NewFactory(settings.Google))

	if settings.Log.Dir != "" {
		logFile = logger.NewRotatingFile(
			filepath.Join(settings.Log.Dir, logFileName),
			settings.Log.MaxBytes,
			settings.Log.Backups,
		)
		logger.SetSink(logFile)
	}

	logger.Debug("application directory: %s", dir)
	return nil
}

func closeLog() {
	if logFile == nil {
		return
	}
	logger.SetSink(nil)
	_ = logFile.Close()
	logFile = nil
}
