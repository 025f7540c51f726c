package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/services"
)

const notSet = "(not set)"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, retrieval, AI providers and storage.

Settings are stored in config.toml in the application directory.
Environment variables (and a .env file) override provider secrets.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Set a setting by its dotted key, for example:
  pdfchat settings set chunking.size 800
  pdfchat settings set llm.provider ollama

Secret keys prompt for the value when it is omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all setting keys",
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers are reachable",
	RunE:  runSettingsCheck,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive provider setup",
	Long:  `Choose the embedding and LLM providers, models and credentials step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Max History: %d\n", settings.Retrieval.MaxHistory)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if dims := settings.Embedding.ResolveEmbeddingDimensions(); dims > 0 {
		cmd.Printf("  Dimensions: %d\n", dims)
	} else {
		cmd.Printf("  Dimensions: (detected on first use)\n")
	}
	cmd.Printf("  Batch Size: %d\n", settings.Embedding.BatchSize)
	printProviderAccess(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	cmd.Printf("  Max Tokens: %d\n", settings.LLM.MaxTokens)
	printProviderAccess(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	if settings.Embedding.Provider.RequiresGoogleProject() || settings.LLM.Provider.RequiresGoogleProject() {
		cmd.Println("[Google]")
		cmd.Printf("  Project: %s\n", orNotSet(settings.Google.Project))
		cmd.Printf("  Location: %s\n", settings.Google.Location)
		if settings.Google.Credentials != "" {
			cmd.Printf("  Credentials: %s\n", maskCredentials(settings.Google.Credentials))
		} else {
			cmd.Printf("  Credentials: application default\n")
		}
		cmd.Println()
	}

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", orNotSet(settings.Index.Dir))
	cmd.Printf("  Name: %s\n", settings.Index.Name)
	cmd.Println()

	cmd.Println("[Log]")
	if settings.Log.Dir != "" {
		cmd.Printf("  Directory: %s\n", settings.Log.Dir)
		cmd.Printf("  Rotation: %d bytes x %d backups\n", settings.Log.MaxBytes, settings.Log.Backups)
	} else {
		cmd.Printf("  Directory: (disabled)\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pdfchat settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProviderAccess(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if provider.IsLocal() || baseURL != "" {
		cmd.Printf("  Base URL: %s\n", orNotSet(baseURL))
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: %s\n", notSet)
		}
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !services.IsSecret(key) {
			return fmt.Errorf("%w: a value is required for %s", domain.ErrInvalidInput, key)
		}
		cmd.Printf("Enter %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if services.IsSecret(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.Reset(args[0]); err != nil {
		return err
	}
	cmd.Printf("Reset %s to its default\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || aiValidator == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var failed error
	cmd.Printf("Embedding (%s, %s)... ", settings.Embedding.Provider, settings.Embedding.Model)
	if err := aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = errors.Join(failed, err)
	} else {
		cmd.Println("OK")
	}

	cmd.Printf("LLM (%s, %s)... ", settings.LLM.Provider, settings.LLM.Model)
	if err := aiValidator.ValidateLLM(&settings.LLM); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = errors.Join(failed, err)
	} else {
		cmd.Println("OK")
	}

	return failed
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	cmd.Println("pdfchat Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	embedding, err := configureProvider(cmd, reader, in, "embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	llm, err := configureProvider(cmd, reader, in, "llm",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if embedding.RequiresGoogleProject() || llm.RequiresGoogleProject() {
		cmd.Println("Step 3: Google Cloud")
		cmd.Println("--------------------")
		if err := configureGoogle(cmd, reader); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// configureProvider asks for a provider, model and API key under prefix.
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	in io.Reader,
	prefix string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, error) {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if err := settingsService.Set(prefix+".provider", provider.String()); err != nil {
		return "", err
	}
	if err := settingsService.Set(prefix+".model", model); err != nil {
		return "", err
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readSecret(reader, in)
		cmd.Println()
		if apiKey == "" {
			return "", errors.New("API key is required for this provider")
		}
		if err := settingsService.Set(prefix+".api_key", apiKey); err != nil {
			return "", err
		}
	}

	cmd.Printf("Configured %s: %s (%s)\n\n", prefix, provider.Description(), model)
	return provider, nil
}

func configureGoogle(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Printf("Enter project ID [%s]: ", settings.Google.Project)
	if project := readLine(reader); project != "" {
		if err := settingsService.Set("google.project", project); err != nil {
			return err
		}
	}

	cmd.Printf("Enter location [%s]: ", settings.Google.Location)
	if location := readLine(reader); location != "" {
		if err := settingsService.Set("google.location", location); err != nil {
			return err
		}
	}

	cmd.Print("Service account key file (empty for application default credentials): ")
	if creds := readLine(reader); creds != "" {
		if err := settingsService.Set("google.credentials", creds); err != nil {
			return err
		}
	}
	cmd.Println()
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo from a terminal, else a line from reader.
func readSecret(reader *bufio.Reader, in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func readPassword(in io.Reader) string {
	return readSecret(bufio.NewReader(in), in)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskCredentials shows key file paths but hides inline key material.
func maskCredentials(creds string) string {
	if _, err := os.Stat(creds); err == nil {
		return creds
	}
	return "(inline key)"
}
