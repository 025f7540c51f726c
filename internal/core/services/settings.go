package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyTopK            = "retrieval.top_k"
	keyMaxHistory      = "retrieval.max_history"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedBatch      = "embedding.batch_size"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyGoogleProject   = "google.project"
	keyGoogleLocation  = "google.location"
	keyGoogleCreds     = "google.credentials"
	keyIndexDir        = "index.dir"
	keyIndexName       = "index.name"
	keyLogDir          = "log.dir"
	keyLogMaxBytes     = "log.max_bytes"
	keyLogBackups      = "log.backups"
	defaultOllamaHost  = "http://localhost:11434"
	settingsIndexDir   = "index"
	settingsLogDir     = "logs"
	envEmbedProvider   = "PDFCHAT_EMBEDDING_PROVIDER"
	envLLMProvider     = "PDFCHAT_LLM_PROVIDER"
	envOpenAIKey       = "OPENAI_API_KEY"
	envAnthropicKey    = "ANTHROPIC_API_KEY"
	envOllamaHost      = "OLLAMA_HOST"
	envGoogleCredsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindProvider
)

type settingDef struct {
	key  string
	kind settingKind
	// env lists environment variables that override the stored value, first set wins.
	env []string
}

var settingDefs = []settingDef{
	{key: keyChunkSize, kind: kindInt},
	{key: keyChunkOverlap, kind: kindInt},
	{key: keyTopK, kind: kindInt},
	{key: keyMaxHistory, kind: kindInt},
	{key: keyEmbedProvider, kind: kindProvider, env: []string{envEmbedProvider}},
	{key: keyEmbedModel, kind: kindString, env: []string{"EMBEDDING_MODEL"}},
	{key: keyEmbedBaseURL, kind: kindString},
	{key: keyEmbedAPIKey, kind: kindString},
	{key: keyEmbedDims, kind: kindInt},
	{key: keyEmbedBatch, kind: kindInt},
	{key: keyEmbedRPS, kind: kindFloat},
	{key: keyLLMProvider, kind: kindProvider, env: []string{envLLMProvider}},
	{key: keyLLMModel, kind: kindString, env: []string{"MODEL_NAME"}},
	{key: keyLLMBaseURL, kind: kindString},
	{key: keyLLMAPIKey, kind: kindString},
	{key: keyLLMTemperature, kind: kindFloat, env: []string{"TEMPERATURE"}},
	{key: keyLLMMaxTokens, kind: kindInt, env: []string{"MAX_OUTPUT_TOKENS"}},
	{key: keyGoogleProject, kind: kindString, env: []string{"GOOGLE_CLOUD_PROJECT", "PROJECT_ID"}},
	{key: keyGoogleLocation, kind: kindString, env: []string{"VERTEX_AI_LOCATION", "LOCATION"}},
	{key: keyGoogleCreds, kind: kindString, env: []string{envGoogleCredsFile, "GOOGLE_CREDENTIALS_B64", "GOOGLE_CREDENTIALS_JSON"}},
	{key: keyIndexDir, kind: kindString},
	{key: keyIndexName, kind: kindString, env: []string{"VECTOR_STORE_INDEX_NAME"}},
	{key: keyLogDir, kind: kindString},
	{key: keyLogMaxBytes, kind: kindInt},
	{key: keyLogBackups, kind: kindInt},
}

// SettingsService manages application settings.
// Values resolve in order: defaults, config file, environment.
type SettingsService struct {
	configStore driven.ConfigStore
	baseDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service. baseDir anchors the
// default index and log directories.
func NewSettingsService(configStore driven.ConfigStore, baseDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		baseDir:     baseDir,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Useful for testing.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	s.lookupEnv = fn
}

// Get retrieves current application settings, including environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.GetDefaults()

	settings.Chunking.Size = s.getInt(keyChunkSize, settings.Chunking.Size)
	settings.Chunking.Overlap = s.getInt(keyChunkOverlap, settings.Chunking.Overlap)
	settings.Retrieval.TopK = s.getInt(keyTopK, settings.Retrieval.TopK)
	settings.Retrieval.MaxHistory = s.getInt(keyMaxHistory, settings.Retrieval.MaxHistory)

	settings.Embedding.Provider = s.getProvider(keyEmbedProvider, settings.Embedding.Provider)
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.Embedding.BaseURL = s.getString(keyEmbedBaseURL, "")
	settings.Embedding.APIKey = s.getString(keyEmbedAPIKey, "")
	settings.Embedding.Dimensions = s.getInt(keyEmbedDims, 0)
	settings.Embedding.BatchSize = s.getInt(keyEmbedBatch, settings.Embedding.BatchSize)
	settings.Embedding.RequestsPerSecond = s.getFloat(keyEmbedRPS, settings.Embedding.RequestsPerSecond)

	settings.LLM.Provider = s.getProvider(keyLLMProvider, settings.LLM.Provider)
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	settings.LLM.BaseURL = s.getString(keyLLMBaseURL, "")
	settings.LLM.APIKey = s.getString(keyLLMAPIKey, "")
	settings.LLM.Temperature = s.getFloat(keyLLMTemperature, settings.LLM.Temperature)
	settings.LLM.MaxTokens = s.getInt(keyLLMMaxTokens, settings.LLM.MaxTokens)

	settings.Google.Project = s.getString(keyGoogleProject, "")
	settings.Google.Location = s.getString(keyGoogleLocation, settings.Google.Location)
	settings.Google.Credentials = s.getString(keyGoogleCreds, "")

	settings.Index.Dir = s.getString(keyIndexDir, settings.Index.Dir)
	settings.Index.Name = s.getString(keyIndexName, settings.Index.Name)
	settings.Log.Dir = s.getString(keyLogDir, settings.Log.Dir)
	settings.Log.MaxBytes = int64(s.getInt(keyLogMaxBytes, int(settings.Log.MaxBytes)))
	settings.Log.Backups = s.getInt(keyLogBackups, settings.Log.Backups)

	s.applyProviderEnv(&settings)

	return &settings, nil
}

// applyProviderEnv fills provider-specific secrets and hosts from the environment.
func (s *SettingsService) applyProviderEnv(settings *domain.AppSettings) {
	apiKeyFor := func(p domain.AIProvider) string {
		switch p {
		case domain.AIProviderOpenAI:
			v, _ := s.lookupEnv(envOpenAIKey)
			return v
		case domain.AIProviderAnthropic:
			v, _ := s.lookupEnv(envAnthropicKey)
			return v
		default:
			return ""
		}
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = apiKeyFor(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = apiKeyFor(settings.LLM.Provider)
	}

	host, ok := s.lookupEnv(envOllamaHost)
	if !ok || host == "" {
		host = defaultOllamaHost
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = host
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = host
	}
}

// Set updates a single setting by its dotted key and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupDef(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch def.kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(strings.TrimSpace(value)))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && !supportsEmbedding(p) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
		stored = p.String()
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reset removes a stored setting so its default applies again.
func (s *SettingsService) Reset(key string) error {
	if _, ok := lookupDef(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Keys returns all recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingDefs))
	for i, d := range settingDefs {
		keys[i] = d.key
	}
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !supportsEmbedding(settings.Embedding.Provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured", domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not configured", domain.ErrConfiguration, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings with directories under the base directory.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	if s.baseDir != "" {
		settings.Index.Dir = filepath.Join(s.baseDir, settingsIndexDir)
		settings.Log.Dir = filepath.Join(s.baseDir, settingsLogDir)
	}
	return settings
}

// IsSecret reports whether a key holds credentials that should be masked.
func IsSecret(key string) bool {
	return key == keyEmbedAPIKey || key == keyLLMAPIKey || key == keyGoogleCreds
}

func lookupDef(key string) (settingDef, bool) {
	for _, d := range settingDefs {
		if d.key == key {
			return d, true
		}
	}
	return settingDef{}, false
}

func supportsEmbedding(p domain.AIProvider) bool {
	for _, e := range domain.AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// Helper methods for reading config with defaults.

// raw returns the environment override or the stored value for key.
func (s *SettingsService) raw(key string) (any, bool) {
	if def, ok := lookupDef(key); ok {
		for _, name := range def.env {
			if v, ok := s.lookupEnv(name); ok && v != "" {
				return v, true
			}
		}
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	str, ok := val.(string)
	if !ok || str == "" {
		return defaultVal
	}
	return str
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(key, "")
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
