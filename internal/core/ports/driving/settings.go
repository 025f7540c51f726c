package driving

import "github.com/custodia-labs/pdfchat/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Set updates a single setting by its dotted key and persists it.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies again.
	Reset(key string) error

	// Keys returns all recognised setting keys in display order.
	Keys() []string

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
