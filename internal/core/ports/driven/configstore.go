package driven

// ConfigStore persists flat, dotted-key settings such as "chunking.size".
// Values are strings, integers or floats; typed interpretation is left to
// the settings service.
type ConfigStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (any, bool)

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Load re-reads the backing storage.
	Load() error

	// Path describes where the configuration lives.
	Path() string
}
