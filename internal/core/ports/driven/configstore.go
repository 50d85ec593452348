package driven

// ConfigStore is the persistent settings file behind "repoqa config".
// Typed getters return the zero value when a key is missing or cannot be
// converted; environment overrides are applied later by internal/config.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and writes the file.
	Set(key string, value any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns every stored key, sorted.
	Keys() []string

	Save() error
	Load() error

	// Path is where the settings file lives.
	Path() string
}
