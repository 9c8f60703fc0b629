package config

// StorageConfig configures the local session store.
type StorageConfig struct {
	// DatabasePath is the SQLite file holding sessions and cached turns.
	// Relative paths are resolved against the workspace.
	DatabasePath string `yaml:"database_path"`
}
