package config

import (
	"path/filepath"
	"strings"
)

// UploadConfig configures file upload validation.
type UploadConfig struct {
	// AllowedExtensions is the whitelist of file extensions (with dot,
	// lowercase) accepted for upload.
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// MaxSizeBytes is the maximum accepted file size. Zero means unlimited.
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
}

// ExtensionAllowed reports whether the file's extension is on the whitelist.
// An empty whitelist accepts everything.
func (u UploadConfig) ExtensionAllowed(name string) bool {
	if len(u.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range u.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
