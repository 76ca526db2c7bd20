package config

import (
	"os"
	"path/filepath"
)

// HomePath returns the root directory for tasktrack settings.
// It uses $TASKTRACK_PATH if set, otherwise defaults to ~/.tasktrack.
func HomePath() string {
	if v := os.Getenv("TASKTRACK_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tasktrack")
	}
	return filepath.Join(home, ".tasktrack")
}

// ConfigPath returns the path to the tasktrack config file.
func ConfigPath() string {
	return filepath.Join(HomePath(), "config.jsonc")
}

// DotenvPath returns the path to the tasktrack .env file.
func DotenvPath() string {
	return filepath.Join(HomePath(), ".env")
}
