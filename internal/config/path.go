// Package config reads application settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// Dir returns the directory holding the config file and the default database.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "foodsales")
	}
	return filepath.Join(home, ".config", "foodsales")
}

// DefaultDatabasePath is where imported datasets are stored unless
// database.path says otherwise.
func DefaultDatabasePath() string {
	return filepath.Join(Dir(), "foodsales.db")
}
