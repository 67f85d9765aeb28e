package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - ITDASH_CONFIG_PATH: config file location (default: ~/.config/itdash.toml)
//   - ITDASH_HOME: base directory for itdash data (default: ~/.local/share/itdash)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"base_url":    DefaultBaseURL,
	}, nil
}

// DefaultBaseURL points at the local dev server started by "itdash devserver".
const DefaultBaseURL = "http://localhost:8000"

// getConfigPath returns the config file path, checking ITDASH_CONFIG_PATH first,
// then falling back to ~/.config/itdash.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("ITDASH_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "itdash.toml"), nil
}

// getBaseDir returns the data directory, checking ITDASH_HOME first,
// then falling back to the XDG default ~/.local/share/itdash.
func getBaseDir() (string, error) {
	if path := os.Getenv("ITDASH_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "itdash"), nil
}
