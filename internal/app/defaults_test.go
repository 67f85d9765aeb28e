package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("ITDASH_CONFIG_PATH", "/custom/itdash.toml")
		t.Setenv("ITDASH_HOME", "/custom/itdash")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/itdash.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/itdash.toml")
		}
		if defaults["base_dir"] != "/custom/itdash" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/itdash")
		}
		if defaults["log_dir"] != "/custom/itdash/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/itdash/log")
		}
		if defaults["base_url"] != DefaultBaseURL {
			t.Errorf("base_url = %q, want %q", defaults["base_url"], DefaultBaseURL)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("ITDASH_CONFIG_PATH", "")
		t.Setenv("ITDASH_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "itdash.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "itdash")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
	})
}
