package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseURL:  "https://dash.example.com/api",
		BaseDir:  "/home/user/.local/share/itdash",
		LogDir:   "/home/user/.local/share/itdash/log",
		LogLevel: "debug",
		PageSize: 10,
		Endpoints: map[string]string{
			"clients": "https://crm.example.com/api/clients",
		},
		Storage: StorageConfig{
			Type:    "sqlite",
			DataDir: "/home/user/.local/share/itdash/db",
			Encryption: EncryptionConfig{
				Type:    "age",
				KeyPath: "/home/user/.local/share/itdash/keys/storage.key",
			},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseURL != original.BaseURL {
		t.Errorf("BaseURL = %q, want %q", got.BaseURL, original.BaseURL)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.PageSize != 10 {
		t.Errorf("PageSize = %d, want %d", got.PageSize, 10)
	}
	if got.Endpoints["clients"] != original.Endpoints["clients"] {
		t.Errorf("Endpoints[clients] = %q, want %q", got.Endpoints["clients"], original.Endpoints["clients"])
	}
	if got.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "sqlite")
	}
	if got.Storage.DataDir != original.Storage.DataDir {
		t.Errorf("Storage.DataDir = %q, want %q", got.Storage.DataDir, original.Storage.DataDir)
	}
	if got.Storage.Encryption.Type != "age" {
		t.Errorf("Storage.Encryption.Type = %q, want %q", got.Storage.Encryption.Type, "age")
	}
	if got.Storage.Encryption.KeyPath != original.Storage.Encryption.KeyPath {
		t.Errorf("Storage.Encryption.KeyPath = %q, want %q", got.Storage.Encryption.KeyPath, original.Storage.Encryption.KeyPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("http://localhost:8000/api", "/data/itdash")

	if cfg.BaseURL != "http://localhost:8000/api" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8000/api")
	}
	if cfg.LogDir != "/data/itdash/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/itdash/log")
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.Storage.Type != "filesystem" {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, "filesystem")
	}
	if cfg.Storage.Dir != "/data/itdash/storage" {
		t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, "/data/itdash/storage")
	}
	if cfg.Storage.Encryption.KeyPath != "/data/itdash/keys/storage.key" {
		t.Errorf("Storage.Encryption.KeyPath = %q, want %q", cfg.Storage.Encryption.KeyPath, "/data/itdash/keys/storage.key")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides set values", func(t *testing.T) {
		cfg := NewConfig("http://localhost:8000/api", "/data/itdash")
		lookuper := envconfig.MapLookuper(map[string]string{
			"ITDASH_BASE_URL":  "https://dash.example.com/api",
			"ITDASH_LOG_LEVEL": "debug",
			"ITDASH_PAGE_SIZE": "20",
		})

		if err := ApplyEnv(context.Background(), cfg, lookuper); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.BaseURL != "https://dash.example.com/api" {
			t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "https://dash.example.com/api")
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
		}
		if cfg.PageSize != 20 {
			t.Errorf("PageSize = %d, want %d", cfg.PageSize, 20)
		}
	})

	t.Run("leaves file values when unset", func(t *testing.T) {
		cfg := NewConfig("http://localhost:8000/api", "/data/itdash")
		lookuper := envconfig.MapLookuper(map[string]string{})

		if err := ApplyEnv(context.Background(), cfg, lookuper); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.BaseURL != "http://localhost:8000/api" {
			t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8000/api")
		}
		if cfg.PageSize != DefaultPageSize {
			t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
		}
	})

	t.Run("rejects malformed page size", func(t *testing.T) {
		cfg := NewConfig("http://localhost:8000/api", "/data/itdash")
		lookuper := envconfig.MapLookuper(map[string]string{"ITDASH_PAGE_SIZE": "many"})

		if err := ApplyEnv(context.Background(), cfg, lookuper); err == nil {
			t.Fatal("ApplyEnv() expected error for malformed page size")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{BaseURL: "http://localhost:8000/api", PageSize: 5}},
		{name: "missing base url", cfg: Config{PageSize: 5}, wantErr: true},
		{name: "negative page size", cfg: Config{BaseURL: "http://x", PageSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "itdash.toml")
		cfg := NewConfig("http://localhost:8000/api", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "itdash.toml")
		cfg := NewConfig("http://localhost:8000/api", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "itdash.toml")
		cfg := NewConfig("http://read-test/api", dir)
		cfg.Storage = StorageConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseURL != "http://read-test/api" {
			t.Errorf("BaseURL = %q, want %q", got.BaseURL, "http://read-test/api")
		}
		if got.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %q, want %q", got.Storage.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/itdash.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
