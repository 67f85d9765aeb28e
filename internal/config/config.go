package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

// DefaultPageSize is the number of rows shown per page when page_size is unset.
const DefaultPageSize = 5

// Config represents the main configuration for itdash.
type Config struct {
	BaseURL  string `toml:"base_url"`
	BaseDir  string `toml:"base_dir"`
	LogDir   string `toml:"log_dir"`
	LogLevel string `toml:"log_level"` // "debug", "info", "warn" (default) or "error"
	PageSize int    `toml:"page_size"`

	// Endpoints overrides the path of individual collections, keyed by
	// resource name. Relative values are joined onto BaseURL; absolute URLs
	// are used as-is.
	Endpoints map[string]string `toml:"endpoints,omitempty"`

	Storage StorageConfig `toml:"storage"`
}

// StorageConfig represents configuration for durable client storage.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type    string `toml:"type"`               // "memory", "filesystem" or "sqlite"
	Dir     string `toml:"dir,omitempty"`      // only used for type=filesystem
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite

	Encryption EncryptionConfig `toml:"encryption"`
}

// EncryptionConfig controls encryption of stored values at rest.
type EncryptionConfig struct {
	Type    string `toml:"type"`               // "none" (default) or "age"
	KeyPath string `toml:"key_path,omitempty"` // age identity file; only used for type=age
}

// envOverrides are the settings that may be supplied through the environment.
type envOverrides struct {
	BaseURL  string `env:"ITDASH_BASE_URL"`
	LogLevel string `env:"ITDASH_LOG_LEVEL"`
	PageSize int    `env:"ITDASH_PAGE_SIZE"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(baseURL, baseDir string) *Config {
	return &Config{
		BaseURL:  baseURL,
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "warn",
		PageSize: DefaultPageSize,
		Storage: StorageConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "storage"),
			Encryption: EncryptionConfig{
				Type:    "none",
				KeyPath: filepath.Join(baseDir, "keys", "storage.key"),
			},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment settings onto cfg. Unset variables leave the
// file values alone. lookuper may be nil to read the process environment.
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &env, Lookuper: lookuper}); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}

	if env.BaseURL != "" {
		cfg.BaseURL = env.BaseURL
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.PageSize != 0 {
		cfg.PageSize = env.PageSize
	}
	return nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", c.PageSize)
	}
	return nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
