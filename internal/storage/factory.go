package storage

import (
	"fmt"
	"path/filepath"

	"itdash/internal/config"
	"itdash/internal/dash"
)

// NewStorageFromConfig creates a Storage implementation based on the storage config type,
// wrapped with encryption when configured.
func NewStorageFromConfig(cfg config.StorageConfig, clock dash.Clock) (dash.Storage, error) {
	var s dash.Storage
	switch cfg.Type {
	case "memory":
		s = NewMemoryStorage()
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem storage requires dir to be set")
		}
		fs, err := NewFileSystemStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		s = fs
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		db, err := NewSQLiteStorage(filepath.Join(cfg.DataDir, "itdash.db"), clock)
		if err != nil {
			return nil, err
		}
		s = db
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}

	switch cfg.Encryption.Type {
	case "", "none":
		return s, nil
	case "age":
		if cfg.Encryption.KeyPath == "" {
			s.Close()
			return nil, fmt.Errorf("age encryption requires key_path to be set")
		}
		enc, err := NewAgeStorage(s, cfg.Encryption.KeyPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating encrypted storage: %w", err)
		}
		return enc, nil
	default:
		s.Close()
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Encryption.Type)
	}
}
