package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"itdash/internal/dash"
)

// AgeStorage encrypts values with an X25519 age identity before handing them
// to the wrapped storage. The identity lives unencrypted in keyPath with 0600
// permissions so the client can start without prompting.
type AgeStorage struct {
	inner    dash.Storage
	identity *age.X25519Identity
}

// NewAgeStorage wraps inner. The identity at keyPath is generated on first use.
func NewAgeStorage(inner dash.Storage, keyPath string) (*AgeStorage, error) {
	identity, err := loadOrCreateIdentity(keyPath)
	if err != nil {
		return nil, err
	}
	return &AgeStorage{inner: inner, identity: identity}, nil
}

func (s *AgeStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ciphertext, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, false, fmt.Errorf("decrypting %s: %w: %w", key, dash.ErrUnreadable, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("reading decrypted %s: %w: %w", key, dash.ErrUnreadable, err)
	}
	return plaintext, true, nil
}

func (s *AgeStorage) Set(ctx context.Context, key string, value []byte) error {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(value); err != nil {
		return fmt.Errorf("encrypting %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return s.inner.Set(ctx, key, buf.Bytes())
}

func (s *AgeStorage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *AgeStorage) Close() error {
	return s.inner.Close()
}

// loadOrCreateIdentity reads the age identity at path, generating and
// writing a new one if the file does not exist.
func loadOrCreateIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing storage key %s: %w", path, err)
		}
		return identity, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading storage key: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating storage key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing storage key: %w", err)
	}
	return identity, nil
}

// Compile-time check that AgeStorage implements dash.Storage interface
var _ dash.Storage = (*AgeStorage)(nil)
