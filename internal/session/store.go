// Package session holds the authenticated identity of the dashboard user and
// persists it in durable client storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"itdash/internal/dash"
)

// StorageKey is the fixed key the identity is persisted under.
const StorageKey = "itdash.identity"

// State is the observable authentication state of a Store.
type State int

const (
	// StateRestoring means the stored identity has not been read yet.
	StateRestoring State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Store owns the single active Identity. It starts in StateRestoring and
// moves to authenticated or unauthenticated once Restore has read storage.
// Store is safe for concurrent use.
type Store struct {
	storage dash.Storage
	clock   dash.Clock
	logger  dash.Logger

	mu        sync.RWMutex
	state     State
	identity  *Identity
	listeners []func(State)
}

// NewStore creates a Store backed by storage. Call Restore before relying on State.
func NewStore(storage dash.Storage, clock dash.Clock, logger dash.Logger) *Store {
	return &Store{
		storage: storage,
		clock:   clock,
		logger:  logger,
		state:   StateRestoring,
	}
}

// Restore reads the persisted identity. A missing record leaves the store
// unauthenticated. A record that cannot be decrypted or decoded is removed
// and also treated as logged out.
func (s *Store) Restore(ctx context.Context) error {
	data, ok, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, dash.ErrUnreadable) {
		s.logger.Warn("discarding undecryptable stored identity", "error", err)
		if err := s.storage.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("clearing stored identity: %w", err)
		}
		s.set(StateUnauthenticated, nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading stored identity: %w", err)
	}

	var identity *Identity
	if ok {
		var stored Identity
		if err := json.Unmarshal(data, &stored); err != nil || stored.Username == "" {
			s.logger.Warn("discarding unreadable stored identity", "error", err)
			if err := s.storage.Delete(ctx, StorageKey); err != nil {
				return fmt.Errorf("clearing stored identity: %w", err)
			}
		} else {
			identity = &stored
		}
	}

	if identity != nil {
		s.logger.Debug("session restored", "username", identity.Username, "role", identity.Role)
		s.set(StateAuthenticated, identity)
	} else {
		s.set(StateUnauthenticated, nil)
	}
	return nil
}

// Login checks username and password against the credential table. On
// success the identity is persisted, becomes current and is returned. On
// failure dash.ErrInvalidCredentials is returned and the current identity
// is left unchanged.
func (s *Store) Login(ctx context.Context, username, password string) (*Identity, error) {
	cred, ok := credentials[username]
	if !ok || cred.password != password {
		s.logger.Info("login rejected", "username", username)
		return nil, dash.ErrInvalidCredentials
	}

	identity := &Identity{
		Username:    username,
		Role:        cred.role,
		Permissions: cred.permissions(),
		LoggedInAt:  s.clock.Now().UTC(),
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("encoding identity: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return nil, fmt.Errorf("persisting identity: %w", err)
	}

	s.logger.Info("logged in", "username", username, "role", identity.Role)
	s.set(StateAuthenticated, identity)
	return identity.clone(), nil
}

// Logout clears the identity from storage and memory.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clearing stored identity: %w", err)
	}
	if current := s.CurrentIdentity(); current != nil {
		s.logger.Info("logged out", "username", current.Username)
	}
	s.set(StateUnauthenticated, nil)
	return nil
}

// State returns the current authentication state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentIdentity returns a copy of the active identity, or nil.
func (s *Store) CurrentIdentity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.clone()
}

// HasPermission reports whether the active identity is granted name.
// It is false when nobody is logged in.
func (s *Store) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.HasPermission(name)
}

// OnChange registers fn to be called after every state change.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) set(state State, identity *Identity) {
	s.mu.Lock()
	s.state = state
	s.identity = identity
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
