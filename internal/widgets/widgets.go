// Package widgets keeps the user's order of dashboard widgets.
package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"itdash/internal/dash"
)

// StorageKey is the key the layout is persisted under.
const StorageKey = "itdash.dashboard.widgets"

// DefaultOrder is the layout used until the user reorders it.
var DefaultOrder = []string{"projects", "tasks", "members", "events", "announcements"}

// Layout is an ordered list of widget names.
type Layout struct {
	Widgets []string `json:"widgets"`
}

// DefaultLayout returns a fresh copy of DefaultOrder.
func DefaultLayout() Layout {
	return Layout{Widgets: slices.Clone(DefaultOrder)}
}

// Move takes the widget at index from and inserts it at index to, the way
// a drag and drop reorder does. Both indexes are zero based.
func (l *Layout) Move(from, to int) error {
	n := len(l.Widgets)
	if from < 0 || from >= n {
		return fmt.Errorf("widget position %d out of range [0, %d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("target position %d out of range [0, %d)", to, n)
	}
	if from == to {
		return nil
	}
	w := l.Widgets[from]
	l.Widgets = slices.Delete(l.Widgets, from, from+1)
	l.Widgets = slices.Insert(l.Widgets, to, w)
	return nil
}

// Store loads and saves the layout.
type Store struct {
	storage dash.Storage
	logger  dash.Logger
}

func NewStore(storage dash.Storage, logger dash.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Load returns the saved layout, or the default when none is saved or the
// saved one cannot be read.
func (s *Store) Load(ctx context.Context) (Layout, error) {
	data, ok, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, dash.ErrUnreadable) {
		s.logger.Warn("ignoring undecryptable widget layout", "error", err)
		return DefaultLayout(), nil
	}
	if err != nil {
		return Layout{}, fmt.Errorf("reading widget layout: %w", err)
	}
	if !ok {
		return DefaultLayout(), nil
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil || len(l.Widgets) == 0 {
		s.logger.Warn("ignoring unreadable widget layout", "error", err)
		return DefaultLayout(), nil
	}
	return l, nil
}

// Save persists l.
func (s *Store) Save(ctx context.Context, l Layout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding widget layout: %w", err)
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("saving widget layout: %w", err)
	}
	return nil
}

// Move loads the layout, applies Move and saves the result.
func (s *Store) Move(ctx context.Context, from, to int) (Layout, error) {
	l, err := s.Load(ctx)
	if err != nil {
		return Layout{}, err
	}
	if err := l.Move(from, to); err != nil {
		return Layout{}, err
	}
	if err := s.Save(ctx, l); err != nil {
		return Layout{}, err
	}
	s.logger.Debug("widget moved", "from", from, "to", to, "layout", l.Widgets)
	return l, nil
}
