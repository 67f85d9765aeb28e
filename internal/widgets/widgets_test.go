package widgets

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"itdash/internal/dash"
	"itdash/internal/storage"
	"itdash/internal/testutil"
)

func TestLayout_Move(t *testing.T) {
	tests := []struct {
		name    string
		from    int
		to      int
		want    []string
		wantErr bool
	}{
		{name: "forward", from: 0, to: 2, want: []string{"b", "c", "a", "d"}},
		{name: "backward", from: 3, to: 1, want: []string{"a", "d", "b", "c"}},
		{name: "to end", from: 0, to: 3, want: []string{"b", "c", "d", "a"}},
		{name: "same position", from: 2, to: 2, want: []string{"a", "b", "c", "d"}},
		{name: "from out of range", from: 4, to: 0, wantErr: true},
		{name: "negative target", from: 0, to: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Layout{Widgets: []string{"a", "b", "c", "d"}}
			err := l.Move(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Move() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !slices.Equal(l.Widgets, []string{"a", "b", "c", "d"}) {
					t.Errorf("failed Move() changed layout to %v", l.Widgets)
				}
				return
			}
			if !slices.Equal(l.Widgets, tt.want) {
				t.Errorf("Move(%d, %d) = %v, want %v", tt.from, tt.to, l.Widgets, tt.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStorage(t)
	store := NewStore(st, dash.NewNopLogger())

	l, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(l.Widgets, DefaultOrder) {
		t.Errorf("Load() = %v, want default order", l.Widgets)
	}

	moved, err := store.Move(ctx, 4, 0)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	want := []string{"announcements", "projects", "tasks", "members", "events"}
	if !slices.Equal(moved.Widgets, want) {
		t.Errorf("Move() = %v, want %v", moved.Widgets, want)
	}

	reloaded, err := NewStore(st, dash.NewNopLogger()).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(reloaded.Widgets, want) {
		t.Errorf("reloaded layout = %v, want %v", reloaded.Widgets, want)
	}

	if DefaultOrder[0] != "projects" {
		t.Error("Move() mutated DefaultOrder")
	}
}

func TestStore_UnreadableLayout(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStorage(t)
	if err := st.Set(ctx, StorageKey, []byte("[oops")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	l, err := NewStore(st, dash.NewNopLogger()).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(l.Widgets, DefaultOrder) {
		t.Errorf("Load() = %v, want default order", l.Widgets)
	}
}

func TestStore_UndecryptableLayout(t *testing.T) {
	ctx := context.Background()
	plain := testutil.NewTestStorage(t)
	if err := plain.Set(ctx, StorageKey, []byte(`{"widgets":["tasks"]}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	encrypted, err := storage.NewAgeStorage(plain, filepath.Join(t.TempDir(), "storage.key"))
	if err != nil {
		t.Fatalf("NewAgeStorage() error = %v", err)
	}

	l, err := NewStore(encrypted, dash.NewNopLogger()).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(l.Widgets, DefaultOrder) {
		t.Errorf("Load() = %v, want default order", l.Widgets)
	}
}
