package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itdash/internal/config"
	"itdash/internal/dash"
	"itdash/internal/devserver"
	"itdash/internal/model"
	"itdash/internal/session"
	"itdash/internal/storage"
	"itdash/internal/testutil"
)

type testEnv struct {
	cfg      *config.Config
	backend  *devserver.Server
	notifier *testutil.RecordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	names := make([]string, 0, len(model.Catalog))
	for _, r := range model.Catalog {
		names = append(names, r.Name)
	}
	backend := devserver.New(names, dash.NewNopLogger())
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		cfg:      config.NewConfig(ts.URL, t.TempDir()),
		backend:  backend,
		notifier: testutil.NewRecordingNotifier(),
	}
}

// open starts a DashApp against the env, as one CLI invocation would.
func (e *testEnv) open(t *testing.T) *DashApp {
	t.Helper()
	a, err := NewDashApp(context.Background(), e.cfg, "Test", "", Options{
		Clock:    testutil.FixedClock(),
		IDs:      testutil.NewStubIDGenerator(),
		Notifier: e.notifier,
		Stderr:   io.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(nil) })
	return a
}

func TestRegistry_CoversCatalog(t *testing.T) {
	for _, r := range model.Catalog {
		_, ok := registry[r.Name]
		assert.True(t, ok, "no record type registered for %s", r.Name)
	}
	assert.Len(t, registry, len(model.Catalog))
}

func TestDashApp_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	a := env.open(t)
	ctx := context.Background()

	_, err := a.List(ctx, "tasks", "", 1)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = a.Dashboard(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = a.Whoami()
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestDashApp_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.open(t)
	_, err := a.Login(ctx, "admin", "nope")
	assert.ErrorIs(t, err, dash.ErrInvalidCredentials)
	note, ok := env.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, dash.NotifyError, note.Kind)

	identity, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)

	// A second invocation restores the session from storage.
	b := env.open(t)
	who, err := b.Whoami()
	require.NoError(t, err)
	assert.Equal(t, "admin", who.Username)

	_, err = b.Login(ctx, "member", "member")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)

	require.NoError(t, b.Logout(ctx))
	c := env.open(t)
	_, err = c.Whoami()
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestDashApp_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.open(t)
	_, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	row, err := a.Create(ctx, "clients", map[string]string{
		"name": "Acme", "email": "it@acme.example", "phone": "555-0100",
		"company": "Acme Corp", "address": "1 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", row[0])

	_, err = a.Create(ctx, "clients", map[string]string{"name": "NoEmail"})
	assert.ErrorIs(t, err, dash.ErrValidation)

	page, err := a.List(ctx, "clients", "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY"}, page.Header)

	_, changed, err := a.Update(ctx, "clients", 1, map[string]string{"company": "Acme Corp"})
	require.NoError(t, err)
	assert.False(t, changed)

	row, changed, err = a.Update(ctx, "clients", 1, map[string]string{"company": "Acme Ltd"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Acme Ltd", row[4])

	require.NoError(t, a.Delete(ctx, "clients", 1))
	page, err = a.List(ctx, "clients", "", 1)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	for _, page := range []int{3, 0, -3} {
		_, err = a.List(ctx, "clients", "", page)
		assert.ErrorContains(t, err, "out of range", "page %d", page)
	}

	_, err = a.List(ctx, "gadgets", "", 1)
	assert.Error(t, err)
}

func TestDashApp_ListSearchAndPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := range 12 {
		title := "Patch"
		if i%3 == 0 {
			title = "Rotate"
		}
		require.NoError(t, env.backend.Seed("tasks", devserver.Record{"title": title, "assignedto": "sam"}))
	}

	a := env.open(t)
	_, err := a.Login(ctx, "member", "member")
	require.NoError(t, err)

	page, err := a.List(ctx, "tasks", "", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Rows, 2)

	page, err = a.List(ctx, "tasks", "rotate", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDashApp_MemberPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.backend.Seed("tasks", devserver.Record{"title": "Patch"}))

	a := env.open(t)
	_, err := a.Login(ctx, "member", "member")
	require.NoError(t, err)

	err = a.Delete(ctx, "tasks", 1)
	assert.ErrorIs(t, err, dash.ErrPermissionDenied)

	_, err = a.List(ctx, "clients", "", 1)
	assert.ErrorIs(t, err, dash.ErrPermissionDenied)

	names := map[string]bool{}
	for _, r := range a.Resources() {
		names[r.Name] = true
	}
	assert.True(t, names["tasks"])
	assert.False(t, names["clients"])
}

func TestDashApp_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.backend.Seed("projects", devserver.Record{"name": "Migration"}, devserver.Record{"name": "Audit"}))

	a := env.open(t)
	_, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	widgets, err := a.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, widgets, 5)
	assert.Equal(t, "projects", widgets[0].Name)
	assert.Equal(t, 2, widgets[0].Count)
	assert.NoError(t, widgets[0].Err)

	layout, err := a.MoveWidget(ctx, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, "projects", layout.Widgets[4])

	b := env.open(t)
	widgets, err = b.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "projects", widgets[4].Name)
}

func TestDashApp_Calendar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.backend.Seed("events",
		devserver.Record{"title": "Patch night", "date": "2024-03-05"},
		devserver.Record{"title": "Offsite", "date": "2024-04-01"},
	))

	a := env.open(t)
	_, err := a.Login(ctx, "member", "member")
	require.NoError(t, err)

	events, err := a.Calendar(ctx, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Patch night", events[0].Title)
}

func TestDashApp_BackendDown(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.BaseURL = "http://127.0.0.1:1"
	ctx := context.Background()

	a := env.open(t)
	_, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	_, err = a.List(ctx, "tasks", "", 1)
	assert.ErrorIs(t, err, dash.ErrFetch)
	assert.True(t, dash.Recoverable(err))

	note, ok := env.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, dash.NotifyError, note.Kind)
}

func TestNewDashApp_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig("", t.TempDir())
	_, err := NewDashApp(context.Background(), cfg, "Test", "", Options{Stderr: io.Discard})
	assert.Error(t, err)

	cfg = config.NewConfig("http://localhost", t.TempDir())
	cfg.LogLevel = "chatty"
	_, err = NewDashApp(context.Background(), cfg, "Test", "", Options{Stderr: io.Discard})
	assert.Error(t, err)

	cfg = config.NewConfig("http://localhost", t.TempDir())
	cfg.Storage.Type = "tape"
	_, err = NewDashApp(context.Background(), cfg, "Test", "", Options{Stderr: io.Discard})
	assert.ErrorContains(t, err, "creating storage")
}

func TestConsoleNotifier(t *testing.T) {
	var b bytes.Buffer
	n := NewConsoleNotifier(&b)
	n.Notify(dash.Notification{Kind: dash.NotifyValidation, Title: "Please fill in all required fields", Message: "email is required\nphone is required"})

	want := "[validation] Please fill in all required fields\n    email is required\n    phone is required\n"
	assert.Equal(t, want, b.String())
}

func TestDashApp_FieldsAndHeader(t *testing.T) {
	env := newTestEnv(t)
	a := env.open(t)

	fields, err := a.Fields("clients")
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "company", "email", "name", "phone"}, fields)

	header, err := a.Header("clients")
	require.NoError(t, err)
	assert.Equal(t, "ID", header[0])

	_, err = a.Header("gadgets")
	assert.Error(t, err)
}

func TestDashApp_EncryptionEnabledOverPlaintextSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plain, err := storage.NewFileSystemStorage(env.cfg.Storage.Dir)
	require.NoError(t, err)
	require.NoError(t, plain.Set(ctx, session.StorageKey, []byte(`{"username":"admin","role":"admin"}`)))
	require.NoError(t, plain.Close())

	env.cfg.Storage.Encryption.Type = "age"
	a := env.open(t)

	_, err = a.Whoami()
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.NoError(t, a.Logout(ctx))

	identity, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)
}

func TestDashApp_CloseLogsDuration(t *testing.T) {
	env := newTestEnv(t)
	clock := testutil.FixedClock()
	a, err := NewDashApp(context.Background(), env.cfg, "List", "tasks", Options{
		Clock:    clock,
		IDs:      testutil.NewStubIDGenerator(),
		Notifier: env.notifier,
		Stderr:   io.Discard,
	})
	require.NoError(t, err)

	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, a.Close(errors.New("boom")))

	data, err := os.ReadFile(filepath.Join(env.cfg.LogDir, "itdash.log"))
	require.NoError(t, err)
	var finished string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "operation finished") {
			finished = line
		}
	}
	require.NotEmpty(t, finished, "log has no finish record: %q", data)
	assert.Contains(t, finished, "\t20240115T103000Z\t")
	assert.Contains(t, finished, "\toperation=List")
	assert.Contains(t, finished, "\tstatus=error")
	assert.Contains(t, finished, "\tduration=1.5s")
}
