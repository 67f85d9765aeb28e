package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"itdash/internal/calendar"
	"itdash/internal/config"
	"itdash/internal/dash"
	"itdash/internal/guard"
	"itdash/internal/model"
	"itdash/internal/resource"
	"itdash/internal/session"
	"itdash/internal/storage"
	"itdash/internal/widgets"
)

// Paths the router knows about. Every resource is shown at "/" + its name.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	CalendarPath  = "/calendar"
)

var (
	// ErrLoginRequired is returned when a command needs a session and there is none.
	ErrLoginRequired = errors.New("login required, run 'itdash login'")
	// ErrAlreadyLoggedIn is returned when login is requested with an active session.
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

// Options overrides the collaborators DashApp builds by default.
type Options struct {
	Clock      dash.Clock
	IDs        dash.IDGenerator
	HTTPClient *http.Client
	// Notifier receives user-facing notifications. Defaults to a
	// ConsoleNotifier on Stderr.
	Notifier dash.Notifier
	Stderr   io.Writer
}

// DashApp is the application layer between the CLI and the dashboard
// packages. It constructs all dependencies from config and exposes one
// method per user action. The caller must call Close when done.
type DashApp struct {
	cfg       *config.Config
	storage   dash.Storage
	session   *session.Store
	router    *guard.Router
	widgets   *widgets.Store
	resources map[string]Resource
	notifier  dash.Notifier
	logger    dash.Logger
	clock     dash.Clock
	op        *Operation
	logFile   *os.File
}

// NewDashApp creates a fully wired DashApp and restores the saved session.
// operation identifies the CLI command being run (e.g. "Login", "List").
func NewDashApp(ctx context.Context, cfg *config.Config, operation, parameters string, opts Options) (*DashApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = dash.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = dash.UUIDGenerator{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Notifier == nil {
		opts.Notifier = NewConsoleNotifier(opts.Stderr)
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := NewOperation(operation, parameters, opts.Clock.Now())
	slogger, logFile, err := newLogger(cfg.LogDir, op.RunID, level, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	endpoints, err := resource.NewEndpoints(cfg.BaseURL, cfg.Endpoints, model.Catalog)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("resolving endpoints: %w", err)
	}

	st, err := storage.NewStorageFromConfig(cfg.Storage, opts.Clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	sessions := session.NewStore(st, opts.Clock, logger)
	router, err := guard.NewRouter(guard.Guard{LoginPath: LoginPath, LandingPath: DashboardPath}, sessions, LoginPath, logger)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, err
	}
	if err := sessions.Restore(ctx); err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	resources := make(map[string]Resource, len(model.Catalog))
	for _, r := range model.Catalog {
		build, ok := registry[r.Name]
		if !ok {
			st.Close()
			logFile.Close()
			return nil, fmt.Errorf("no record type registered for %q", r.Name)
		}
		url, _ := endpoints.URL(r.Name)
		resources[r.Name] = build(deps{
			info:     r,
			url:      url,
			http:     opts.HTTPClient,
			ids:      opts.IDs,
			notifier: opts.Notifier,
			logger:   logger,
			pageSize: cfg.PageSize,
		})
	}

	logger.Debug("operation started", "operation", op.Name, "parameters", op.Parameters)

	return &DashApp{
		cfg:       cfg,
		storage:   st,
		session:   sessions,
		router:    router,
		widgets:   widgets.NewStore(st, logger),
		resources: resources,
		notifier:  opts.Notifier,
		logger:    logger,
		clock:     opts.Clock,
		op:        op,
		logFile:   logFile,
	}, nil
}

// Enter navigates to path and reports whether it may be shown.
func (a *DashApp) Enter(path string) error {
	outcome := a.router.Navigate(path)
	switch {
	case outcome.Action == guard.Pending:
		return fmt.Errorf("session is still being restored")
	case outcome.Redirected && outcome.Path == LoginPath:
		return ErrLoginRequired
	case outcome.Redirected && outcome.Path == DashboardPath:
		return ErrAlreadyLoggedIn
	}
	return nil
}

// require enters path and checks that the identity holds perm.
func (a *DashApp) require(path, perm string) error {
	if err := a.Enter(path); err != nil {
		return err
	}
	if !a.session.HasPermission(perm) {
		return fmt.Errorf("%w: %s", dash.ErrPermissionDenied, perm)
	}
	return nil
}

// Login authenticates against the credential table. A rejected login is
// shown as an error notification.
func (a *DashApp) Login(ctx context.Context, username, password string) (*session.Identity, error) {
	if err := a.Enter(LoginPath); err != nil {
		return nil, err
	}
	identity, err := a.session.Login(ctx, username, password)
	if errors.Is(err, dash.ErrInvalidCredentials) {
		a.notifier.Notify(dash.Notification{
			Kind:    dash.NotifyError,
			Title:   "Login failed",
			Message: "Invalid username or password",
		})
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	a.notifier.Notify(dash.Notification{Kind: dash.NotifySuccess, Title: "Welcome, " + identity.Username})
	return identity, nil
}

// Logout ends the session. Logging out without a session is not an error.
func (a *DashApp) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// Whoami returns the active identity.
func (a *DashApp) Whoami() (*session.Identity, error) {
	identity := a.session.CurrentIdentity()
	if identity == nil {
		return nil, ErrLoginRequired
	}
	return identity, nil
}

// Can reports whether the active identity may perform action on resource.
func (a *DashApp) Can(action, name string) bool {
	return a.session.HasPermission(session.Permission(action, name))
}

// Resources returns the catalog resources the identity may view, in menu order.
func (a *DashApp) Resources() []model.Resource {
	var out []model.Resource
	for _, r := range model.Catalog {
		if a.Can(session.ActionView, r.Name) {
			out = append(out, r)
		}
	}
	return out
}

func (a *DashApp) lookup(name, action string) (Resource, error) {
	r, ok := a.resources[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	if err := a.require("/"+name, session.Permission(action, name)); err != nil {
		return nil, err
	}
	return r, nil
}

// Fields lists the settable fields of a resource.
func (a *DashApp) Fields(name string) ([]string, error) {
	r, ok := a.resources[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return r.Fields(), nil
}

// Header returns the column names of a resource listing.
func (a *DashApp) Header(name string) ([]string, error) {
	r, ok := a.resources[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return r.Header(), nil
}

// List returns one page of a resource, filtered by search.
func (a *DashApp) List(ctx context.Context, name, search string, page int) (Page, error) {
	r, err := a.lookup(name, session.ActionView)
	if err != nil {
		return Page{}, err
	}
	return r.List(ctx, search, page)
}

// Create builds a draft from sets and submits it.
func (a *DashApp) Create(ctx context.Context, name string, sets map[string]string) ([]string, error) {
	r, err := a.lookup(name, session.ActionCreate)
	if err != nil {
		return nil, err
	}
	return r.Create(ctx, sets)
}

// Update applies sets to the record with id and submits it. changed is
// false when the edit left the record as it was and nothing was sent.
func (a *DashApp) Update(ctx context.Context, name string, id int64, sets map[string]string) (row []string, changed bool, err error) {
	r, err := a.lookup(name, session.ActionEdit)
	if err != nil {
		return nil, false, err
	}
	return r.Update(ctx, id, sets)
}

// Delete removes the record with id.
func (a *DashApp) Delete(ctx context.Context, name string, id int64) error {
	r, err := a.lookup(name, session.ActionDelete)
	if err != nil {
		return err
	}
	return r.Delete(ctx, id)
}

// Widget is one dashboard tile: a resource and how many records it holds.
// Err is set when the count could not be loaded.
type Widget struct {
	Name  string
	Label string
	Count int
	Err   error
}

// Dashboard returns the widgets in the saved order, skipping resources the
// identity may not view.
func (a *DashApp) Dashboard(ctx context.Context) ([]Widget, error) {
	if err := a.require(DashboardPath, session.PermViewDashboard); err != nil {
		return nil, err
	}
	layout, err := a.widgets.Load(ctx)
	if err != nil {
		return nil, err
	}

	var out []Widget
	for _, name := range layout.Widgets {
		r, ok := a.resources[name]
		if !ok || !a.Can(session.ActionView, name) {
			continue
		}
		count, err := r.Count(ctx)
		out = append(out, Widget{Name: name, Label: r.Info().Label, Count: count, Err: err})
	}
	return out, nil
}

// MoveWidget moves the widget at from to to. Positions are zero based.
func (a *DashApp) MoveWidget(ctx context.Context, from, to int) (widgets.Layout, error) {
	if err := a.require(DashboardPath, session.PermViewDashboard); err != nil {
		return widgets.Layout{}, err
	}
	return a.widgets.Move(ctx, from, to)
}

// Calendar returns the events of the given month.
func (a *DashApp) Calendar(ctx context.Context, year int, month time.Month) ([]model.Event, error) {
	if err := a.require(CalendarPath, session.PermViewCalendar); err != nil {
		return nil, err
	}
	if !a.Can(session.ActionView, "events") {
		return nil, fmt.Errorf("%w: %s", dash.ErrPermissionDenied, session.Permission(session.ActionView, "events"))
	}
	events, ok := a.resources["events"].(*binding[model.Event])
	if !ok {
		return nil, fmt.Errorf("events resource is not available")
	}
	if err := events.mount(ctx); err != nil {
		return nil, err
	}
	return calendar.EventsInMonth(events.controller.Items(), year, month), nil
}

// Close tears down every controller, closes storage and records the
// outcome of the command in the log.
func (a *DashApp) Close(cmdErr error) error {
	for _, r := range a.resources {
		r.Close()
	}

	a.op.Finish(cmdErr)
	a.logger.Debug("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", a.clock.Now().Sub(a.op.StartedAt).String())

	var firstErr error
	if err := a.storage.Close(); err != nil {
		firstErr = fmt.Errorf("closing storage: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
