// Package controller holds the list-detail state shared by every resource
// screen: the loaded collection, search, pagination and the create/edit
// dialog. Every mutation is confirmed by the backend before it is applied.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"itdash/internal/dash"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 5

// Validator checks a draft before it is sent to the backend.
type Validator[T any] interface {
	Validate(record T) error
}

// DialogMode is the state of the create/edit dialog.
type DialogMode int

const (
	DialogClosed DialogMode = iota
	DialogCreate
	DialogEdit
)

func (m DialogMode) String() string {
	switch m {
	case DialogClosed:
		return "closed"
	case DialogCreate:
		return "create"
	case DialogEdit:
		return "edit"
	default:
		return fmt.Sprintf("DialogMode(%d)", int(m))
	}
}

// Dialog is the open dialog and the draft bound to it. Original is the
// record being edited and is only meaningful in DialogEdit.
type Dialog[T any] struct {
	Mode     DialogMode
	Original T
	Draft    T
}

// Options configures a Controller.
type Options struct {
	// Resource names the collection in notifications, e.g. "tasks".
	Resource string
	// Label is the singular display name, e.g. "Task".
	Label    string
	PageSize int
	Logger   dash.Logger
}

// View is a consistent snapshot of what one page shows.
type View[T any] struct {
	Rows        []T
	CurrentPage int
	TotalPages  int
	Total       int // filtered item count
	Loading     bool
	SearchTerm  string
}

// Controller owns one resource collection. It is safe for concurrent use;
// backend calls are made without holding the lock.
type Controller[T dash.Record] struct {
	client    dash.ResourceClient[T]
	validator Validator[T]
	notifier  dash.Notifier
	logger    dash.Logger
	resource  string
	label     string
	pageSize  int

	// lifetime is canceled by Close and scopes every backend call.
	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	items   []T
	loading bool
	search  string
	page    int
	dialog  Dialog[T]
	closed  bool
}

// New creates a Controller on page 1 with an empty collection.
func New[T dash.Record](client dash.ResourceClient[T], validator Validator[T], notifier dash.Notifier, opts Options) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = dash.NewNopLogger()
	}
	if notifier == nil {
		notifier = dash.NopNotifier{}
	}

	lifetime, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		client:    client,
		validator: validator,
		notifier:  notifier,
		logger:    opts.Logger,
		resource:  opts.Resource,
		label:     opts.Label,
		pageSize:  opts.PageSize,
		lifetime:  lifetime,
		cancel:    cancel,
		page:      1,
	}
}

// Close cancels in-flight calls. Results that arrive afterwards are
// discarded and the call returns dash.ErrClosed.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// scope derives a call context that ends when either ctx or the controller ends.
func (c *Controller[T]) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Mount loads the collection. On failure an error notification is shown
// and the previously loaded items are kept.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return dash.ErrClosed
	}
	c.loading = true
	c.mu.Unlock()

	callCtx, done := c.scope(ctx)
	items, err := c.client.List(callCtx)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding list result after close", "resource", c.resource)
		return dash.ErrClosed
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("failed to load collection", "resource", c.resource, "error", err)
		c.notify(dash.NotifyError, "Could not load "+c.resource, err.Error())
		return err
	}
	c.items = items
	c.clampPage()
	c.mu.Unlock()

	c.logger.Debug("collection loaded", "resource", c.resource, "count", len(items))
	return nil
}

// Items returns a copy of the loaded collection.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[T]) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

func (c *Controller[T]) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetSearchTerm changes the filter and returns to page 1.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
	c.page = 1
}

// FilteredItems returns the items where any search field contains the
// search term, ignoring case. An empty term matches everything.
func (c *Controller[T]) FilteredItems() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filtered()
}

func (c *Controller[T]) filtered() []T {
	term := strings.ToLower(c.search)
	if term == "" {
		return slices.Clone(c.items)
	}
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		for _, field := range item.SearchFields() {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// TotalPages is ceil(len(FilteredItems) / pageSize).
func (c *Controller[T]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages(len(c.filtered()))
}

func (c *Controller[T]) totalPages(n int) int {
	return (n + c.pageSize - 1) / c.pageSize
}

// PaginatedItems returns the current page of FilteredItems.
func (c *Controller[T]) PaginatedItems() []T {
	return c.View().Rows
}

// View returns the current page and its counters from a single read.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filtered()
	start := min((c.page-1)*c.pageSize, len(filtered))
	end := min(start+c.pageSize, len(filtered))
	return View[T]{
		Rows:        filtered[start:end],
		CurrentPage: c.page,
		TotalPages:  c.totalPages(len(filtered)),
		Total:       len(filtered),
		Loading:     c.loading,
		SearchTerm:  c.search,
	}
}

// NextPage advances one page. It is a no-op on the last page.
func (c *Controller[T]) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page < c.totalPages(len(c.filtered())) {
		c.page++
	}
}

// PrevPage goes back one page. It is a no-op on page 1.
func (c *Controller[T]) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
}

// GoToPage jumps to page n. It reports false and leaves the page unchanged
// when n is out of range.
func (c *Controller[T]) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > max(c.totalPages(len(c.filtered())), 1) {
		return false
	}
	c.page = n
	return true
}

// clampPage keeps the page inside the range after the collection shrinks.
// Callers hold c.mu.
func (c *Controller[T]) clampPage() {
	last := max(c.totalPages(len(c.filtered())), 1)
	if c.page > last {
		c.page = last
	}
}

// Dialog returns the current dialog state.
func (c *Controller[T]) Dialog() Dialog[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// OpenCreate opens the create dialog with template as the draft.
func (c *Controller[T]) OpenCreate(template T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.dialog = Dialog[T]{Mode: DialogCreate, Original: zero, Draft: template}
}

// OpenEdit opens the edit dialog for the item with id. The draft starts as
// a copy of the item.
func (c *Controller[T]) OpenEdit(id int64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.find(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", c.resource, id, dash.ErrNotFound)
	}
	c.dialog = Dialog[T]{Mode: DialogEdit, Original: item, Draft: item}
	return item, nil
}

// SetDraft replaces the draft of the open dialog. It is ignored when no
// dialog is open.
func (c *Controller[T]) SetDraft(draft T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Mode != DialogClosed {
		c.dialog.Draft = draft
	}
}

// CloseDialog discards the draft.
func (c *Controller[T]) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = Dialog[T]{}
}

// Find returns the loaded item with id.
func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.find(id)
}

func (c *Controller[T]) find(id int64) (T, bool) {
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// SubmitCreate validates draft, creates it and appends the server's record.
// A validation failure shows a validation notification and keeps the dialog
// open. A backend failure shows a destructive notification. In both cases
// the items are unchanged.
func (c *Controller[T]) SubmitCreate(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := c.check(draft); err != nil {
		return zero, err
	}

	callCtx, done := c.scope(ctx)
	created, err := c.client.Create(callCtx, draft)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding create result after close", "resource", c.resource)
		return zero, dash.ErrClosed
	}
	if err != nil {
		c.mu.Unlock()
		c.failed("create", err)
		return zero, err
	}
	c.items = append(c.items, created)
	c.dialog = Dialog[T]{}
	c.mu.Unlock()

	c.logger.Info("record created", "resource", c.resource, "id", created.RecordID())
	c.notify(dash.NotifySuccess, c.label+" created", "")
	return created, nil
}

// SubmitUpdate validates draft and, if it differs from original, updates
// the record and replaces the matching item. An unchanged draft closes the
// dialog without a backend call or notification and returns original.
func (c *Controller[T]) SubmitUpdate(ctx context.Context, original, draft T) (T, error) {
	var zero T
	if err := c.check(draft); err != nil {
		return zero, err
	}

	if original == draft {
		c.mu.Lock()
		c.dialog = Dialog[T]{}
		c.mu.Unlock()
		return original, nil
	}

	id := original.RecordID()
	callCtx, done := c.scope(ctx)
	updated, err := c.client.Update(callCtx, id, draft)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding update result after close", "resource", c.resource)
		return zero, dash.ErrClosed
	}
	if err != nil {
		c.mu.Unlock()
		c.failed("update", err)
		return zero, err
	}
	for i, item := range c.items {
		if item.RecordID() == id {
			c.items[i] = updated
		}
	}
	c.dialog = Dialog[T]{}
	c.mu.Unlock()

	c.logger.Info("record updated", "resource", c.resource, "id", id)
	c.notify(dash.NotifySuccess, c.label+" updated", "")
	return updated, nil
}

// SubmitDelete deletes the record with id and removes it from the items.
func (c *Controller[T]) SubmitDelete(ctx context.Context, id int64) error {
	callCtx, done := c.scope(ctx)
	err := c.client.Delete(callCtx, id)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding delete result after close", "resource", c.resource)
		return dash.ErrClosed
	}
	if err != nil {
		c.mu.Unlock()
		c.failed("delete", err)
		return err
	}
	c.items = slices.DeleteFunc(c.items, func(item T) bool { return item.RecordID() == id })
	c.clampPage()
	c.mu.Unlock()

	c.logger.Info("record deleted", "resource", c.resource, "id", id)
	c.notify(dash.NotifySuccess, c.label+" deleted", "")
	return nil
}

// check runs the validator and keeps the dialog open with draft on failure.
func (c *Controller[T]) check(draft T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return dash.ErrClosed
	}
	c.mu.Unlock()

	if c.validator == nil {
		return nil
	}
	err := c.validator.Validate(draft)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if c.dialog.Mode != DialogClosed {
		c.dialog.Draft = draft
	}
	c.mu.Unlock()

	var ve *dash.ValidationError
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			msgs = append(msgs, f.Message)
		}
		c.notify(dash.NotifyValidation, "Please fill in all required fields", strings.Join(msgs, "\n"))
	} else {
		c.notify(dash.NotifyValidation, "Please fill in all required fields", err.Error())
	}
	return err
}

func (c *Controller[T]) failed(op string, err error) {
	c.logger.Error("request failed", "resource", c.resource, "op", op, "error", err)
	c.notify(dash.NotifyDestructive, fmt.Sprintf("Could not %s %s", op, strings.ToLower(c.label)), err.Error())
}

func (c *Controller[T]) notify(kind dash.NotificationKind, title, message string) {
	c.notifier.Notify(dash.Notification{Kind: kind, Title: title, Message: message})
}
