package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"itdash/internal/controller"
	"itdash/internal/dash"
	"itdash/internal/form"
	"itdash/internal/model"
	"itdash/internal/resource"
)

// Page is one rendered page of a resource listing.
type Page struct {
	Header      []string
	Rows        [][]string
	CurrentPage int
	TotalPages  int
	Total       int
}

// Resource is a type-erased view of one resource screen. It lets the CLI
// drive every collection through the same commands.
type Resource interface {
	Info() model.Resource
	Fields() []string
	Header() []string
	List(ctx context.Context, search string, page int) (Page, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, sets map[string]string) ([]string, error)
	Update(ctx context.Context, id int64, sets map[string]string) (row []string, changed bool, err error)
	Delete(ctx context.Context, id int64) error
	Close()
}

// tableRecord is a record that knows how to render itself as a table row.
type tableRecord interface {
	dash.Record
	Header() []string
	Row() []string
}

// deps is what every binding is built from.
type deps struct {
	info     model.Resource
	url      string
	http     *http.Client
	ids      dash.IDGenerator
	notifier dash.Notifier
	logger   dash.Logger
	pageSize int
}

// binding adapts a typed controller to Resource. The collection is loaded
// on first use and kept for the rest of the process.
type binding[T tableRecord] struct {
	info       model.Resource
	controller *controller.Controller[T]

	mountOnce sync.Once
	mountErr  error
}

func bind[T tableRecord](d deps) *binding[T] {
	client := resource.NewClient[T](d.info.Name, d.url, d.http, d.ids, d.logger)
	c := controller.New[T](client, form.StructValidator[T]{}, d.notifier, controller.Options{
		Resource: d.info.Name,
		Label:    d.info.Label,
		PageSize: d.pageSize,
		Logger:   d.logger,
	})
	return &binding[T]{info: d.info, controller: c}
}

// registry maps each catalog name to the record type that backs it.
var registry = map[string]func(deps) Resource{
	"projects":       func(d deps) Resource { return bind[model.Project](d) },
	"tasks":          func(d deps) Resource { return bind[model.Task](d) },
	"members":        func(d deps) Resource { return bind[model.Member](d) },
	"clients":        func(d deps) Resource { return bind[model.Client](d) },
	"teams":          func(d deps) Resource { return bind[model.Team](d) },
	"expenses":       func(d deps) Resource { return bind[model.Expense](d) },
	"time-entries":   func(d deps) Resource { return bind[model.TimeEntry](d) },
	"events":         func(d deps) Resource { return bind[model.Event](d) },
	"tickets":        func(d deps) Resource { return bind[model.Ticket](d) },
	"documents":      func(d deps) Resource { return bind[model.Document](d) },
	"trainings":      func(d deps) Resource { return bind[model.Training](d) },
	"announcements":  func(d deps) Resource { return bind[model.Announcement](d) },
	"leave-requests": func(d deps) Resource { return bind[model.LeaveRequest](d) },
}

func (b *binding[T]) Info() model.Resource { return b.info }

func (b *binding[T]) Fields() []string { return Fields[T]() }

func (b *binding[T]) Header() []string {
	var zero T
	return zero.Header()
}

func (b *binding[T]) mount(ctx context.Context) error {
	b.mountOnce.Do(func() {
		b.mountErr = b.controller.Mount(ctx)
	})
	return b.mountErr
}

func (b *binding[T]) List(ctx context.Context, search string, page int) (Page, error) {
	if err := b.mount(ctx); err != nil {
		return Page{}, err
	}

	b.controller.SetSearchTerm(search)
	if page < 1 || (page > 1 && !b.controller.GoToPage(page)) {
		return Page{}, fmt.Errorf("page %d out of range, %s has %d page(s)", page, b.info.Name, b.controller.TotalPages())
	}

	view := b.controller.View()
	p := Page{
		Header:      b.Header(),
		Rows:        make([][]string, 0, len(view.Rows)),
		CurrentPage: view.CurrentPage,
		TotalPages:  view.TotalPages,
		Total:       view.Total,
	}
	for _, r := range view.Rows {
		p.Rows = append(p.Rows, r.Row())
	}
	return p, nil
}

func (b *binding[T]) Count(ctx context.Context) (int, error) {
	if err := b.mount(ctx); err != nil {
		return 0, err
	}
	return len(b.controller.Items()), nil
}

func (b *binding[T]) Create(ctx context.Context, sets map[string]string) ([]string, error) {
	var template T
	draft, err := ApplySets(template, sets)
	if err != nil {
		return nil, err
	}

	b.controller.OpenCreate(template)
	b.controller.SetDraft(draft)
	created, err := b.controller.SubmitCreate(ctx, draft)
	if err != nil {
		return nil, err
	}
	return created.Row(), nil
}

func (b *binding[T]) Update(ctx context.Context, id int64, sets map[string]string) ([]string, bool, error) {
	if err := b.mount(ctx); err != nil {
		return nil, false, err
	}

	original, err := b.controller.OpenEdit(id)
	if err != nil {
		return nil, false, err
	}
	draft, err := ApplySets(original, sets)
	if err != nil {
		b.controller.CloseDialog()
		return nil, false, err
	}
	b.controller.SetDraft(draft)

	updated, err := b.controller.SubmitUpdate(ctx, original, draft)
	if err != nil {
		return nil, false, err
	}
	return updated.Row(), form.HasChanges(original, draft), nil
}

func (b *binding[T]) Delete(ctx context.Context, id int64) error {
	return b.controller.SubmitDelete(ctx, id)
}

func (b *binding[T]) Close() {
	b.controller.Close()
}
