package testutil

import (
	"context"
	"slices"
	"sync"

	"itdash/internal/dash"
)

// FakeClient is an in-memory dash.ResourceClient that records every call.
// Set the *Err fields to make the matching call fail.
type FakeClient[T dash.Record] struct {
	mu sync.Mutex

	Items []T

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// OnCreate builds the record returned by Create. When nil the draft is
	// returned unchanged.
	OnCreate func(draft T) T

	// Gate, when non-nil, makes every call wait for a receive before it
	// returns. The wait ignores the context so tests can deliver a result
	// after the caller has given up.
	Gate chan struct{}

	// Started, when non-nil, receives a value as each call begins.
	Started chan struct{}

	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	Created []T
	Updated []T
	Deleted []int64
}

func NewFakeClient[T dash.Record](items ...T) *FakeClient[T] {
	return &FakeClient[T]{Items: items}
}

func (c *FakeClient[T]) wait() {
	if c.Started != nil {
		c.Started <- struct{}{}
	}
	if c.Gate != nil {
		<-c.Gate
	}
}

func (c *FakeClient[T]) List(ctx context.Context) ([]T, error) {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	return slices.Clone(c.Items), nil
}

func (c *FakeClient[T]) Create(ctx context.Context, draft T) (T, error) {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CreateCalls++
	if c.CreateErr != nil {
		var zero T
		return zero, c.CreateErr
	}
	created := draft
	if c.OnCreate != nil {
		created = c.OnCreate(draft)
	}
	c.Created = append(c.Created, created)
	c.Items = append(c.Items, created)
	return created, nil
}

func (c *FakeClient[T]) Update(ctx context.Context, id int64, draft T) (T, error) {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UpdateCalls++
	if c.UpdateErr != nil {
		var zero T
		return zero, c.UpdateErr
	}
	c.Updated = append(c.Updated, draft)
	for i, item := range c.Items {
		if item.RecordID() == id {
			c.Items[i] = draft
		}
	}
	return draft, nil
}

func (c *FakeClient[T]) Delete(ctx context.Context, id int64) error {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeleteCalls++
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	c.Deleted = append(c.Deleted, id)
	c.Items = slices.DeleteFunc(c.Items, func(item T) bool { return item.RecordID() == id })
	return nil
}

// Calls returns the total number of calls made to the client.
func (c *FakeClient[T]) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ListCalls + c.CreateCalls + c.UpdateCalls + c.DeleteCalls
}
