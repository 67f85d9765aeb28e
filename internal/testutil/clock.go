package testutil

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// StubClock is a dash.Clock that only moves when the test moves it.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a StubClock at 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return &StubClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d, as if a command took that long.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StubIDGenerator hands out request ids "req-1", "req-2", ... in call order
// and remembers them.
type StubIDGenerator struct {
	mu     sync.Mutex
	issued []string
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("req-%d", len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns every id handed out so far.
func (g *StubIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.issued)
}
