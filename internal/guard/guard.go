// Package guard decides whether a path may be shown for the current
// authentication state, and keeps a router's current path consistent with
// that decision as the session changes.
package guard

import (
	"fmt"
	"sync"

	"itdash/internal/dash"
	"itdash/internal/session"
)

// Action is what the caller should do with the requested path.
type Action int

const (
	// Pending means the session is still being restored. Render nothing
	// and do not redirect.
	Pending Action = iota
	Render
	Redirect
)

func (a Action) String() string {
	switch a {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the outcome of evaluating one path. Target is set for redirects.
type Decision struct {
	Action Action
	Target string
}

// Guard maps (state, path) to a Decision.
type Guard struct {
	LoginPath   string
	LandingPath string
}

// Evaluate is the guard's state machine:
//
//	restoring                      -> pending
//	unauthenticated on LoginPath   -> render
//	unauthenticated elsewhere      -> redirect to LoginPath
//	authenticated on LoginPath     -> redirect to LandingPath
//	authenticated elsewhere        -> render
func (g Guard) Evaluate(state session.State, path string) Decision {
	switch state {
	case session.StateAuthenticated:
		if path == g.LoginPath {
			return Decision{Action: Redirect, Target: g.LandingPath}
		}
		return Decision{Action: Render}
	case session.StateUnauthenticated:
		if path == g.LoginPath {
			return Decision{Action: Render}
		}
		return Decision{Action: Redirect, Target: g.LoginPath}
	default:
		return Decision{Action: Pending}
	}
}

// Validate rejects guards whose redirects could never settle.
func (g Guard) Validate() error {
	if g.LoginPath == "" || g.LandingPath == "" {
		return fmt.Errorf("guard needs both a login and a landing path")
	}
	if g.LoginPath == g.LandingPath {
		return fmt.Errorf("login and landing path must differ, both are %q", g.LoginPath)
	}
	return nil
}

// StateSource is the part of session.Store the router depends on.
type StateSource interface {
	State() session.State
	OnChange(fn func(session.State))
}

// maxRedirects bounds how many redirects one evaluation follows.
const maxRedirects = 4

// Outcome is the settled result of a navigation: where the router ended up
// and whether that path may be shown.
type Outcome struct {
	Path       string
	Action     Action // Render or Pending
	Redirected bool
}

// Router holds the current path and re-evaluates it on every navigation and
// every session change. Router is safe for concurrent use.
type Router struct {
	guard  Guard
	source StateSource
	logger dash.Logger

	mu      sync.Mutex
	path    string
	outcome Outcome
}

// NewRouter creates a Router positioned at start and subscribes it to
// source. The first evaluation happens immediately.
func NewRouter(g Guard, source StateSource, start string, logger dash.Logger) (*Router, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	r := &Router{guard: g, source: source, logger: logger, path: start}
	r.Refresh()
	source.OnChange(func(session.State) { r.Refresh() })
	return r, nil
}

// Navigate moves to path and follows redirects until the outcome settles.
func (r *Router) Navigate(path string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	return r.resolve()
}

// Refresh re-evaluates the current path against the current session state.
func (r *Router) Refresh() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve()
}

// Current returns the outcome of the most recent evaluation.
func (r *Router) Current() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// resolve follows redirects from r.path. Callers hold r.mu.
func (r *Router) resolve() Outcome {
	state := r.source.State()
	requested := r.path
	for range maxRedirects {
		d := r.guard.Evaluate(state, r.path)
		if d.Action != Redirect {
			r.outcome = Outcome{Path: r.path, Action: d.Action, Redirected: r.path != requested}
			return r.outcome
		}
		r.logger.Debug("redirecting", "from", r.path, "to", d.Target, "state", state.String())
		r.path = d.Target
	}
	r.logger.Warn("redirect limit reached", "path", requested, "state", state.String())
	r.outcome = Outcome{Path: r.path, Action: Pending, Redirected: r.path != requested}
	return r.outcome
}
