// Package devserver is an in-memory stand-in for the dashboard backend. It
// serves the same collection routes the resource client calls and keeps
// records only for the life of the process.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"itdash/internal/dash"
)

// Record is a stored record as decoded from JSON.
type Record = map[string]any

type collection struct {
	nextID  int64
	records []Record
}

// errorResponse is the error envelope for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// Server holds one collection per name given to New.
type Server struct {
	echo   *echo.Echo
	logger dash.Logger

	mu          sync.Mutex
	collections map[string]*collection
}

// New creates a Server with an empty collection for each name.
func New(names []string, logger dash.Logger) *Server {
	s := &Server{
		echo:        echo.New(),
		logger:      logger,
		collections: make(map[string]*collection, len(names)),
	}
	for _, name := range names {
		s.collections[name] = &collection{nextID: 1}
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.logRequests)

	e.GET("/:collection/", s.list)
	e.POST("/:collection/", s.create)
	e.PUT("/:collection/:id/", s.update)
	e.DELETE("/:collection/:id/", s.remove)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down dev server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Seed adds records to a collection, assigning ids to those without one.
func (s *Server) Seed(name string, records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("unknown collection %q", name)
	}
	for _, r := range records {
		col.add(r)
	}
	return nil
}

func (col *collection) add(r Record) Record {
	stored := make(Record, len(r)+1)
	for k, v := range r {
		stored[k] = v
	}
	if id, ok := recordID(stored); ok && id > 0 {
		col.nextID = max(col.nextID, id+1)
	} else {
		stored["id"] = col.nextID
		col.nextID++
	}
	col.records = append(col.records, stored)
	return stored
}

func (col *collection) index(id int64) int {
	return slices.IndexFunc(col.records, func(r Record) bool {
		got, ok := recordID(r)
		return ok && got == id
	})
}

// recordID reads the id field of a record decoded from JSON or built in code.
func recordID(r Record) (int64, bool) {
	switch v := r["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// decodeBody reads a JSON object from the request. echo's Bind is not used
// because it also copies path parameters into map destinations.
func decodeBody(c echo.Context) (Record, error) {
	var body Record
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if body == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return body, nil
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		s.logger.Debug("dev server request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"request_id", c.Request().Header.Get(echo.HeaderXRequestID))
		return err
	}
}

// lookup returns the named collection. Callers hold s.mu.
func (s *Server) lookup(c echo.Context) (*collection, error) {
	col, ok := s.collections[c.Param("collection")]
	if !ok {
		return nil, c.JSON(http.StatusNotFound, errorResponse{Error: "unknown collection"})
	}
	return col, nil
}

func (s *Server) list(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, err := s.lookup(c)
	if col == nil {
		return err
	}
	out := make([]Record, len(col.records))
	copy(out, col.records)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) create(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	delete(body, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	col, lookupErr := s.lookup(c)
	if col == nil {
		return lookupErr
	}
	return c.JSON(http.StatusCreated, col.add(body))
}

func (s *Server) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	body, err := decodeBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, err := s.lookup(c)
	if col == nil {
		return err
	}
	i := col.index(id)
	if i < 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "record not found"})
	}
	body["id"] = id
	col.records[i] = body
	return c.JSON(http.StatusOK, body)
}

func (s *Server) remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, err := s.lookup(c)
	if col == nil {
		return err
	}
	i := col.index(id)
	if i < 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "record not found"})
	}
	col.records = slices.Delete(col.records, i, i+1)
	return c.NoContent(http.StatusNoContent)
}
