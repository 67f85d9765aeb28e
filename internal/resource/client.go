// Package resource talks to the dashboard's REST backend. Each Client covers
// one collection endpoint.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"itdash/internal/dash"
)

// Client issues CRUD calls against one collection:
//
//	GET    {base}/       list
//	POST   {base}/       create
//	PUT    {base}/{id}/  update
//	DELETE {base}/{id}/  delete
type Client[T dash.Record] struct {
	resource string
	base     string
	http     *http.Client
	ids      dash.IDGenerator
	logger   dash.Logger
}

// NewClient creates a Client for the collection at collectionURL. A nil
// httpClient uses http.DefaultClient.
func NewClient[T dash.Record](resource, collectionURL string, httpClient *http.Client, ids dash.IDGenerator, logger dash.Logger) *Client[T] {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client[T]{
		resource: resource,
		base:     strings.TrimRight(collectionURL, "/"),
		http:     httpClient,
		ids:      ids,
		logger:   logger,
	}
}

// URL returns the collection URL the client was built with.
func (c *Client[T]) URL() string {
	return c.base + "/"
}

func (c *Client[T]) List(ctx context.Context) ([]T, error) {
	body, err := c.do(ctx, dash.ErrFetch, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, c.fail(dash.ErrFetch, 0, "", fmt.Errorf("failed to decode response: %w", err))
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Client[T]) Create(ctx context.Context, draft T) (T, error) {
	return c.write(ctx, dash.ErrCreate, http.MethodPost, c.base+"/", draft)
}

func (c *Client[T]) Update(ctx context.Context, id int64, draft T) (T, error) {
	return c.write(ctx, dash.ErrUpdate, http.MethodPut, c.itemURL(id), draft)
}

func (c *Client[T]) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, dash.ErrDelete, http.MethodDelete, c.itemURL(id), nil)
	return err
}

func (c *Client[T]) itemURL(id int64) string {
	return c.base + "/" + strconv.FormatInt(id, 10) + "/"
}

// write sends record as the request body and decodes the canonical record
// the server returns.
func (c *Client[T]) write(ctx context.Context, kind error, method, url string, record T) (T, error) {
	var zero T

	payload, err := json.Marshal(record)
	if err != nil {
		return zero, c.fail(kind, 0, "", fmt.Errorf("failed to encode request: %w", err))
	}

	body, err := c.do(ctx, kind, method, url, payload)
	if err != nil {
		return zero, err
	}

	var saved T
	if err := json.Unmarshal(body, &saved); err != nil {
		return zero, c.fail(kind, 0, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return saved, nil
}

// do performs one request and returns the response body of a 2xx response.
// Every other outcome becomes a *dash.RequestError of the given kind.
func (c *Client[T]) do(ctx context.Context, kind error, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, c.fail(kind, 0, "", fmt.Errorf("failed to create request: %w", err))
	}

	requestID := c.ids.New()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", "method", method, "url", url, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(kind, 0, "", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(kind, resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("request rejected", "method", method, "url", url, "status", resp.StatusCode, "request_id", requestID)
		return nil, c.fail(kind, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}
	return body, nil
}

func (c *Client[T]) fail(kind error, status int, body string, cause error) error {
	return &dash.RequestError{Kind: kind, Resource: c.resource, StatusCode: status, Body: body, Err: cause}
}
