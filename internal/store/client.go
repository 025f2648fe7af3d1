package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"todosync/internal/todo"
)

// ClientOptions configures the HTTP store client.
type ClientOptions struct {
	// BaseURL is the API root, e.g. "https://jsonplaceholder.typicode.com".
	BaseURL string
	// AuthToken, when non-empty, is sent as a bearer token.
	AuthToken string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// ValidateResponses enables schema checks on list payloads.
	ValidateResponses bool
	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// DefaultTimeout bounds a single store request.
const DefaultTimeout = 15 * time.Second

// Client is the HTTP implementation of Store.
type Client struct {
	base     *url.URL
	token    string
	validate bool
	http     *http.Client
}

// NewClient creates an HTTP store client.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}

	// Copy the caller's client so setting the timeout never mutates it.
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	hc.Timeout = timeout

	return &Client{
		base:     base,
		token:    opts.AuthToken,
		validate: opts.ValidateResponses,
		http:     hc,
	}, nil
}

// List implements Store.
func (c *Client) List(ctx context.Context, ownerID int) ([]todo.Todo, error) {
	path := "/todos?userId=" + strconv.Itoa(ownerID)
	var todos []todo.Todo
	if err := c.do(ctx, http.MethodGet, path, nil, &todos); err != nil {
		return nil, err
	}
	if c.validate {
		if err := todo.Validate(todos); err != nil {
			return nil, fmt.Errorf("invalid list payload: %w", err)
		}
	}
	return todos, nil
}

// Create implements Store.
func (c *Client) Create(ctx context.Context, title string, ownerID int) (todo.Todo, error) {
	body := map[string]interface{}{
		"title":     title,
		"completed": false,
		"userId":    ownerID,
	}
	var created todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", body, &created); err != nil {
		return todo.Todo{}, err
	}
	return created, nil
}

// Update implements Store.
func (c *Client) Update(ctx context.Context, id int, p Patch) (todo.Todo, error) {
	var updated todo.Todo
	if err := c.do(ctx, http.MethodPatch, "/todos/"+strconv.Itoa(id), p, &updated); err != nil {
		return todo.Todo{}, err
	}
	return updated, nil
}

// Delete implements Store.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+strconv.Itoa(id), nil, nil)
}

// do issues one request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse request path: %w", err)
	}
	u := c.base.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, ref.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d", method, ref.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, ref.Path, err)
	}
	return nil
}
