// Package httpapi implements service.Service and service.Agent against the
// todo REST service and its chat endpoint.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"evotodo/internal/service"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client talks to the todo service. Every request carries the bearer token
// from the token source.
type Client struct {
	baseURL  string
	agentURL string
	timeout  time.Duration
	base     *http.Client
	http     *http.Client
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client the token transport wraps.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

// WithAgentURL points chat requests at a different base URL.
func WithAgentURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.agentURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the service at baseURL authenticating with ts.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		agentURL: baseURL,
		timeout:  DefaultTimeout,
		base:     http.DefaultClient,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	c.http = oauth2.NewClient(ctx, ts)
	return c
}

// ListTasks returns all of the user's tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var wire []wireTask
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/todos/", nil, &wire); err != nil {
		return nil, err
	}
	tasks := make([]service.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, w.task())
	}
	return tasks, nil
}

// CreateTask creates a task. Status is left to the server.
func (c *Client) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	body := createRequest{Title: nt.Title, Priority: string(nt.Priority)}
	if nt.Description != "" {
		body.Description = &nt.Description
	}
	var w wireTask
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/todos/", body, &w); err != nil {
		return service.Task{}, err
	}
	return w.task(), nil
}

// UpdateTask sends only the fields that are set.
func (c *Client) UpdateTask(ctx context.Context, id string, fields service.TaskFields) (service.Task, error) {
	var w wireTask
	if err := c.do(ctx, http.MethodPatch, c.taskURL(id), patchRequest(fields), &w); err != nil {
		return service.Task{}, err
	}
	return w.task(), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.taskURL(id), nil, nil)
}

// Chat sends one message to the agent.
func (c *Client) Chat(ctx context.Context, message string) (service.Reply, error) {
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, c.agentURL+"/chat", chatRequest{Message: message}, &resp); err != nil {
		return service.Reply{}, err
	}
	return service.Reply{Text: resp.Reply, Refresh: resp.Refresh}, nil
}

func (c *Client) taskURL(id string) string {
	return c.baseURL + "/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, u, err)
	}
	return nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// Unwrap maps auth and not-found statuses onto the service sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &StatusError{Code: resp.StatusCode, Detail: detail(data)}
}

// detail extracts the message of a {"detail": ...} error body. Validation
// errors carry a list of objects with a "msg" field.
func detail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return string(body.Detail)
}

// wrapError gives transport failures a user-facing message.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	return err
}
