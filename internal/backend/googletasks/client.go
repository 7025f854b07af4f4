// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"evotodo/internal/config"
	"evotodo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks fetched per request.
	PageSize = 100

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client implements service.Service on one Google task list.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// New creates a client from oauth_client.json and the stored token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	token, err := cfg.LoadToken()
	if err != nil {
		return nil, err
	}

	// Token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		listID:  cfg.GoogleList,
		timeout: cfg.Timeout,
		now:     time.Now,
		log:     cfg.Logger().Named("googletasks"),
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and API
// endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID, timeout: config.DefaultTimeout, now: time.Now, log: zap.NewNop()}, nil
}

// ListTasks returns every task of the list, completed and hidden ones
// included, in API order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, gt := range resp.Items {
				result = append(result, fromGoogle(gt))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask inserts a task at the top of the list.
func (c *Client) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	priority := nt.Priority
	if priority == "" {
		priority = service.DefaultPriority
	}
	gt := &tasks.Task{
		Title:  nt.Title,
		Notes:  encodeNotes(nt.Description, priority, c.now()),
		Status: statusNeedsAction,
	}
	created, err := c.svc.Tasks.Insert(c.listID, gt).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromGoogle(created), nil
}

// UpdateTask reads the task, applies fields and patches it back. The read
// is needed because description and priority share the notes field.
func (c *Client) UpdateTask(ctx context.Context, id string, fields service.TaskFields) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gt, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	t := fields.Apply(fromGoogle(gt))

	patch := &tasks.Task{
		Title:  t.Title,
		Notes:  encodeNotes(t.Description, t.Priority, t.CreatedAt),
		Status: toGoogleStatus(t.Status),
	}
	if t.Status == service.StatusIncomplete {
		patch.NullFields = []string{"Completed"}
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, patch).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromGoogle(updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError maps API errors onto the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: evotodo login): %w", service.ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, service.ErrNotFound)
		}
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("token expired or revoked (run: evotodo login): %w", service.ErrUnauthorized)
	}

	return err
}
