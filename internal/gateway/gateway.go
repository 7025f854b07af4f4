// Package gateway performs task mutations against the remote service.
//
// Each operation is a single remote call. The gateway never reloads the
// task snapshot and never retries; callers apply the reconciliation policy.
package gateway

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evotodo/internal/service"
)

// ErrDeclined is returned by Delete when the user does not confirm.
var ErrDeclined = errors.New("cancelled")

// Confirmer is the blocking yes/no gate in front of irreversible operations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer for callers that collected confirmation themselves.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Gateway performs create, update, toggle and delete against a service.
type Gateway struct {
	svc service.Service
	log *zap.Logger
}

// New creates a Gateway. A nil logger disables logging.
func New(svc service.Service, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{svc: svc, log: log}
}

// Create creates a task. The status is left to the service default.
func (g *Gateway) Create(ctx context.Context, title, description string, priority service.Priority) (service.Task, error) {
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, err
	}
	if priority == "" {
		priority = service.DefaultPriority
	}
	if !priority.Valid() {
		return service.Task{}, &service.ValidationError{Field: "priority", Message: "invalid priority: " + string(priority)}
	}

	g.log.Debug("creating task", zap.String("title", title), zap.String("priority", string(priority)))
	task, err := g.svc.CreateTask(ctx, service.NewTask{
		Title:       title,
		Description: description,
		Priority:    priority,
	})
	if err != nil {
		return service.Task{}, g.fail("create task", err)
	}
	return task, nil
}

// Update applies a partial update to the task with the given id.
func (g *Gateway) Update(ctx context.Context, id string, fields service.TaskFields) (service.Task, error) {
	if fields.Title != nil {
		if err := service.ValidateTitle(*fields.Title); err != nil {
			return service.Task{}, err
		}
	}
	if fields.Priority != nil && !fields.Priority.Valid() {
		return service.Task{}, &service.ValidationError{Field: "priority", Message: "invalid priority: " + string(*fields.Priority)}
	}

	g.log.Debug("updating task", zap.String("id", id))
	task, err := g.svc.UpdateTask(ctx, id, fields)
	if err != nil {
		return service.Task{}, g.fail("update task", err)
	}
	return task, nil
}

// ToggleStatus flips the status of task as the caller last saw it.
// The target status is always derived here, never supplied by the caller.
func (g *Gateway) ToggleStatus(ctx context.Context, task service.Task) (service.Task, error) {
	flipped := task.Status.Toggled()
	return g.Update(ctx, task.ID, service.TaskFields{Status: &flipped})
}

// Delete removes a task after confirm approves. No remote call is made
// unless confirmation is given; ErrDeclined is returned instead.
func (g *Gateway) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil {
		return ErrDeclined
	}
	ok, err := confirm.Confirm(ctx, "Delete this task? This cannot be undone.")
	if err != nil {
		return err
	}
	if !ok {
		g.log.Debug("delete declined", zap.String("id", id))
		return ErrDeclined
	}

	g.log.Debug("deleting task", zap.String("id", id))
	if err := g.svc.DeleteTask(ctx, id); err != nil {
		return g.fail("delete task", err)
	}
	return nil
}

func (g *Gateway) fail(op string, err error) error {
	g.log.Warn("remote mutation failed", zap.String("op", op), zap.Error(err))
	return service.Remote(op, err)
}
