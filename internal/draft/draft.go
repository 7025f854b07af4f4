// Package draft holds the single in-progress create or edit form.
//
// There is at most one draft at a time. Its Mode says whether submitting
// it creates a new task or updates an existing one.
package draft

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"evotodo/internal/reconcile"
	"evotodo/internal/service"
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submit has not finished. Creates are not idempotent, so the second call
// is refused rather than sent.
var ErrSubmitInFlight = errors.New("submit already in progress")

// Mode is either Creating() or Editing(taskID).
type Mode struct {
	taskID  string
	editing bool
}

// Creating is the mode of a draft for a new task.
func Creating() Mode {
	return Mode{}
}

// Editing is the mode of a draft that edits the task with the given id.
func Editing(taskID string) Mode {
	return Mode{taskID: taskID, editing: true}
}

// TaskID returns the id being edited, and false when creating.
func (m Mode) TaskID() (string, bool) {
	return m.taskID, m.editing
}

// IsEditing reports whether the draft edits an existing task.
func (m Mode) IsEditing() bool {
	return m.editing
}

func (m Mode) String() string {
	if m.editing {
		return "editing " + m.taskID
	}
	return "creating"
}

// Draft is the form state.
type Draft struct {
	Title       string
	Description string
	Priority    service.Priority
	Mode        Mode
}

func empty() Draft {
	return Draft{Priority: service.DefaultPriority, Mode: Creating()}
}

// Mutator is the part of the gateway a draft submits through.
type Mutator interface {
	Create(ctx context.Context, title, description string, priority service.Priority) (service.Task, error)
	Update(ctx context.Context, id string, fields service.TaskFields) (service.Task, error)
}

// Editor owns the draft and submits it.
type Editor struct {
	gw       Mutator
	reloader reconcile.Reloader
	log      *zap.Logger

	mu         sync.Mutex
	draft      Draft
	submitting bool
}

// New creates an Editor with an empty creating draft. After a successful
// submit it reloads through r.
func New(gw Mutator, r reconcile.Reloader, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{gw: gw, reloader: r, log: log, draft: empty()}
}

// Current returns a copy of the draft.
func (e *Editor) Current() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// BeginCreate resets the draft to an empty new task.
func (e *Editor) BeginCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = empty()
}

// BeginEdit loads task into the draft for editing.
func (e *Editor) BeginEdit(task service.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	priority := task.Priority
	if priority == "" {
		priority = service.DefaultPriority
	}
	e.draft = Draft{
		Title:       task.Title,
		Description: task.Description,
		Priority:    priority,
		Mode:        Editing(task.ID),
	}
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.BeginCreate()
}

// SetTitle sets the draft title.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Title = title
}

// SetDescription sets the draft description.
func (e *Editor) SetDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Description = description
}

// SetPriority sets the draft priority. Empty means the default.
func (e *Editor) SetPriority(p service.Priority) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == "" {
		p = service.DefaultPriority
	}
	e.draft.Priority = p
}

// Submit validates the draft and sends it: an update when editing, a
// create otherwise. On success the draft is cleared and the snapshot is
// reloaded; a reload failure is returned as a *service.StaleReadError
// even though the task was saved. On any other failure the draft is kept
// and nothing is reloaded.
func (e *Editor) Submit(ctx context.Context) (service.Task, error) {
	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return service.Task{}, ErrSubmitInFlight
	}
	d := e.draft
	if err := service.ValidateTitle(d.Title); err != nil {
		e.mu.Unlock()
		return service.Task{}, err
	}
	e.submitting = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.submitting = false
		e.mu.Unlock()
	}()

	var task service.Task
	err := reconcile.AfterMutation(ctx, e.reloader, func(ctx context.Context) error {
		var err error
		if id, ok := d.Mode.TaskID(); ok {
			title, description, priority := d.Title, d.Description, d.Priority
			task, err = e.gw.Update(ctx, id, service.TaskFields{
				Title:       &title,
				Description: &description,
				Priority:    &priority,
			})
		} else {
			task, err = e.gw.Create(ctx, d.Title, d.Description, d.Priority)
		}
		if err != nil {
			e.log.Debug("draft submit failed, keeping draft", zap.Stringer("mode", d.Mode), zap.Error(err))
			return err
		}

		e.mu.Lock()
		e.draft = empty()
		e.mu.Unlock()
		return nil
	})
	return task, err
}
