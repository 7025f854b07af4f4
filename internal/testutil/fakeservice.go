// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"evotodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned sequentially ("1", "2", ...) and CreatedAt advances by
// one minute per task from a fixed epoch.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int
	epoch  time.Time

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// ListHook, when set, runs on every ListTasks call and may fail it.
	ListHook func() error

	// Call records
	ListCalls   int
	CreateCalls []service.NewTask
	UpdateCalls []UpdateCall
	DeleteCalls []string
}

// UpdateCall records one UpdateTask invocation.
type UpdateCall struct {
	ID     string
	Fields service.TaskFields
}

// Epoch is the CreatedAt of the first task created by a FakeService.
var Epoch = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{epoch: Epoch}
}

// AddTask seeds a task directly, bypassing call records. Returns the stored task.
func (f *FakeService) AddTask(title string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.newTaskLocked(service.NewTask{Title: title})
	t.Status = status
	f.tasks[len(f.tasks)-1] = t
	return t
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Get returns a stored task by ID.
func (f *FakeService) Get(id string) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// MutationCount returns the number of create, update and delete calls received.
func (f *FakeService) MutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.CreateCalls) + len(f.UpdateCalls) + len(f.DeleteCalls)
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	if f.ListHook != nil {
		if err := f.ListHook(); err != nil {
			return nil, err
		}
	}
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, nt)
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	return f.newTaskLocked(nt), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls = append(f.UpdateCalls, UpdateCall{ID: id, Fields: fields})
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = fields.Apply(t)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, id)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
}

// SetStatus changes a task out of band, the way a server-side agent would.
func (f *FakeService) SetStatus(id string, status service.Status) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Status = status
			return true
		}
	}
	return false
}

func (f *FakeService) newTaskLocked(nt service.NewTask) service.Task {
	f.nextID++
	priority := nt.Priority
	if priority == "" {
		priority = service.DefaultPriority
	}
	t := service.Task{
		ID:          fmt.Sprintf("%d", f.nextID),
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    priority,
		Status:      service.StatusIncomplete,
		CreatedAt:   f.epoch.Add(time.Duration(f.nextID-1) * time.Minute),
	}
	f.tasks = append(f.tasks, t)
	return t
}
