package service

import "context"

// Service defines the interface for the remote task persistence service.
// All task storage goes through this interface.
// Commands never import a backend SDK directly.
type Service interface {
	// ListTasks returns the full task collection in service order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, t NewTask) (Task, error)

	// UpdateTask applies a partial update and returns the stored task.
	UpdateTask(ctx context.Context, id string, fields TaskFields) (Task, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id string) error
}

// Agent is the remote conversational agent.
// Backends that can reach an agent implement it alongside Service;
// callers discover it with a type assertion.
type Agent interface {
	// Chat sends one user message. No conversation history is sent.
	Chat(ctx context.Context, message string) (Reply, error)
}
