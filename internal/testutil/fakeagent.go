package testutil

import (
	"context"
	"sync"

	"evotodo/internal/service"
)

// FakeAgent is a scripted service.Agent.
// Handle, when set, produces the reply; otherwise Reply/Err are returned.
type FakeAgent struct {
	mu       sync.Mutex
	received []string

	Reply  service.Reply
	Err    error
	Handle func(ctx context.Context, message string) (service.Reply, error)

	// Started, when non-nil, receives one value per call after the message is recorded.
	Started chan struct{}

	// Release, when non-nil, blocks each call until it is closed or receives.
	Release chan struct{}
}

// Chat implements service.Agent.
func (a *FakeAgent) Chat(ctx context.Context, message string) (service.Reply, error) {
	a.mu.Lock()
	a.received = append(a.received, message)
	a.mu.Unlock()

	if a.Started != nil {
		a.Started <- struct{}{}
	}
	if a.Release != nil {
		select {
		case <-a.Release:
		case <-ctx.Done():
			return service.Reply{}, ctx.Err()
		}
	}
	if a.Handle != nil {
		return a.Handle(ctx, message)
	}
	return a.Reply, a.Err
}

// Received returns the messages sent to the agent, in order.
func (a *FakeAgent) Received() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.received))
	copy(out, a.received)
	return out
}

// AgentService combines a FakeService with a FakeAgent so it satisfies
// both service.Service and service.Agent, like the HTTP backend.
type AgentService struct {
	*FakeService
	*FakeAgent
}
