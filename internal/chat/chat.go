// Package chat is the conversational channel to the remote agent.
//
// The channel allows one outstanding turn at a time. The agent may change
// tasks on the server; the only signal the client acts on is the reply's
// refresh flag, which triggers a reload. Reply text is never inspected.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"evotodo/internal/reconcile"
	"evotodo/internal/service"
)

// Greeting is the agent message a conversation starts with.
const Greeting = "Hello! I am your Todo AI. How can I help you today?"

// FailureText is appended as the agent's message when a turn fails.
const FailureText = "Sorry, I encountered an error. Please try again."

var (
	// ErrEmptyMessage is returned for blank input. Nothing is sent or recorded.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrPending is returned while a previous turn is still outstanding.
	// The message is dropped, not queued.
	ErrPending = errors.New("waiting for the previous reply")
)

// Role is who wrote a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is one entry of the conversation.
type Message struct {
	Role Role
	Text string
}

// State is the channel state.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Turn is the outcome of a Send that reached the agent.
type Turn struct {
	// Reply is the agent message that was appended.
	Reply Message
	// Failed is set when the agent call failed and Reply is the failure text.
	Failed bool
	// Refreshed is set when the agent asked for a reload.
	Refreshed bool
}

// Channel holds the conversation and the Idle/Pending gate.
type Channel struct {
	agent       service.Agent
	reloader    reconcile.Reloader
	log         *zap.Logger
	greeting    string
	failureText string

	mu       sync.Mutex
	state    State
	messages []Message
}

// Option configures a Channel.
type Option func(*Channel)

// WithGreeting starts the conversation with an agent message.
func WithGreeting(text string) Option {
	return func(c *Channel) {
		c.greeting = text
	}
}

// WithFailureText overrides FailureText.
func WithFailureText(text string) Option {
	return func(c *Channel) {
		c.failureText = text
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Channel) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an idle channel talking to agent. Refresh directives reload through r.
func New(agent service.Agent, r reconcile.Reloader, opts ...Option) *Channel {
	c := &Channel{
		agent:       agent,
		reloader:    r,
		log:         zap.NewNop(),
		failureText: FailureText,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.greeting != "" {
		c.messages = append(c.messages, Message{Role: RoleAgent, Text: c.greeting})
	}
	return c
}

// State returns the current state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the conversation in order.
func (c *Channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Send runs one turn. Blank text and calls made while Pending return
// ErrEmptyMessage and ErrPending without touching the conversation.
//
// Otherwise the user message is appended and the raw text is sent on its
// own, without history. The returned error is the *service.RemoteError of
// a failed call, or the reload error after a refresh directive; in both
// cases the Turn is still valid and the channel is Idle again.
func (c *Channel) Send(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == Pending {
		c.mu.Unlock()
		return Turn{}, ErrPending
	}
	c.state = Pending
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text})
	c.mu.Unlock()

	reply, err := c.agent.Chat(ctx, text)
	if err != nil {
		c.log.Warn("agent call failed", zap.Error(err))
		msg := Message{Role: RoleAgent, Text: c.failureText}
		c.finish(msg)
		return Turn{Reply: msg, Failed: true}, service.Remote("chat", err)
	}

	msg := Message{Role: RoleAgent, Text: reply.Text}
	turn := Turn{Reply: msg, Refreshed: reply.Refresh}

	// The reply is shown before the reload so the state flips back to Idle
	// only after the snapshot reflects the agent's change.
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	var reloadErr error
	if reply.Refresh && c.reloader != nil {
		c.log.Debug("agent requested refresh")
		reloadErr = c.reloader.Reload(ctx)
	}

	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
	return turn, reloadErr
}

func (c *Channel) finish(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	c.state = Idle
}
