// Package taskpage wires the task store, the draft editor, the mutation
// gateway and the chat channel together the way every front end uses them.
//
// All mutations made through a Page are followed by a full reload.
package taskpage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evotodo/internal/chat"
	"evotodo/internal/draft"
	"evotodo/internal/gateway"
	"evotodo/internal/reconcile"
	"evotodo/internal/service"
	"evotodo/internal/store"
)

// ErrNoAgent is returned by NewChat when the backend has no agent.
var ErrNoAgent = errors.New("chat is not available for this backend")

// Page is one user's view of their tasks.
type Page struct {
	svc   service.Service
	log   *zap.Logger
	store *store.Store
	gw    *gateway.Gateway
	draft *draft.Editor
}

type options struct {
	log       *zap.Logger
	storeOpts []store.Option
}

// Option configures a Page.
type Option func(*options)

// WithLogger sets the logger shared by all parts of the page.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithStoreOptions passes options to the task store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// New creates a page over svc. The snapshot is empty until Reload.
func New(svc service.Service, opts ...Option) *Page {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	st := store.New(svc, append([]store.Option{store.WithLogger(o.log.Named("store"))}, o.storeOpts...)...)
	gw := gateway.New(svc, o.log.Named("gateway"))
	return &Page{
		svc:   svc,
		log:   o.log,
		store: st,
		gw:    gw,
		draft: draft.New(gw, st, o.log.Named("draft")),
	}
}

// Reload replaces the snapshot with the server's current tasks.
func (p *Page) Reload(ctx context.Context) error {
	return p.store.Reload(ctx)
}

// Tasks returns the current snapshot in server order.
func (p *Page) Tasks() []service.Task {
	return p.store.List()
}

// Find looks a task up by id in the current snapshot.
func (p *Page) Find(id string) (service.Task, bool) {
	return p.store.Find(id)
}

// Stale returns the last reload failure, or nil if the snapshot is current.
func (p *Page) Stale() error {
	return p.store.Stale()
}

// Draft returns the page's single draft editor.
func (p *Page) Draft() *draft.Editor {
	return p.draft
}

// Gateway returns the mutation gateway. Mutations made directly through it
// are not followed by a reload.
func (p *Page) Gateway() *gateway.Gateway {
	return p.gw
}

// Toggle flips the status of task and reloads.
func (p *Page) Toggle(ctx context.Context, task service.Task) (service.Task, error) {
	var updated service.Task
	err := reconcile.AfterMutation(ctx, p.store, func(ctx context.Context) error {
		var err error
		updated, err = p.gw.ToggleStatus(ctx, task)
		return err
	})
	return updated, err
}

// Delete removes the task with id once confirm approves, then reloads.
// A declined confirmation returns gateway.ErrDeclined and changes nothing.
func (p *Page) Delete(ctx context.Context, id string, confirm gateway.Confirmer) error {
	return reconcile.AfterMutation(ctx, p.store, func(ctx context.Context) error {
		return p.gw.Delete(ctx, id, confirm)
	})
}

// NewChat opens a conversation with the backend's agent. Refresh
// directives reload this page's store.
func (p *Page) NewChat(opts ...chat.Option) (*chat.Channel, error) {
	agent, ok := p.svc.(service.Agent)
	if !ok {
		return nil, ErrNoAgent
	}
	opts = append([]chat.Option{chat.WithLogger(p.log.Named("chat"))}, opts...)
	return chat.New(agent, p.store, opts...), nil
}
