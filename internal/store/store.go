// Package store holds the local snapshot of the task collection.
//
// The snapshot is only ever replaced wholesale by Reload; there is no
// operation that patches a single task. Readers always see a complete list.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"evotodo/internal/service"
)

// DefaultAttempts is the number of tries a reload makes before giving up.
const DefaultAttempts = 3

// Lister is the read side of service.Service.
type Lister interface {
	ListTasks(ctx context.Context) ([]service.Task, error)
}

// Snapshot is an immutable view of the task collection at one point in time.
type Snapshot struct {
	Tasks    []service.Task
	LoadedAt time.Time

	seq uint64
}

// Store is the authoritative local copy of the user's tasks.
type Store struct {
	svc      Lister
	log      *zap.Logger
	attempts uint
	backoff  func() backoff.BackOff
	now      func() time.Time

	// seq numbers reloads in the order they start.
	seq     atomic.Uint64
	current atomic.Pointer[Snapshot]

	mu       sync.Mutex
	stale    *service.StaleReadError
	staleSeq uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAttempts bounds the number of list calls one reload may make. Values below 1 mean 1.
func WithAttempts(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = 1
		}
		s.attempts = uint(n)
	}
}

// WithBackOff sets the retry schedule. The factory is called once per reload.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *Store) {
		s.backoff = f
	}
}

// WithClock overrides the time source used for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store reading from svc. Call Reload to populate it.
func New(svc Lister, opts ...Option) *Store {
	s := &Store{
		svc:      svc,
		log:      zap.NewNop(),
		attempts: DefaultAttempts,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload fetches the full task collection and replaces the snapshot.
//
// Listing is idempotent, so transient failures are retried up to the
// configured number of attempts. On failure the previous snapshot is kept
// and a *service.StaleReadError is returned.
//
// Concurrent reloads are ordered by start: a reload never replaces a
// snapshot produced by a reload that started after it.
func (s *Store) Reload(ctx context.Context) error {
	seq := s.seq.Add(1)
	attempt := 0

	tasks, err := backoff.Retry(ctx, func() ([]service.Task, error) {
		attempt++
		tasks, err := s.svc.ListTasks(ctx)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) || ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return tasks, nil
	},
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(s.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Debug("reload attempt failed",
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return s.fail(seq, attempt, err)
	}

	snap := &Snapshot{
		Tasks:    append([]service.Task(nil), tasks...),
		LoadedAt: s.now(),
		seq:      seq,
	}
	if !s.install(snap) {
		s.log.Debug("discarding superseded reload", zap.Uint64("seq", seq))
		return nil
	}
	s.log.Debug("tasks reloaded", zap.Int("count", len(tasks)), zap.Int("attempts", attempt))
	return nil
}

func (s *Store) install(snap *Snapshot) bool {
	for {
		cur := s.current.Load()
		if cur != nil && cur.seq > snap.seq {
			return false
		}
		if s.current.CompareAndSwap(cur, snap) {
			return true
		}
	}
}

func (s *Store) fail(seq uint64, attempts int, err error) error {
	var since time.Time
	if cur := s.current.Load(); cur != nil {
		since = cur.LoadedAt
	}
	stale := &service.StaleReadError{
		Cause: service.Remote("list tasks", err),
		Since: since,
	}

	s.mu.Lock()
	if seq > s.staleSeq {
		s.stale = stale
		s.staleSeq = seq
	}
	s.mu.Unlock()

	s.log.Warn("reload failed, keeping previous tasks",
		zap.Int("attempts", attempts),
		zap.Time("since", since),
		zap.Error(err))
	return stale
}

// List returns the tasks of the current snapshot in service order.
// The returned slice is a copy.
func (s *Store) List() []service.Task {
	cur := s.current.Load()
	if cur == nil {
		return nil
	}
	return append([]service.Task(nil), cur.Tasks...)
}

// Snapshot returns the current snapshot and whether one has been loaded.
func (s *Store) Snapshot() (Snapshot, bool) {
	cur := s.current.Load()
	if cur == nil {
		return Snapshot{}, false
	}
	snap := *cur
	snap.Tasks = append([]service.Task(nil), cur.Tasks...)
	return snap, true
}

// Find returns the task with the given ID from the current snapshot.
func (s *Store) Find(id string) (service.Task, bool) {
	cur := s.current.Load()
	if cur == nil {
		return service.Task{}, false
	}
	for _, t := range cur.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Stale returns the most recent reload failure if no later reload has
// succeeded, or nil when the snapshot is current.
func (s *Store) Stale() error {
	cur := s.current.Load()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale == nil {
		return nil
	}
	if cur != nil && cur.seq > s.staleSeq {
		return nil
	}
	return s.stale
}
