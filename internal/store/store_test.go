package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"evotodo/internal/service"
	"evotodo/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestReload_ReplacesSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	st := New(svc, WithBackOff(noWait))

	assert.Nil(t, st.List(), "empty before first reload")
	_, loaded := st.Snapshot()
	assert.False(t, loaded)

	require.NoError(t, st.Reload(context.Background()))
	if diff := cmp.Diff(svc.Tasks(), st.List()); diff != "" {
		t.Errorf("snapshot mismatch (-remote +local):\n%s", diff)
	}

	svc.AddTask("Call mom", service.StatusComplete)
	assert.Len(t, st.List(), 1, "snapshot only changes on reload")

	require.NoError(t, st.Reload(context.Background()))
	if diff := cmp.Diff(svc.Tasks(), st.List()); diff != "" {
		t.Errorf("snapshot mismatch after second reload (-remote +local):\n%s", diff)
	}
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	loadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := New(svc, WithBackOff(noWait), WithAttempts(2), WithClock(func() time.Time { return loadedAt }))
	require.NoError(t, st.Reload(context.Background()))

	svc.ListTasksErr = errors.New("connection refused")
	err := st.Reload(context.Background())

	var stale *service.StaleReadError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, loadedAt, stale.Since)
	var remote *service.RemoteError
	assert.ErrorAs(t, err, &remote)

	assert.Len(t, st.List(), 1, "previous snapshot is kept")
	assert.Equal(t, "Buy milk", st.List()[0].Title)
	assert.Error(t, st.Stale())

	svc.ListTasksErr = nil
	require.NoError(t, st.Reload(context.Background()))
	assert.NoError(t, st.Stale(), "successful reload clears staleness")
}

func TestReload_RetriesTransientFailures(t *testing.T) {
	svc := &flakyLister{failures: 2, tasks: []service.Task{{ID: "1", Title: "A"}}}
	st := New(svc, WithBackOff(noWait), WithAttempts(3))

	require.NoError(t, st.Reload(context.Background()))
	assert.Equal(t, 3, svc.calls)
	assert.Len(t, st.List(), 1)
}

func TestReload_BoundedAttempts(t *testing.T) {
	svc := &flakyLister{failures: 10}
	st := New(svc, WithBackOff(noWait), WithAttempts(3))

	err := st.Reload(context.Background())
	assert.True(t, service.IsStale(err))
	assert.Equal(t, 3, svc.calls)
}

func TestReload_UnauthorizedIsNotRetried(t *testing.T) {
	svc := &flakyLister{failures: 10, err: fmt.Errorf("list: %w", service.ErrUnauthorized)}
	st := New(svc, WithBackOff(noWait), WithAttempts(5))

	err := st.Reload(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Equal(t, 1, svc.calls)
}

func TestReload_EarlierReloadDoesNotOverwriteLater(t *testing.T) {
	l := newGatedLister()
	st := New(l, WithBackOff(noWait), WithAttempts(1))
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- st.Reload(ctx) }()
	<-l.entered

	second := make(chan error, 1)
	go func() { second <- st.Reload(ctx) }()
	<-l.entered

	newer := []service.Task{{ID: "1", Title: "after mutation"}}
	older := []service.Task{{ID: "1", Title: "before mutation"}}

	l.respond(2, newer)
	require.NoError(t, <-second)
	l.respond(1, older)
	require.NoError(t, <-first)

	assert.Equal(t, newer, st.List())
}

func TestListReturnsCopy(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	st := New(svc, WithBackOff(noWait))
	require.NoError(t, st.Reload(context.Background()))

	got := st.List()
	got[0].Title = "changed"

	assert.Equal(t, "Buy milk", st.List()[0].Title)
	task, ok := st.Find(got[0].ID)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", task.Title)
}

type flakyLister struct {
	failures int
	err      error
	tasks    []service.Task
	calls    int
}

func (f *flakyLister) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, errors.New("temporary failure")
	}
	return f.tasks, nil
}

// gatedLister blocks each ListTasks call until the test responds to it.
type gatedLister struct {
	mu      sync.Mutex
	calls   int
	gates   map[int]chan []service.Task
	entered chan struct{}
}

func newGatedLister() *gatedLister {
	return &gatedLister{
		gates:   make(map[int]chan []service.Task),
		entered: make(chan struct{}, 4),
	}
}

func (g *gatedLister) gate(n int) chan []service.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[n]
	if !ok {
		ch = make(chan []service.Task, 1)
		g.gates[n] = ch
	}
	return ch
}

func (g *gatedLister) ListTasks(ctx context.Context) ([]service.Task, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	ch := g.gate(n)
	g.entered <- struct{}{}
	return <-ch, nil
}

func (g *gatedLister) respond(n int, tasks []service.Task) {
	g.gate(n) <- tasks
}
