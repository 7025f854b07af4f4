// Package reconcile holds the rule every mutation path follows: a
// successful mutation is followed by a full reload of the task snapshot.
// There is no partial or optimistic patching of local state.
package reconcile

import "context"

// Reloader replaces the local task snapshot with a fresh full read.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(ctx context.Context) error

// Reload implements Reloader.
func (f ReloaderFunc) Reload(ctx context.Context) error {
	return f(ctx)
}

// AfterMutation runs mutate and, only if it succeeds, reloads.
// A mutation error is returned as is and no reload happens. Otherwise the
// reload result is returned, so a non-nil error here with a nil mutation
// error means the change was applied but the snapshot may be stale.
func AfterMutation(ctx context.Context, r Reloader, mutate func(ctx context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	return r.Reload(ctx)
}
