package reconcile

import (
	"context"
	"errors"
	"testing"
)

func TestAfterMutation_ReloadsOnSuccess(t *testing.T) {
	reloads := 0
	r := ReloaderFunc(func(ctx context.Context) error {
		reloads++
		return nil
	})

	err := AfterMutation(context.Background(), r, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloads != 1 {
		t.Errorf("expected 1 reload, got %d", reloads)
	}
}

func TestAfterMutation_NoReloadOnFailure(t *testing.T) {
	reloads := 0
	r := ReloaderFunc(func(ctx context.Context) error {
		reloads++
		return nil
	})
	boom := errors.New("boom")

	err := AfterMutation(context.Background(), r, func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected mutation error, got %v", err)
	}
	if reloads != 0 {
		t.Errorf("expected no reload, got %d", reloads)
	}
}

func TestAfterMutation_ReturnsReloadError(t *testing.T) {
	stale := errors.New("stale")
	r := ReloaderFunc(func(ctx context.Context) error { return stale })

	err := AfterMutation(context.Background(), r, func(ctx context.Context) error { return nil })
	if !errors.Is(err, stale) {
		t.Errorf("expected reload error, got %v", err)
	}
}

func TestAfterMutation_NilReloader(t *testing.T) {
	if err := AfterMutation(context.Background(), nil, func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
