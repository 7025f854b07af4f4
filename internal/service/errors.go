package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is wrapped by backends when a task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is wrapped by backends when the credential is missing or rejected.
	ErrUnauthorized = errors.New("not authenticated")
)

// ValidationError is a local input error. No remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteError is a failed round trip to the task or agent service.
type RemoteError struct {
	Op    string
	Cause error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// StaleReadError reports a failed reload. The previous snapshot is still
// shown; Since is when that snapshot was loaded (zero if never).
type StaleReadError struct {
	Cause error
	Since time.Time
}

func (e *StaleReadError) Error() string {
	return fmt.Sprintf("task list may be stale: %v", e.Cause)
}

func (e *StaleReadError) Unwrap() error {
	return e.Cause
}

// Remote wraps err as a RemoteError for op. A nil err stays nil and an
// existing RemoteError is returned unchanged.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Cause: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStale reports whether err is a StaleReadError.
func IsStale(err error) bool {
	var se *StaleReadError
	return errors.As(err, &se)
}
