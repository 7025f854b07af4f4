// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"evotodo/internal/service"
)

const (
	// Success indicates successful completion, including a declined delete
	// and a mutation whose follow-up reload failed.
	Success = 0

	// UserError indicates a user error (bad args, validation, unknown task).
	UserError = 1

	// AuthError indicates a missing or rejected credential.
	AuthError = 2

	// BackendError indicates a failed round trip to the task or agent service.
	BackendError = 3
)

// For maps an error to an exit code. Validation errors and unknown tasks
// are the user's; credential problems are auth errors; everything else is
// a backend error.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case service.IsValidation(err), errors.Is(err, service.ErrNotFound):
		return UserError
	}
	return BackendError
}
