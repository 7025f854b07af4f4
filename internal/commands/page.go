package commands

import (
	"errors"
	"fmt"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/output"
	"evotodo/internal/prompt"
	"evotodo/internal/service"
	"evotodo/internal/store"
	"evotodo/internal/taskpage"
)

// newPage builds the task page over svc with the configured reload attempts.
func newPage(cfg *config.Config, svc service.Service) *taskpage.Page {
	attempts := cfg.ReloadAttempts
	if attempts < 1 {
		attempts = config.DefaultReloadAttempts
	}
	return taskpage.New(svc,
		taskpage.WithLogger(cfg.Logger()),
		taskpage.WithStoreOptions(store.WithAttempts(attempts)),
	)
}

// fail prints err and returns its exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.For(err)
}

// refError prints a task reference parse error.
func refError(errOut io.Writer, err error) int {
	if errors.Is(err, ErrTaskRefRequired) {
		fmt.Fprintln(errOut, "error: task reference required")
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.UserError
}

// mutated reports the outcome of a mutation followed by a reload. A failed
// reload after a successful mutation still counts as success.
func mutated(cfg *config.Config, out, errOut io.Writer, err error) int {
	if err != nil && !service.IsStale(err) {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	if err != nil {
		output.FormatStale(errOut, err)
	}
	return exitcode.Success
}

// prompter asks on cfg.Stdin, writing questions to errOut so stdout stays
// clean. Without an input every question is declined.
func prompter(cfg *config.Config, errOut io.Writer) prompt.Prompter {
	return prompt.New(stdin(cfg), errOut)
}
