package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/output"
	"evotodo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `evotodo` (no args) and `evotodo list`.
type ListCmd struct {
	pending bool
	done    bool
	long    bool
}

// SetFilter sets the filter flags (for testing).
func (c *ListCmd) SetFilter(pending, done, long bool) {
	c.pending, c.done, c.long = pending, done, long
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "evotodo list [--pending|--done] [--long]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.pending, "pending", false, "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.long, "long", false, "")
	fs.BoolVar(&c.long, "l", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.pending && c.done {
		fmt.Fprintln(errOut, "error: cannot use both --pending and --done")
		return exitcode.UserError
	}

	page := newPage(cfg, svc)
	if err := page.Reload(ctx); err != nil {
		return fail(errOut, err)
	}

	shown := 0
	// numbering follows the unfiltered snapshot so refs stay valid
	for i, task := range page.Tasks() {
		if (c.pending && task.Done()) || (c.done && !task.Done()) {
			continue
		}
		if c.long {
			output.FormatTaskLong(out, i+1, task)
		} else {
			output.FormatTask(out, i+1, task)
		}
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
