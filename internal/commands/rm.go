package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/gateway"
	"evotodo/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	literal bool
	yes     bool
}

// SetYes skips the confirmation (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "evotodo rm [--id] [--yes] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.literal, "id", false, "")
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, c.literal)
	if err != nil {
		return refError(errOut, err)
	}

	page := newPage(cfg, svc)
	if err := page.Reload(ctx); err != nil {
		return fail(errOut, err)
	}
	task, err := ref.Resolve(page)
	if err != nil {
		return fail(errOut, err)
	}

	confirm := gateway.Confirmed
	if !c.yes {
		p := prompter(cfg, errOut)
		confirm = gateway.ConfirmFunc(func(ctx context.Context, question string) (bool, error) {
			return p.Confirm(ctx, fmt.Sprintf("%q: %s", task.Title, question))
		})
	}

	err = page.Delete(ctx, task.ID, confirm)
	if errors.Is(err, gateway.ErrDeclined) {
		if !cfg.Quiet {
			fmt.Fprintln(out, err)
		}
		return exitcode.Success
	}
	return mutated(cfg, out, errOut, err)
}
