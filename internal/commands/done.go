package commands

import (
	"context"
	"flag"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It flips the task between
// Incomplete and Complete.
type DoneCmd struct {
	literal bool
}

// SetLiteral makes the reference a literal task id (for testing).
func (c *DoneCmd) SetLiteral(literal bool) {
	c.literal = literal
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task between open and completed" }
func (c *DoneCmd) Usage() string     { return "evotodo done [--id] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.literal, "id", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	_, err = page.Toggle(ctx, task)
	return mutated(cfg, out, errOut, err)
}
