package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	priority    string
}

// SetFields sets the description and priority flags (for testing).
func (c *AddCmd) SetFields(description, priority string) {
	c.description, c.priority = description, priority
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "evotodo add [--desc <text>] [--priority Low|Medium|High] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		return fail(errOut, err)
	}

	page := newPage(cfg, svc)
	editor := page.Draft()
	editor.BeginCreate()
	editor.SetTitle(title)
	editor.SetDescription(c.description)
	editor.SetPriority(priority)

	task, err := editor.Submit(ctx)
	if err == nil || service.IsStale(err) {
		cfg.Logger().Debug("task created", zap.String("id", task.ID))
	}
	return mutated(cfg, out, errOut, err)
}
