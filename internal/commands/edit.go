package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given, so an
// explicit empty value can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value, o.set = s, true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	literal     bool
	title       optString
	description optString
	priority    optString
}

// SetTitle sets the --title flag (for testing).
func (c *EditCmd) SetTitle(s string) { c.title.Set(s) }

// SetDescription sets the --desc flag (for testing).
func (c *EditCmd) SetDescription(s string) { c.description.Set(s) }

// SetPriority sets the --priority flag (for testing).
func (c *EditCmd) SetPriority(s string) { c.priority.Set(s) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change the title, description or priority of a task" }
func (c *EditCmd) Usage() string {
	return "evotodo edit [--id] [--title <t>] [--desc <d>] [--priority <p>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.literal, "id", false, "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, c.literal)
	if err != nil {
		return refError(errOut, err)
	}
	if !c.title.set && !c.description.set && !c.priority.set {
		fmt.Fprintln(errOut, "error: nothing to update (use --title, --desc or --priority)")
		return exitcode.UserError
	}

	var priority service.Priority
	if c.priority.set {
		if priority, err = service.ParsePriority(c.priority.value); err != nil {
			return fail(errOut, err)
		}
	}

	page := newPage(cfg, svc)
	if err := page.Reload(ctx); err != nil {
		return fail(errOut, err)
	}
	task, err := ref.Resolve(page)
	if err != nil {
		return fail(errOut, err)
	}

	editor := page.Draft()
	editor.BeginEdit(task)
	if c.title.set {
		editor.SetTitle(c.title.value)
	}
	if c.description.set {
		editor.SetDescription(c.description.value)
	}
	if c.priority.set {
		editor.SetPriority(priority)
	}

	_, err = editor.Submit(ctx)
	return mutated(cfg, out, errOut, err)
}
