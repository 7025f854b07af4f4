package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"evotodo/internal/chat"
	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
	"evotodo/internal/taskpage"
	"evotodo/internal/tui"
)

func init() {
	Register(&TuiCmd{})
}

// TuiCmd implements the tui command.
type TuiCmd struct{}

func (c *TuiCmd) Name() string      { return "tui" }
func (c *TuiCmd) Aliases() []string { return []string{"ui"} }
func (c *TuiCmd) Synopsis() string  { return "Open the interactive task page" }
func (c *TuiCmd) Usage() string     { return "evotodo tui" }
func (c *TuiCmd) NeedsAuth() bool   { return true }

func (c *TuiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TuiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	page := newPage(cfg, svc)
	channel, err := page.NewChat(chat.WithGreeting(chat.Greeting))
	if err != nil && !errors.Is(err, taskpage.ErrNoAgent) {
		return fail(errOut, err)
	}

	if err := tui.Run(ctx, page, channel); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
