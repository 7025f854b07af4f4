package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"evotodo/internal/chat"
	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/output"
	"evotodo/internal/service"
)

func init() {
	Register(&ChatCmd{})
}

// ChatCmd implements the chat command: one turn when a message is given,
// otherwise a conversation read line by line from stdin.
type ChatCmd struct{}

func (c *ChatCmd) Name() string      { return "chat" }
func (c *ChatCmd) Aliases() []string { return []string{"ask"} }
func (c *ChatCmd) Synopsis() string  { return "Talk to the task assistant" }
func (c *ChatCmd) Usage() string     { return "evotodo chat [message...]" }
func (c *ChatCmd) NeedsAuth() bool   { return true }

func (c *ChatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ChatCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	page := newPage(cfg, svc)

	if len(args) > 0 {
		channel, err := page.NewChat()
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		code, _ := turn(ctx, channel, strings.Join(args, " "), out, errOut)
		return code
	}

	channel, err := page.NewChat(chat.WithGreeting(chat.Greeting))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	for _, msg := range channel.Messages() {
		output.FormatChatMessage(out, string(msg.Role), msg.Text)
	}

	scanner := bufio.NewScanner(stdin(cfg))
	for {
		if !cfg.Quiet {
			fmt.Fprint(out, string(chat.RoleUser)+"> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit", "/exit", "/quit":
			return exitcode.Success
		}
		if _, err := turn(ctx, channel, line, out, errOut); errors.Is(err, context.Canceled) {
			break
		}
	}
	if !cfg.Quiet {
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}

// turn sends one message and prints the agent's reply. A refresh that
// failed after the reply only earns a warning.
func turn(ctx context.Context, channel *chat.Channel, text string, out, errOut io.Writer) (int, error) {
	t, err := channel.Send(ctx, text)
	if errors.Is(err, chat.ErrEmptyMessage) {
		fmt.Fprintln(errOut, "error: message required")
		return exitcode.UserError, err
	}
	if t.Reply.Text != "" {
		output.FormatChatMessage(out, string(t.Reply.Role), t.Reply.Text)
	}
	switch {
	case err == nil:
		return exitcode.Success, nil
	case service.IsStale(err):
		output.FormatStale(errOut, err)
		return exitcode.Success, err
	}
	return fail(errOut, err), err
}

func stdin(cfg *config.Config) io.Reader {
	if cfg.Stdin == nil {
		return strings.NewReader("")
	}
	return cfg.Stdin
}
