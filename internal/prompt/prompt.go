// Package prompt asks the user blocking questions: delete confirmations and
// login credentials. On a terminal it uses huh forms; otherwise it reads
// plain lines, which keeps scripts and tests working.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Prompter is a confirmation gate that can also ask for credentials.
type Prompter interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Credentials(ctx context.Context) (email, password string, err error)
}

// New picks a form prompter when in is a terminal and a line prompter otherwise.
func New(in io.Reader, out io.Writer) Prompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return Form{}
	}
	return NewLine(in, out)
}

// Form prompts with huh.
type Form struct{}

// Confirm asks a yes/no question. Aborting the form declines.
func (Form) Confirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	confirm := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}

// Credentials asks for an email and a hidden password.
func (Form) Credentials(ctx context.Context) (string, string, error) {
	var email, password string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&email).Validate(required),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(email), password, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// Line prompts on out and reads answers line by line from in.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line prompter.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Confirm accepts y or yes, case-insensitively. Anything else, including
// end of input, declines.
func (l *Line) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := l.ask(ctx, prompt+" [y/N]: ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Credentials reads an email line and a password line.
func (l *Line) Credentials(ctx context.Context) (string, string, error) {
	email, err := l.ask(ctx, "Email: ")
	if err != nil {
		return "", "", fmt.Errorf("email required: %w", err)
	}
	password, err := l.ask(ctx, "Password: ")
	if err != nil {
		return "", "", fmt.Errorf("password required: %w", err)
	}
	if email == "" || password == "" {
		return "", "", errors.New("email and password required")
	}
	return email, password, nil
}

func (l *Line) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(l.out, prompt)
	line, err := l.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
