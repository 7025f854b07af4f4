package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"evotodo/internal/backend/httpapi"
	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command. The service logs the new
// account in, so the returned token is stored like after login.
type SignupCmd struct{}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account on the task service" }
func (c *SignupCmd) Usage() string     { return "evotodo signup" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Backend == config.BackendLocal || cfg.Backend == config.BackendGoogleTasks {
		fmt.Fprintf(errOut, "error: signup is not available for the %s backend\n", cfg.Backend)
		return exitcode.UserError
	}

	email, password, err := prompter(cfg, errOut).Credentials(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	token, err := httpapi.Signup(ctx, cfg.ServerURL, email, password, nil)
	if err != nil {
		var se *httpapi.StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest {
			// e.g. "Email already registered"
			fmt.Fprintf(errOut, "error: %s\n", se.Detail)
			return exitcode.UserError
		}
		return fail(errOut, err)
	}
	return saveToken(cfg, token, out, errOut)
}

func saveToken(cfg *config.Config, token *oauth2.Token, out, errOut io.Writer) int {
	if err := cfg.SaveToken(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
