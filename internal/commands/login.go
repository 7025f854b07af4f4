package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"evotodo/internal/backend/googletasks"
	"evotodo/internal/backend/httpapi"
	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the task service" }
func (c *LoginCmd) Usage() string     { return "evotodo login" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch cfg.Backend {
	case config.BackendLocal:
		if !cfg.Quiet {
			fmt.Fprintln(out, "no login needed for the local backend")
		}
		return exitcode.Success
	case config.BackendGoogleTasks:
		return c.loginGoogle(ctx, cfg, out, errOut)
	}
	return c.loginHTTP(ctx, cfg, out, errOut)
}

// loginHTTP exchanges email and password for a bearer token.
func (c *LoginCmd) loginHTTP(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	if token, err := cfg.LoadToken(); err == nil && token.Valid() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	email, password, err := prompter(cfg, errOut).Credentials(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	token, err := httpapi.Login(ctx, cfg.ServerURL, email, password, nil)
	if err != nil {
		return fail(errOut, err)
	}
	return saveToken(cfg, token, out, errOut)
}

// loginGoogle runs the browser flow against Google.
// A stored token only counts if it can be refreshed.
func (c *LoginCmd) loginGoogle(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		googletasks.OAuthClientHelp(errOut, cfg.Dir)
		return exitcode.AuthError
	}

	if token, err := cfg.LoadToken(); err == nil && token.RefreshToken != "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	token, err := googletasks.Login(ctx, cfg, errOut)
	if err != nil {
		if errors.Is(err, googletasks.ErrNoOAuthClient) {
			googletasks.OAuthClientHelp(errOut, cfg.Dir)
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	return saveToken(cfg, token, out, errOut)
}
