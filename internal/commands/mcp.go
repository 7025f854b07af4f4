package commands

import (
	"context"
	"flag"
	"io"

	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/mcptools"
	"evotodo/internal/service"
)

func init() {
	Register(&McpCmd{})
}

// McpCmd implements the mcp command. Stdout carries the protocol, so
// nothing else may be written there.
type McpCmd struct{}

func (c *McpCmd) Name() string      { return "mcp" }
func (c *McpCmd) Aliases() []string { return nil }
func (c *McpCmd) Synopsis() string  { return "Serve task tools to an agent over stdio (MCP)" }
func (c *McpCmd) Usage() string     { return "evotodo mcp" }
func (c *McpCmd) NeedsAuth() bool   { return true }

func (c *McpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *McpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	cfg.Logger().Debug("serving mcp on stdio")
	if err := mcptools.Serve(newPage(cfg, svc), Version); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
