package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/apiresolver/internal/logging"
	"github.com/coral-mesh/apiresolver/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	var tools []string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the resolver as MCP tools over stdio",
		Long: `Serve resolve_functions and list_resolver_types to an MCP client over
stdin/stdout. Logs go to stderr. The configured pid and type become the
defaults of every tool call, and output.limit caps the matches per call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := mcp.New(mcp.Config{
				DefaultPID:   a.cfg.Resolver.PID,
				DefaultType:  a.cfg.Resolver.Type,
				MaxMatches:   a.cfg.Output.Limit,
				EnabledTools: tools,
			}, logging.NewWithComponent(a.logConfig, "mcp"))
			return s.ServeStdio()
		},
	}

	cmd.Flags().StringSliceVar(&tools, "tools", nil, "Only expose these tools")

	return cmd
}
