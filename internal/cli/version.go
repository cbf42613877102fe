package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/apiresolver/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "apiresolve version %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
			_, _ = fmt.Fprintf(w, "Build date: %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
			_, _ = fmt.Fprintf(w, "Platform:   %s\n", info.Platform)
		},
	}
}
