package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List resolver types and whether they work for the target process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.factory()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(w, "TYPE\tAVAILABLE")
			for _, typ := range f.Types() {
				available := "no"
				if f.Available(typ) {
					available = "yes"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", typ, available)
			}
			return w.Flush()
		},
	}
}
