package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/apiresolver/internal/cli/format"
	"github.com/coral-mesh/apiresolver/internal/filter"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		limit        int
		where        string
		demangle     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Print the functions matching one or more queries",
		Example: `  apiresolve resolve 'exports:libc.so*!open*'
  apiresolve resolve -p 1234 -t go 'methods:net/http!Client.*' --format json
  apiresolve resolve -t kernel 'vfs_*' --where 'has_size && size > 256u'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.cfg.Output
			if cmd.Flags().Changed("format") {
				out.Format = outputFormat
			}
			if cmd.Flags().Changed("limit") {
				out.Limit = limit
			}
			if cmd.Flags().Changed("demangle") {
				out.Demangle = demangle
			}
			if out.Limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}

			formatter, err := format.NewFormatter(format.OutputFormat(out.Format), format.Options{Demangle: out.Demangle})
			if err != nil {
				return err
			}

			var f *filter.Filter
			if where != "" {
				if f, err = filter.Compile(where); err != nil {
					return err
				}
			}

			h, ok := a.factory().Make(a.cfg.Resolver.Type)
			if !ok {
				return unavailableError(a)
			}
			defer func() { _ = h.Close() }()

			// One handle serves the whole batch, so later queries reuse what
			// the first one loaded.
			var rows []format.Row
			for _, q := range args {
				matched, err := collect(h, q, out.Limit, f)
				rows = append(rows, matched...)
				if err != nil {
					_ = formatter.Format(cmd.OutOrStdout(), rows)
					return err
				}
			}

			return formatter.Format(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "o", "text", "Output format (text, json, csv)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many matches per query (0 is unlimited)")
	cmd.Flags().StringVarP(&where, "where", "w", "", "CEL filter over name, address, size, has_size, module")
	cmd.Flags().BoolVar(&demangle, "demangle", false, "Demangle C++ and Rust names")

	return cmd
}

// collect runs one query. Matches found before a failure are returned with
// the error.
func collect(h *resolver.Handle, query string, limit int, f *filter.Filter) ([]format.Row, error) {
	var rows []format.Row
	visit := func(m resolver.Match) bool {
		rows = append(rows, format.Row{Query: query, Match: m})
		return limit == 0 || len(rows) < limit
	}

	filterErr := func() error { return nil }
	if f != nil {
		visit, filterErr = f.Visitor(visit)
	}

	if err := h.EnumerateMatches(query, visit); err != nil {
		return rows, err
	}
	return rows, filterErr()
}

func unavailableError(a *app) error {
	return fmt.Errorf("resolver type %q is not available for pid %d (run 'apiresolve types' to list types)",
		a.cfg.Resolver.Type, a.cfg.Resolver.PID)
}
