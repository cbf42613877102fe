// Package cli implements the apiresolve command line.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/apiresolver/internal/config"
	"github.com/coral-mesh/apiresolver/internal/logging"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
	"github.com/coral-mesh/apiresolver/pkg/resolver/builtin"
)

// app carries the configuration shared by all subcommands. It is filled in
// by the root command's PersistentPreRunE.
type app struct {
	configDir string
	pid       int
	typ       string
	logLevel  string

	cfg       *config.Config
	logConfig logging.Config
	logger    zerolog.Logger
}

// NewRootCmd creates the apiresolve command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "apiresolve",
		Short: "Find functions in running processes by name",
		Long: `Locate functions and methods inside a running process with glob queries,
whatever mechanism knows about them:

  module   exported, imported and section symbols of loaded ELF modules
           exports:libc.so*!open*   imports:/usr/bin/curl!SSL_*
  go       functions and methods from a Go program's runtime tables
           functions:net/http!Get   methods:net/http!Client.Do
  kernel   kernel text symbols from /proc/kallsyms
           vfs_*   ext4!ext4_file_*

Append /i to a query for case-insensitive matching.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config", "", "Configuration directory (default $APIRESOLVE_CONFIG or ~/.apiresolve)")
	flags.IntVarP(&a.pid, "pid", "p", 0, "Target process ID (0 is apiresolve itself)")
	flags.StringVarP(&a.typ, "type", "t", builtin.DefaultType, "Resolver type (module, go, kernel)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newResolveCmd(a))
	cmd.AddCommand(newTypesCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load layers flags over the configuration file and environment.
func (a *app) load(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if a.configDir != "" {
		loader = config.NewLoaderAt(a.configDir)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "pid":
			cfg.Resolver.PID = a.pid
		case "type":
			cfg.Resolver.Type = a.typ
		case "log-level":
			cfg.Log.Level = a.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logConfig = logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	}
	a.logger = logging.New(a.logConfig)
	return nil
}

func (a *app) factory() *resolver.Factory {
	return builtin.NewFactory(resolver.Options{
		PID:    a.cfg.Resolver.PID,
		Logger: a.logger,
	})
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
