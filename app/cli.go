package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchktools/fast-telemetry/config"
	"github.com/searchktools/fast-telemetry/core"
	"github.com/searchktools/fast-telemetry/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
)

// NewRootCommand builds the fast-telemetry command tree
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "fast-telemetry",
		Short: "fast-telemetry serves the user path telemetry API",
		Long: `fast-telemetry is a small HTTP/1.1 server that stores user interaction
timings per event and answers mean path length queries over time ranges.

Settings come from the config file given with --config; FT_* environment
variables override it. Run "fast-telemetry env" to list them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log := logging.New(cfg.Log)
			log.Info("starting", "version", Version, "commit", Commit, "config", configPath)

			a, err := New(cfg, log, core.PolicySingleInstance)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "config file path (yaml, json, toml or env)")
	root.Flags().StringVar(&logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")
	_ = root.MarkFlagRequired("config")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "fast-telemetry %s (%s)\n", Version, Commit)
			},
		},
		&cobra.Command{
			Use:   "env",
			Short: "List the environment variables read on top of the config file",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.EnvHelp())
			},
		},
	)
	return root
}
