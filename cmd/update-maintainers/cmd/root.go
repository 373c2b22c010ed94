package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/logger"
	"github.com/evolution-x/site-metadata/internal/service/maintainers"
	"github.com/evolution-x/site-metadata/internal/version"
)

// errUnknownLogLevel is returned for an unrecognised --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel is parsed by logger.ParseLogLevel before the command runs.
	logLevel string

	// rootCmd rebuilds the maintainer rosters.
	rootCmd = &cobra.Command{
		Use:   "update-maintainers <github-token>",
		Short: "Regenerate the active and inactive maintainer rosters.",
		Long: `Reads every device manifest of every OTA branch and writes the maintainers
that currently maintain a device to maintainers.json, and those who only
maintained devices in the past to inactive_maintainers.json.`,
		Args: cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%q: %w", logLevel, errUnknownLogLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return maintainers.Run(ctx, &maintainers.Options{
				ConfigPath: configPath,
				Token:      args[0],
				Out:        cmd.OutOrStdout(),
			})
		},
	}
)

// Execute runs the update-maintainers CLI and exits with non-zero status on error.
func Execute() {
	if code := execute(); code != 0 {
		os.Exit(code)
	}
}

// execute runs the root command and returns the process exit status.
func execute() int {
	if err := rootCmd.Execute(); err != nil {
		console.Fatal(rootCmd.ErrOrStderr(), err)

		return 1
	}

	return 0
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SilenceErrors = true

	version.AttachCobraVersionCommand(rootCmd)
	config.AttachCobraInitCommand(rootCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn or error")
}
