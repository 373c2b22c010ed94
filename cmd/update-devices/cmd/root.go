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
	"github.com/evolution-x/site-metadata/internal/service/devices"
	"github.com/evolution-x/site-metadata/internal/version"
)

// errUnknownLogLevel is returned for an unrecognised --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel is parsed by logger.ParseLogLevel before any command runs.
	logLevel string
	// previewStyle and previewWidth tune the terminal rendering of preview.
	previewStyle string
	previewWidth int

	// rootCmd regenerates device metadata.
	rootCmd = &cobra.Command{
		Use:   "update-devices <github-token>",
		Short: "Regenerate the device list, images and flashing instructions.",
		Long: `Lists every branch of the OTA repository and the device manifests built on it.

Writes devices.json with the branches of every device, fetches missing device
images and creates a flashing guide for every (device, branch) pair that has none.
Existing images and guides are never overwritten.`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: setLogLevel,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return devices.Run(ctx, &devices.Options{
				ConfigPath: configPath,
				Token:      args[0],
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	// previewCmd shows one flashing guide in the terminal.
	previewCmd = &cobra.Command{
		Use:   "preview <branch> <device> [github-token]",
		Short: "Render the flashing instructions of a device in the terminal.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts := &devices.PreviewOptions{
				ConfigPath: configPath,
				Branch:     args[0],
				Device:     args[1],
				Out:        cmd.OutOrStdout(),
				Style:      previewStyle,
				Width:      previewWidth,
			}

			if len(args) > 2 {
				opts.Token = args[2]
			}

			return devices.Preview(ctx, opts)
		},
	}
)

// Execute runs the update-devices CLI and exits with non-zero status on error.
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

func setLogLevel(*cobra.Command, []string) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%q: %w", logLevel, errUnknownLogLevel)
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SilenceErrors = true

	version.AttachCobraVersionCommand(rootCmd)
	config.AttachCobraInitCommand(rootCmd)
	rootCmd.AddCommand(previewCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn or error")

	previewCmd.Flags().StringVar(&previewStyle, "style", "", "glamour style: dark, light, notty or ascii (default detected from the terminal)")
	previewCmd.Flags().IntVar(&previewWidth, "width", devices.DefaultPreviewWidth, "word wrap width")
}
