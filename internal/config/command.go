package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errConfigExists is returned by init-config when the target file is present.
var errConfigExists = errors.New("configuration file already exists")

// AttachCobraInitCommand attaches an `init-config [path]` subcommand that
// writes the default configuration, refusing to overwrite an existing file.
func AttachCobraInitCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s: %w", path, errConfigExists)
			}

			if err := Save(path, Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)

			return nil
		},
	})
}
