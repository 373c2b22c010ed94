package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/service/blog"
	"github.com/evolution-x/site-metadata/internal/version"
)

var (
	// opts collects the flag values; empty ones are prompted for.
	opts blog.Options

	// rootCmd creates a blog post.
	rootCmd = &cobra.Command{
		Use:   "create-blog",
		Short: "Create a website blog post.",
		Long: `Creates posts/<id>.json with the next free id and registers the id in blogs.json.

Every value not given as a flag is asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts.In = cmd.InOrStdin()
			opts.Out = cmd.OutOrStdout()

			return blog.Run(ctx, &opts)
		},
	}
)

// Execute runs the create-blog CLI and exits with non-zero status on error.
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

	flags := rootCmd.Flags()
	flags.StringVar(&opts.Root, "root", ".", "directory holding blogs.json, posts and post_backgrounds")
	flags.StringVar(&opts.Background, "background", "", "background name or number")
	flags.StringVar(&opts.GitHub, "github", "", "author GitHub username")
	flags.StringVar(&opts.Author, "author", "", "author name")
	flags.StringVar(&opts.Title, "title", "", "post title")
	flags.StringVar(&opts.Content, "content", "", "post content")
	flags.StringVar(&opts.Date, "date", "", "post date (MM-DD-YYYY)")
}
