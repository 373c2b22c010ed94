package devices

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/domain/ota"
	"github.com/evolution-x/site-metadata/internal/logger"
	"github.com/evolution-x/site-metadata/internal/service/common"
	"github.com/evolution-x/site-metadata/internal/version"
)

// DefaultPreviewWidth is the word wrap of the terminal rendering.
const DefaultPreviewWidth = 80

// PreviewOptions are inputs accepted by the preview subcommand.
type PreviewOptions struct {
	// ConfigPath is the optional settings YAML file.
	ConfigPath string
	// Token is optional; manifests are served without authentication.
	Token string
	// Branch and Device select the guide.
	Branch string
	Device string
	// Out receives the rendered document.
	Out io.Writer
	// Style is a glamour standard style name; empty picks one from the terminal.
	Style string
	// Width is the word wrap; zero means DefaultPreviewWidth.
	Width int
}

// Preview prints the flashing guide of a (device, branch) pair in the terminal.
// A guide already on disk is shown as is; otherwise it is rendered from the
// manifest without being written.
func Preview(ctx context.Context, opts *PreviewOptions) error {
	ctx = logger.WithName(ctx, Tool+".preview")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	clientOpts := []common.Option{
		common.WithCallTimeout(cfg.Timeout),
		common.WithUserAgent(version.UserAgent(Tool)),
	}

	var client *common.Client
	if opts.Token == "" {
		client, err = common.Anonymous(cfg, clientOpts...)
	} else {
		client, err = common.NewClient(cfg, opts.Token, clientOpts...)
	}

	if err != nil {
		return err
	}

	return preview(ctx, newRunner(cfg, client, opts.Out), opts)
}

func preview(ctx context.Context, r *runner, opts *PreviewOptions) error {
	pair := ota.Pair{Device: opts.Device, Branch: opts.Branch}

	doc, err := r.loadGuide(ctx, pair)
	if err != nil {
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = DefaultPreviewWidth
	}

	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}

	term, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("create terminal renderer: %w", err)
	}

	rendered, err := term.Render(string(doc))
	if err != nil {
		return fmt.Errorf("render %s on %s: %w", pair.Device, pair.Branch, err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	_, err = io.WriteString(out, rendered)

	return err
}

// loadGuide reads the stored guide of pair or renders a fresh one.
func (r *runner) loadGuide(ctx context.Context, pair ota.Pair) ([]byte, error) {
	rel := r.guidePath(pair)

	exists, err := r.store.Exists(rel)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.DebugKV(ctx, "Showing stored instructions", "path", rel)

		return r.store.Read(rel)
	}

	logger.DebugKV(ctx, "Rendering instructions from manifest", "device", pair.Device, "branch", pair.Branch)

	return r.renderGuide(ctx, pair)
}

var _ Remote = (*common.Client)(nil)
