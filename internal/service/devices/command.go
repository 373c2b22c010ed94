package devices

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/domain/ota"
	"github.com/evolution-x/site-metadata/internal/instructions"
	"github.com/evolution-x/site-metadata/internal/logger"
	"github.com/evolution-x/site-metadata/internal/repository/artifact"
	"github.com/evolution-x/site-metadata/internal/repository/marker"
	"github.com/evolution-x/site-metadata/internal/service/common"
	"github.com/evolution-x/site-metadata/internal/version"
)

// Tool is the name the pipeline logs and locks under.
const Tool = "update-devices"

// Options are inputs accepted by the update-devices entry point.
type Options struct {
	// ConfigPath is the optional settings YAML file.
	ConfigPath string
	// Token is the GitHub access credential.
	Token string
	// Out receives the human-facing listing and follow-up actions.
	Out io.Writer
}

// Remote is everything the pipeline reads from the network.
type Remote interface {
	common.BranchSource
	FetchManifest(ctx context.Context, branch, device string) (*ota.DeviceManifest, error)
	ProbeImage(ctx context.Context, rawURL string) (bool, error)
	DownloadImage(ctx context.Context, rawURL string) ([]byte, error)
}

// runner holds the collaborators of a single run.
type runner struct {
	// cfg is the validated configuration.
	cfg *config.Config
	// remote serves branches, listings, manifests and images.
	remote Remote
	// store persists the outputs below cfg.OutputDir.
	store *artifact.Store
	// renderer builds flashing guides.
	renderer *instructions.Renderer
	// out is shared by concurrent workers.
	out io.Writer
	// report collects skipped units.
	report *common.Report
}

// Run executes the device pipeline once.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, Tool)
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	client, err := common.NewClient(cfg, opts.Token,
		common.WithCallTimeout(cfg.Timeout),
		common.WithUserAgent(version.UserAgent(Tool)),
	)
	if err != nil {
		return err
	}

	lock, err := marker.Acquire(ctx, cfg.Path(marker.Filename(Tool)))
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Failed to release marker", "error", releaseErr)
		}
	}()

	return newRunner(cfg, client, opts.Out).run(ctx)
}

func newRunner(cfg *config.Config, remote Remote, out io.Writer) *runner {
	if out == nil {
		out = os.Stdout
	}

	return &runner{
		cfg:      cfg,
		remote:   remote,
		store:    artifact.NewStore(cfg.OutputDir),
		renderer: instructions.NewRenderer(cfg.FlashVendor, cfg.ReleaseURL),
		out:      console.Synchronized(out),
		report:   new(common.Report),
	}
}

// run walks the stages in order:
// 1) Discover branches and devices (fatal on branch listing failure).
// 2) Write the device summary.
// 3) Fetch missing device images.
// 4) Generate missing flashing guides.
func (r *runner) run(ctx context.Context) error {
	discovery, err := common.Discover(ctx, r.remote, r.cfg.Concurrency, r.out, r.report)
	if err != nil {
		return err
	}

	if err = r.store.WriteJSON(r.cfg.DevicesFile, discovery.Index.Entries()); err != nil {
		return fmt.Errorf("write device summary: %w", err)
	}

	logger.InfoKV(ctx, "Wrote device summary", "path", r.cfg.DevicesFile, "devices", discovery.Index.Len())

	r.fetchImages(ctx, discovery.Index.Devices())

	if err = ctx.Err(); err != nil {
		return err
	}

	r.generateInstructions(ctx, discovery.Index.Pairs())

	if err = ctx.Err(); err != nil {
		return err
	}

	r.report.Summarize(ctx)

	_, _ = fmt.Fprintln(r.out, "Done.")

	return nil
}
