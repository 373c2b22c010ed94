package maintainers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evolution-x/site-metadata/internal/config"
	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/domain/ota"
	"github.com/evolution-x/site-metadata/internal/logger"
	"github.com/evolution-x/site-metadata/internal/repository/artifact"
	"github.com/evolution-x/site-metadata/internal/repository/marker"
	"github.com/evolution-x/site-metadata/internal/service/common"
	"github.com/evolution-x/site-metadata/internal/version"
)

// Tool is the name the pipeline logs and locks under.
const Tool = "update-maintainers"

// Options are inputs accepted by the update-maintainers entry point.
type Options struct {
	// ConfigPath is the optional settings YAML file.
	ConfigPath string
	// Token is the GitHub access credential.
	Token string
	// Out receives the branch listing and the roster names.
	Out io.Writer
}

// Remote is everything the roster pipeline reads from the network.
type Remote interface {
	common.BranchSource
	FetchManifest(ctx context.Context, branch, device string) (*ota.DeviceManifest, error)
}

// rosterFile is the persisted form of one roster.
type rosterFile struct {
	Maintainers []ota.RosterEntry `json:"maintainers"`
}

// runner holds the collaborators of a single run.
type runner struct {
	cfg    *config.Config
	remote Remote
	store  *artifact.Store
	out    io.Writer
	report *common.Report
}

// Run executes the roster pipeline once.
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
		cfg:    cfg,
		remote: remote,
		store:  artifact.NewStore(cfg.OutputDir),
		out:    console.Synchronized(out),
		report: new(common.Report),
	}
}

func (r *runner) run(ctx context.Context) error {
	discovery, err := common.Discover(ctx, r.remote, r.cfg.Concurrency, r.out, r.report)
	if err != nil {
		return err
	}

	roster := r.collect(ctx, discovery.Index.Pairs())

	if err = ctx.Err(); err != nil {
		return err
	}

	active, inactive := roster.Split()

	if err = r.store.WriteJSON(r.cfg.MaintainersFile, rosterFile{Maintainers: active}); err != nil {
		return fmt.Errorf("write active roster: %w", err)
	}

	if err = r.store.WriteJSON(r.cfg.InactiveMaintainersFile, rosterFile{Maintainers: inactive}); err != nil {
		return fmt.Errorf("write inactive roster: %w", err)
	}

	logger.InfoKV(ctx, "Wrote rosters", "active", len(active), "inactive", len(inactive))

	r.report.Summarize(ctx)

	console.List(r.out, "Active maintainers", ota.Names(active))
	console.List(r.out, "Inactive maintainers", ota.Names(inactive))
	console.Successf(r.out, "\n%d active and %d inactive maintainers written to %s and %s.",
		len(active), len(inactive), r.cfg.MaintainersFile, r.cfg.InactiveMaintainersFile)

	return nil
}

// collect fetches every pair's manifest concurrently, then folds the entries
// into a roster in pair order so the first GitHub handle seen is stable.
func (r *runner) collect(ctx context.Context, pairs []ota.Pair) *ota.Roster {
	manifests := make([]*ota.DeviceManifest, len(pairs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Concurrency)

	for i, pair := range pairs {
		eg.Go(func() error {
			pairCtx := logger.WithFields(egCtx, map[string]any{
				"device": pair.Device,
				"branch": pair.Branch,
			})

			logger.Debug(pairCtx, "Fetching manifest")

			manifest, err := r.remote.FetchManifest(pairCtx, pair.Branch, pair.Device)
			if err != nil {
				r.report.Skip(pairCtx, "manifest "+pair.Device+" on "+pair.Branch, err)

				return nil
			}

			manifests[i] = manifest

			return nil
		})
	}

	_ = eg.Wait()

	roster := ota.NewRoster()

	for i, manifest := range manifests {
		if manifest == nil {
			continue
		}

		for _, skipped := range manifest.Skipped {
			logger.DebugKV(ctx, "Skipping manifest entry",
				"device", pairs[i].Device, "branch", pairs[i].Branch, "error", skipped)
		}

		for j := range manifest.Response {
			if err := roster.Add(&manifest.Response[j]); err != nil {
				logger.DebugKV(ctx, "Skipping manifest entry",
					"device", pairs[i].Device, "branch", pairs[i].Branch, "error", err)
			}
		}
	}

	return roster
}

var _ Remote = (*common.Client)(nil)
