//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/domain/ota"
	"github.com/evolution-x/site-metadata/internal/logger"
)

// BranchSource lists branches and the devices built on each of them.
type BranchSource interface {
	ListBranches(ctx context.Context) ([]string, error)
	ListBuilds(ctx context.Context, branch string) ([]string, error)
}

// Discovery is the outcome of walking the repository.
type Discovery struct {
	// Branches in the order the repository returned them.
	Branches []string
	// Index maps each device to the branches it was found on.
	Index *ota.DeviceIndex
}

// Discover lists branches, failing the run if that is impossible, then lists
// the builds directory of every branch with at most concurrency requests in
// flight. A branch whose listing fails is recorded in report and contributes
// no devices. The index is filled in branch order, so arrival order of the
// concurrent listings never shows in the result.
func Discover(
	ctx context.Context,
	source BranchSource,
	concurrency int,
	out io.Writer,
	report *Report,
) (*Discovery, error) {
	logger.Info(ctx, "Fetching branches")

	branches, err := source.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch data: %w", err)
	}

	console.List(out, "Branches found", branches)

	devicesByBranch := make([][]string, len(branches))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(concurrency, 1))

	for i, branch := range branches {
		eg.Go(func() error {
			branchCtx := logger.WithKV(egCtx, "branch", branch)
			logger.Info(branchCtx, "Fetching devices for branch")

			devices, listErr := source.ListBuilds(branchCtx, branch)
			if listErr != nil {
				report.Skip(branchCtx, "branch "+branch, listErr)

				return nil
			}

			if len(devices) == 0 {
				logger.Info(branchCtx, "No devices found for branch")
			}

			devicesByBranch[i] = devices

			return nil
		})
	}

	// Workers never return errors; Wait only synchronises.
	_ = eg.Wait()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	index := ota.NewDeviceIndex()
	for i, branch := range branches {
		index.AddBranch(branch, devicesByBranch[i])
	}

	logger.InfoKV(ctx, "Discovered devices", "branches", len(branches), "devices", index.Len())

	return &Discovery{
		Branches: branches,
		Index:    index,
	}, nil
}
