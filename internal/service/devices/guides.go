package devices

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/evolution-x/site-metadata/internal/domain/ota"
	"github.com/evolution-x/site-metadata/internal/logger"
)

// guideExt is the extension of flashing guides.
const guideExt = ".md"

// generateInstructions creates the guide of every pair that has none yet.
func (r *runner) generateInstructions(ctx context.Context, pairs []ota.Pair) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Concurrency)

	for _, pair := range pairs {
		eg.Go(func() error {
			pairCtx := logger.WithFields(egCtx, map[string]any{
				"device": pair.Device,
				"branch": pair.Branch,
			})

			if err := r.generateGuide(pairCtx, pair); err != nil {
				r.report.Skip(pairCtx, "instructions "+pair.Device+" on "+pair.Branch, err)
			}

			return nil
		})
	}

	_ = eg.Wait()
}

// generateGuide fetches the manifest of the pair and writes its guide.
func (r *runner) generateGuide(ctx context.Context, pair ota.Pair) error {
	rel := r.guidePath(pair)

	exists, err := r.store.Exists(rel)
	if err != nil {
		return err
	}

	if exists {
		logger.Debug(ctx, "Instructions already exist, skipping")

		return nil
	}

	logger.Info(ctx, "Creating instructions")

	doc, err := r.renderGuide(ctx, pair)
	if err != nil {
		return err
	}

	created, err := r.store.Create(rel, doc)
	if err != nil {
		return err
	}

	if created {
		logger.DebugKV(ctx, "Wrote instructions", "path", rel)
	}

	return nil
}

// renderGuide fetches the manifest of the pair and renders it without writing.
func (r *runner) renderGuide(ctx context.Context, pair ota.Pair) ([]byte, error) {
	manifest, err := r.remote.FetchManifest(ctx, pair.Branch, pair.Device)
	if err != nil {
		return nil, err
	}

	for _, skipped := range manifest.Skipped {
		logger.DebugKV(ctx, "Skipping manifest entry", "error", skipped)
	}

	entry, err := manifest.Primary()
	if err != nil {
		return nil, err
	}

	return r.renderer.Render(pair.Device, entry)
}

// guidePath is instructions/<branch>/<device>.md.
func (r *runner) guidePath(pair ota.Pair) string {
	return filepath.Join(r.cfg.InstructionsDir, pair.Branch, pair.Device+guideExt)
}
