//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/evolution-x/site-metadata/internal/logger"
)

// Report collects recoverable failures of a run. A unit that fails is logged,
// excluded from further processing, and recorded here; the run goes on.
type Report struct {
	// mu guards err while workers record failures concurrently.
	mu sync.Mutex
	// err accumulates every skipped unit.
	err error
}

// Skip logs and records that unit was excluded because of err.
func (r *Report) Skip(ctx context.Context, unit string, err error) {
	logger.WarnKV(ctx, "Skipping", "unit", unit, "error", err)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = multierr.Append(r.err, fmt.Errorf("%s: %w", unit, err))
}

// Errors returns every recorded failure in recording order.
func (r *Report) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return multierr.Errors(r.err)
}

// Len returns the number of skipped units.
func (r *Report) Len() int {
	return len(r.Errors())
}

// Summarize logs how many units were skipped.
func (r *Report) Summarize(ctx context.Context) {
	errs := r.Errors()
	if len(errs) == 0 {
		logger.Info(ctx, "All units processed")

		return
	}

	logger.WarnKV(ctx, "Some units were skipped", "skipped", len(errs))

	for _, err := range errs {
		logger.DebugKV(ctx, "Skipped unit", "error", err)
	}
}
