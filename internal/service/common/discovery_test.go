//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/evolution-x/site-metadata/internal/domain/ota"
)

var errTestListing = errors.New("test listing error")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// fakeSource is an in-memory BranchSource.
type fakeSource struct {
	// branches is returned by ListBranches.
	branches []string
	// branchesErr fails ListBranches.
	branchesErr error
	// builds maps a branch to its devices; a missing branch fails ListBuilds.
	builds map[string][]string
}

func (f *fakeSource) ListBranches(context.Context) ([]string, error) {
	return f.branches, f.branchesErr
}

func (f *fakeSource) ListBuilds(_ context.Context, branch string) ([]string, error) {
	devices, ok := f.builds[branch]
	if !ok {
		return nil, errTestListing
	}

	return devices, nil
}

// TestDiscover_Aggregates builds the index in branch order and skips failing branches.
func TestDiscover_Aggregates(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		branches: []string{"vic", "udc", "tiramisu", "broken"},
		builds: map[string][]string{
			"vic":      {"husky", "cheetah"},
			"udc":      {"husky", "alioth"},
			"tiramisu": {},
		},
	}

	var (
		out    bytes.Buffer
		report Report
	)

	d, err := Discover(context.Background(), source, 3, &out, &report)
	require.NoError(t, err)

	want := []ota.DeviceBranches{
		{Device: "alioth", Branches: []string{"udc"}},
		{Device: "cheetah", Branches: []string{"vic"}},
		{Device: "husky", Branches: []string{"vic", "udc"}},
	}

	if diff := cmp.Diff(want, d.Index.Entries()); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, source.branches, d.Branches)
	require.Contains(t, out.String(), "- tiramisu\n")
	require.Equal(t, 1, report.Len())
	require.ErrorIs(t, report.Errors()[0], errTestListing)
}

// TestDiscover_Deterministic repeats discovery with different fan-out and compares results.
func TestDiscover_Deterministic(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		branches: []string{"a", "b", "c", "d", "e"},
		builds: map[string][]string{
			"a": {"x", "y"},
			"b": {"y", "z"},
			"c": {"x"},
			"d": {"z", "x"},
			"e": {"w"},
		},
	}

	var first []ota.DeviceBranches

	for _, concurrency := range []int{1, 2, 5, 0} {
		d, err := Discover(context.Background(), source, concurrency, new(bytes.Buffer), new(Report))
		require.NoError(t, err)

		if first == nil {
			first = d.Index.Entries()

			continue
		}

		require.Equal(t, first, d.Index.Entries())
	}
}

// TestDiscover_BranchFailureIsFatal returns an error when branches cannot be listed.
func TestDiscover_BranchFailureIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{branchesErr: ErrNoBranches}

	d, err := Discover(context.Background(), source, 1, new(bytes.Buffer), new(Report))
	require.ErrorIs(t, err, ErrNoBranches)
	require.Nil(t, d)
}
