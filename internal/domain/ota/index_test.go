package ota

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestDeviceIndex_OrderAndDedup checks sorted devices, first-seen branch order and deduplication.
func TestDeviceIndex_OrderAndDedup(t *testing.T) {
	t.Parallel()

	idx := NewDeviceIndex()
	idx.AddBranch("vic", []string{"husky", "cheetah"})
	idx.AddBranch("udc", []string{"husky", "alioth"})
	idx.AddBranch("vic", []string{"husky"})
	idx.Add("", "vic")
	idx.Add("lynx", "")

	want := []DeviceBranches{
		{Device: "alioth", Branches: []string{"udc"}},
		{Device: "cheetah", Branches: []string{"vic"}},
		{Device: "husky", Branches: []string{"vic", "udc"}},
	}

	if diff := cmp.Diff(want, idx.Entries()); diff != "" {
		t.Fatalf("Entries() mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 3, idx.Len())
	require.Equal(t, []Pair{
		{Device: "alioth", Branch: "udc"},
		{Device: "cheetah", Branch: "vic"},
		{Device: "husky", Branch: "vic"},
		{Device: "husky", Branch: "udc"},
	}, idx.Pairs())
}

// TestDeviceIndex_BranchesIsCopy ensures callers cannot mutate the index.
func TestDeviceIndex_BranchesIsCopy(t *testing.T) {
	t.Parallel()

	idx := NewDeviceIndex()
	idx.Add("husky", "vic")

	branches := idx.Branches("husky")
	branches[0] = "mutated"

	require.Equal(t, []string{"vic"}, idx.Branches("husky"))
	require.Empty(t, idx.Branches("missing"))
}

// TestDeviceFromBuildFile checks extension stripping and rejection of other files.
func TestDeviceFromBuildFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "husky.json", want: "husky", wantOK: true},
		{name: "a.b.json", want: "a.b", wantOK: true},
		{name: "README.md"},
		{name: ".json"},
		{name: "husky.json.bak"},
	}

	for _, tt := range tests {
		got, ok := DeviceFromBuildFile(tt.name)
		require.Equal(t, tt.wantOK, ok, tt.name)
		require.Equal(t, tt.want, got, tt.name)
	}
}
