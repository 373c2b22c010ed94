package ota

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func entry(name, github, oem, device string, active bool) *ManifestEntry {
	return &ManifestEntry{
		Maintainer:          name,
		GitHub:              github,
		OEM:                 oem,
		Device:              device,
		CurrentlyMaintained: active,
	}
}

// TestRoster_Split verifies the active/inactive classification and ordering.
func TestRoster_Split(t *testing.T) {
	t.Parallel()

	r := NewRoster()
	require.NoError(t, r.Add(entry("Zed", "zed", "Google", "husky", true)))
	require.NoError(t, r.Add(entry("Zed", "zed-alt", "Google", "cheetah", false)))
	require.NoError(t, r.Add(entry("Amy", "amy", "Xiaomi", "alioth", false)))
	require.NoError(t, r.Add(entry("Bob", "bob", "Samsung", "r8q", true)))
	require.NoError(t, r.Add(entry("Bob", "bob", "OnePlus", "lemonadep", true)))

	active, inactive := r.Split()

	wantActive := []RosterEntry{
		{Name: "Bob", GitHub: "bob", Devices: []string{"OnePlus lemonadep", "Samsung r8q"}},
		{Name: "Zed", GitHub: "zed", Devices: []string{"Google husky"}},
	}
	wantInactive := []RosterEntry{
		{Name: "Amy", GitHub: "amy", Devices: []string{"Xiaomi alioth"}},
	}

	if diff := cmp.Diff(wantActive, active); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(wantInactive, inactive); diff != "" {
		t.Fatalf("inactive mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []string{"Bob", "Zed"}, Names(active))
}

// TestRoster_NeverInBoth checks a maintainer lands in exactly one roster and device sets stay disjoint.
func TestRoster_NeverInBoth(t *testing.T) {
	t.Parallel()

	r := NewRoster()
	require.NoError(t, r.Add(entry("Amy", "amy", "Google", "husky", false)))
	require.NoError(t, r.Add(entry("Amy", "amy", "Google", "husky", true)))
	require.NoError(t, r.Add(entry("Amy", "amy", "Google", "husky", false)))

	record, ok := r.Record("Amy")
	require.True(t, ok)
	require.True(t, record.IsActive())
	require.Empty(t, record.Inactive)

	active, inactive := r.Split()
	require.Len(t, active, 1)
	require.Empty(t, inactive)
}

// TestRoster_RejectsIncompleteEntries ensures a bad entry is refused without touching the roster.
func TestRoster_RejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	r := NewRoster()

	err := r.Add(entry("Amy", "", "Google", " ", true))
	require.ErrorIs(t, err, ErrIncompleteEntry)
	require.ErrorContains(t, err, "device, github")
	require.Zero(t, r.Len())
}
