package ota

import (
	"cmp"
	"slices"
)

// MaintainerRecord accumulates everything known about one maintainer.
type MaintainerRecord struct {
	// Name is the display name and the roster key.
	Name string
	// GitHub is the handle seen first for this name.
	GitHub string
	// Active holds "<oem> <device>" labels that are currently maintained.
	Active map[string]struct{}
	// Inactive holds labels that were maintained before and are not active anywhere.
	Inactive map[string]struct{}
}

// IsActive reports whether the maintainer has at least one active device.
func (r *MaintainerRecord) IsActive() bool {
	return len(r.Active) > 0
}

// RosterEntry is one persisted maintainer.
type RosterEntry struct {
	Name    string   `json:"name"`
	GitHub  string   `json:"github"`
	Devices []string `json:"devices"`
}

// Roster maps maintainer names to their records.
type Roster struct {
	records map[string]*MaintainerRecord
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{
		records: make(map[string]*MaintainerRecord),
	}
}

// Add folds a manifest entry into the roster. Incomplete entries are rejected.
func (r *Roster) Add(entry *ManifestEntry) error {
	if err := entry.ValidateMaintainer(); err != nil {
		return err
	}

	record, ok := r.records[entry.Maintainer]
	if !ok {
		record = &MaintainerRecord{
			Name:     entry.Maintainer,
			GitHub:   entry.GitHub,
			Active:   make(map[string]struct{}),
			Inactive: make(map[string]struct{}),
		}
		r.records[entry.Maintainer] = record
	}

	key := entry.DeviceKey()

	switch {
	case entry.CurrentlyMaintained:
		record.Active[key] = struct{}{}
		delete(record.Inactive, key)
	case !hasKey(record.Active, key):
		record.Inactive[key] = struct{}{}
	}

	return nil
}

// Len returns the number of maintainers.
func (r *Roster) Len() int {
	return len(r.records)
}

// Record returns the record stored under name.
func (r *Roster) Record(name string) (*MaintainerRecord, bool) {
	record, ok := r.records[name]

	return record, ok
}

// Split classifies maintainers: active when they have an active device,
// inactive when they have none but formerly maintained something.
// Both lists are sorted by name, devices within an entry are sorted.
func (r *Roster) Split() (active, inactive []RosterEntry) {
	active = make([]RosterEntry, 0, len(r.records))
	inactive = make([]RosterEntry, 0)

	for _, record := range r.records {
		switch {
		case record.IsActive():
			active = append(active, newRosterEntry(record, record.Active))
		case len(record.Inactive) > 0:
			inactive = append(inactive, newRosterEntry(record, record.Inactive))
		}
	}

	byName := func(a, b RosterEntry) int {
		return cmp.Compare(a.Name, b.Name)
	}

	slices.SortFunc(active, byName)
	slices.SortFunc(inactive, byName)

	return active, inactive
}

// Names returns the names of entries in order.
func Names(entries []RosterEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}

	return names
}

func newRosterEntry(record *MaintainerRecord, devices map[string]struct{}) RosterEntry {
	labels := make([]string, 0, len(devices))
	for label := range devices {
		labels = append(labels, label)
	}

	return RosterEntry{
		Name:    record.Name,
		GitHub:  record.GitHub,
		Devices: sorted(labels),
	}
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]

	return ok
}
