package ota

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SuperEmptyImage is wiped rather than flashed, whatever the OEM.
const SuperEmptyImage = "super_empty"

var (
	// ErrEmptyManifest is returned when a manifest has no entries.
	ErrEmptyManifest = errors.New("manifest has no entries")
	// ErrIncompleteEntry is returned when an entry misses a required field.
	ErrIncompleteEntry = errors.New("manifest entry is incomplete")
	// ErrMalformedEntry is returned for an entry that cannot be decoded.
	ErrMalformedEntry = errors.New("manifest entry is malformed")
)

// DeviceManifest is the builds/<device>.json document of one branch.
type DeviceManifest struct {
	// Response holds the entries that decoded, in document order.
	Response []ManifestEntry `json:"response"`
	// Skipped holds one ErrMalformedEntry per entry that did not decode.
	Skipped []error `json:"-"`
}

// UnmarshalJSON decodes entries one by one so a malformed entry only drops itself.
func (m *DeviceManifest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Response []json.RawMessage `json:"response"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Response = make([]ManifestEntry, 0, len(raw.Response))
	m.Skipped = nil

	for i, item := range raw.Response {
		var entry ManifestEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			m.Skipped = append(m.Skipped, fmt.Errorf("%w: entry %d: %w", ErrMalformedEntry, i, err))

			continue
		}

		m.Response = append(m.Response, entry)
	}

	return nil
}

// ManifestEntry is one build record. Only the fields the tools read are mapped.
type ManifestEntry struct {
	Maintainer          string   `json:"maintainer"`
	GitHub              string   `json:"github"`
	OEM                 string   `json:"oem"`
	Device              string   `json:"device"`
	Download            string   `json:"download"`
	Version             string   `json:"version"`
	CurrentlyMaintained bool     `json:"currently_maintained"`
	InitialImages       []string `json:"initial_installation_images"`
}

// Primary returns the first decoded entry, which instructions are rendered from.
func (m *DeviceManifest) Primary() (*ManifestEntry, error) {
	if m == nil || len(m.Response) == 0 {
		return nil, ErrEmptyManifest
	}

	return &m.Response[0], nil
}

// ValidateMaintainer reports whether the entry carries everything a roster needs.
func (e *ManifestEntry) ValidateMaintainer() error {
	missing := make([]string, 0, 4)

	for field, value := range map[string]string{
		"maintainer": e.Maintainer,
		"github":     e.GitHub,
		"oem":        e.OEM,
		"device":     e.Device,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteEntry, strings.Join(sorted(missing), ", "))
	}

	return nil
}

// DeviceKey is the "<oem> <device>" label rosters list devices by.
func (e *ManifestEntry) DeviceKey() string {
	return strings.TrimSpace(e.OEM) + " " + strings.TrimSpace(e.Device)
}

// FlashImages returns the non-empty initial installation images in manifest order.
func (e *ManifestEntry) FlashImages() []string {
	images := make([]string, 0, len(e.InitialImages))
	for _, img := range e.InitialImages {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	return images
}
