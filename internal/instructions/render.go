package instructions

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/evolution-x/site-metadata/internal/domain/ota"
)

// romImage is the name users are told to give the main build zip.
const romImage = "rom"

// errNoDownload is returned when the manifest entry has no download URL.
var errNoDownload = errors.New("manifest entry has no download url")

//nolint:gochecknoglobals // Parsed once, read-only afterwards.
var guide = template.Must(template.New("guide").Parse(
	`## THESE INSTRUCTIONS ASSUME YOUR DEVICE'S BOOTLOADER IS ALREADY UNLOCKED

1. Download {{ .Files }} for {{ .Device }} from [{{ .ReleaseURL }}]({{ .ReleaseURL }})
2. Reboot to {{ .Tool.BootMode }}
3.
{{ range .Commands }}
` + "```" + `{{ . }}` + "```" + `
{{ end }}
{{ .Tool.Reboot }}

4. While in recovery, navigate to Factory reset -> Format data/factory reset and confirm to format the device.
5. When done formatting, go back to the main menu and then navigate to Apply update -> Apply from ADB
6. adb sideload rom.zip (replace "rom" with actual filename)
7. (optional) Reboot to recovery (fully) to sideload any add-ons
8. Reboot to system & #KeepEvolving
`))

// ReleaseURLFunc maps a device and version to the human download page.
type ReleaseURLFunc func(device, version string) string

// Renderer turns manifest entries into flashing guides.
type Renderer struct {
	// vendor is the OEM flashed with the vendor tool.
	vendor string
	// releaseURL builds the download link.
	releaseURL ReleaseURLFunc
}

// NewRenderer returns a renderer for the given vendor and release page builder.
func NewRenderer(vendor string, releaseURL ReleaseURLFunc) *Renderer {
	return &Renderer{
		vendor:     vendor,
		releaseURL: releaseURL,
	}
}

// guideData is the template input.
type guideData struct {
	Device     string
	Files      string
	ReleaseURL string
	Tool       Tool
	Commands   []string
}

// Render produces the Markdown guide for device from entry.
func (r *Renderer) Render(device string, entry *ota.ManifestEntry) ([]byte, error) {
	if entry == nil || strings.TrimSpace(entry.Download) == "" {
		return nil, errNoDownload
	}

	version, err := VersionFromDownload(entry.Download)
	if err != nil {
		if version = strings.TrimSpace(entry.Version); version == "" {
			return nil, err
		}
	}

	images := entry.FlashImages()

	data := guideData{
		Device:     device,
		Files:      strings.Join(append(images, romImage), ", "),
		ReleaseURL: r.releaseURL(device, version),
		Tool:       ToolFor(entry.OEM, r.vendor),
		Commands:   FlashCommands(entry.OEM, r.vendor, images),
	}

	var buf bytes.Buffer
	if err = guide.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render guide for %s: %w", device, err)
	}

	return buf.Bytes(), nil
}
