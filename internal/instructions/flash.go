package instructions

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/evolution-x/site-metadata/internal/domain/ota"
)

// downloadSegment is the suffix the release host appends to direct file links.
const downloadSegment = "download"

// errNoVersion is returned when a download URL has no version segment.
var errNoVersion = errors.New("download url has no version segment")

// Tool describes how a family of devices is flashed.
type Tool struct {
	// Name is the flashing tool binary.
	Name string
	// BootMode is the mode the device must be rebooted to before flashing.
	BootMode string
	// Reboot is the final step that brings the device into recovery.
	Reboot string
	// vendor selects the vendor partition syntax.
	vendor bool
}

//nolint:gochecknoglobals // Fixed tool descriptions.
var (
	fastboot = Tool{
		Name:     "fastboot",
		BootMode: "bootloader",
		Reboot:   "```fastboot reboot recovery```",
	}
	heimdall = Tool{
		Name:     "heimdall",
		BootMode: "download mode",
		Reboot:   "Hold Volume Up + Power as the device restarts to boot into recovery",
		vendor:   true,
	}
)

// ToolFor returns the tool used for devices made by oem.
func ToolFor(oem, vendor string) Tool {
	if vendor != "" && strings.EqualFold(strings.TrimSpace(oem), strings.TrimSpace(vendor)) {
		return heimdall
	}

	return fastboot
}

// Command returns the invocation that writes image with t.
func (t Tool) Command(image string) string {
	switch {
	case image == ota.SuperEmptyImage:
		return "fastboot wipe-super " + ota.SuperEmptyImage + ".img"
	case t.vendor:
		return fmt.Sprintf("%s flash --%s %s.img", t.Name, strings.ToUpper(image), image)
	default:
		return fmt.Sprintf("%s flash %s %s.img", t.Name, image, image)
	}
}

// FlashCommands returns one command per image, in order.
func FlashCommands(oem, vendor string, images []string) []string {
	tool := ToolFor(oem, vendor)

	commands := make([]string, 0, len(images))
	for _, image := range images {
		commands = append(commands, tool.Command(image))
	}

	return commands
}

// VersionFromDownload extracts the version directory from a release download
// URL such as .../<device>/<version>/<file>.zip, optionally followed by /download.
func VersionFromDownload(download string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(download))
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}

	segments := make([]string, 0, 8)
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	if n := len(segments); n > 0 && segments[n-1] == downloadSegment {
		segments = segments[:n-1]
	}

	if len(segments) < 2 {
		return "", fmt.Errorf("%q: %w", download, errNoVersion)
	}

	return segments[len(segments)-2], nil
}
