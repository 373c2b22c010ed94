package ota

import (
	"slices"
	"strings"
)

// BuildsExt is the extension of manifest files in a branch's builds directory.
const BuildsExt = ".json"

// DeviceBranches is one persisted row of the device summary.
type DeviceBranches struct {
	Device   string   `json:"device"`
	Branches []string `json:"branches"`
}

// Pair identifies one instruction document.
type Pair struct {
	Device string
	Branch string
}

// DeviceIndex maps a device to the branches a manifest was found on.
// Branches keep first-seen order and are never repeated.
type DeviceIndex struct {
	branches map[string][]string
}

// NewDeviceIndex returns an empty index.
func NewDeviceIndex() *DeviceIndex {
	return &DeviceIndex{
		branches: make(map[string][]string),
	}
}

// Add records that device has a manifest on branch.
func (x *DeviceIndex) Add(device, branch string) {
	if device == "" || branch == "" {
		return
	}

	if slices.Contains(x.branches[device], branch) {
		return
	}

	x.branches[device] = append(x.branches[device], branch)
}

// AddBranch records every device found on branch.
func (x *DeviceIndex) AddBranch(branch string, devices []string) {
	for _, device := range devices {
		x.Add(device, branch)
	}
}

// Len returns the number of devices.
func (x *DeviceIndex) Len() int {
	return len(x.branches)
}

// Devices returns the device identifiers in ascending order.
func (x *DeviceIndex) Devices() []string {
	devices := make([]string, 0, len(x.branches))
	for device := range x.branches {
		devices = append(devices, device)
	}

	return sorted(devices)
}

// Branches returns a copy of the branch list of device.
func (x *DeviceIndex) Branches(device string) []string {
	return slices.Clone(x.branches[device])
}

// Entries returns the summary rows sorted by device.
func (x *DeviceIndex) Entries() []DeviceBranches {
	devices := x.Devices()

	entries := make([]DeviceBranches, 0, len(devices))
	for _, device := range devices {
		entries = append(entries, DeviceBranches{
			Device:   device,
			Branches: x.Branches(device),
		})
	}

	return entries
}

// Pairs returns every (device, branch) pair, devices sorted, branches in index order.
func (x *DeviceIndex) Pairs() []Pair {
	pairs := make([]Pair, 0, len(x.branches))
	for _, device := range x.Devices() {
		for _, branch := range x.branches[device] {
			pairs = append(pairs, Pair{Device: device, Branch: branch})
		}
	}

	return pairs
}

// DeviceFromBuildFile returns the device a builds directory entry describes.
func DeviceFromBuildFile(name string) (string, bool) {
	device, found := strings.CutSuffix(name, BuildsExt)
	if !found || device == "" || strings.ContainsAny(device, `/\`) {
		return "", false
	}

	return device, true
}

func sorted(values []string) []string {
	slices.Sort(values)

	return values
}
