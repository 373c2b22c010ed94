// Package instructions renders the per-device, per-branch flashing guide
// published next to each build.
//
// Devices made by the configured vendor are flashed with heimdall from
// download mode, every other device with fastboot from the bootloader. The
// super_empty image is always wiped with fastboot instead of flashed.
package instructions
