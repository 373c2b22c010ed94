// Package devices regenerates the device metadata of the website.
//
// A run lists the OTA branches, aggregates which devices are built on which
// branch into the device summary, then makes sure every device has an image
// and every (device, branch) pair has a flashing guide. Images and guides
// are only created when missing; a failure on one device or branch is
// logged and skipped while the rest of the run carries on.
package devices
