// Package maintainers rebuilds the active and inactive maintainer rosters
// from the device manifests of every OTA branch.
package maintainers
