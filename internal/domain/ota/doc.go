// Package ota models the OTA repository as the tools see it: per-branch
// device manifests, the device index aggregated across branches, and the
// maintainer roster derived from manifest entries.
package ota
