// Package config defines the settings shared by the site metadata tools:
// where the OTA repository and image host live, how output files are laid
// out, and how many remote requests may be in flight.
//
// Settings are read from an optional YAML file layered over Default.
package config
