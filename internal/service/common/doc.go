// Package common holds what both pipelines share: a client for the OTA
// repository on GitHub and the external image host, the branch and
// builds-directory discovery that feeds the device index, and the report
// that collects recoverable per-unit failures.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
