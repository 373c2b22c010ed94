// Package version exposes build metadata for the site metadata tools.
//
// Version, Commit and BuildTime are injected via -ldflags and default to
// values suitable for local builds. UserAgent derives the HTTP user agent
// the tools identify themselves with.
package version
