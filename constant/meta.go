// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Lrcshow is the canonical application identifier used for filesystem paths and CLI branding.
	Lrcshow = "lrcshow"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the GitHub owner/name pair used for release lookups.
	Repository = "lrcshow-cli/lrcshow"
)

// Build metadata, overridden with -ldflags "-X" by the release pipeline.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
