// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "reelgate"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent identifies the client to the feed backend.
	UserAgent = App + "/" + Version
)

// Build metadata, overridden with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
