// Package version provides centralized version information for vdx.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X vdx/internal/version.Version=1.0.0 -X vdx/internal/version.Commit=abc123"
var (
	// Version is the semantic version of vdx
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// CacheSchemaVersion is the layout version of the persisted declaration tree.
// A persisted tree carrying any other value is discarded and rebuilt.
const CacheSchemaVersion = "3"

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "vdx version " + Version + "\n" +
		"Cache schema: " + CacheSchemaVersion + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
