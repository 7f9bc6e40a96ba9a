// Package version reports the portradar build version.
package version

import "fmt"

// These variables are set via ldflags during build
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// Info is the version block included in JSON summaries.
type Info struct {
	Version string `json:"version"`
	BuildID string `json:"build_id"`
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// GetBuildID returns the current build ID
func GetBuildID() string {
	return buildID
}

// GetInfo returns the version and build ID together.
func GetInfo() Info {
	return Info{Version: version, BuildID: buildID}
}

// GetFullVersion returns the banner printed by `portradar version`.
func GetFullVersion() string {
	return fmt.Sprintf("portradar %s (build: %s)", version, buildID)
}
