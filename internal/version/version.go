// Package version exposes the build version stamped into the vapid CLI.
package version

import "strings"

// Version is the release version of the running binary. Release builds
// override it through -ldflags "-X ...version.Version=1.4.0"; without
// that it stays "dev".
var Version = "dev"

// String renders Version for display with exactly one leading v,
// whether the value came from a git tag (v1.4.0) or a bare number.
func String() string {
	return "v" + strings.TrimPrefix(Version, "v")
}
