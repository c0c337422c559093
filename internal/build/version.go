package build

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version components. The appVersion constants are bumped at release time;
// the commit values are stamped in through -ldflags or recovered from the
// embedded VCS info.
const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0

	// appPreRelease identifies unstable builds. Empty for releases.
	appPreRelease = "beta"
)

var (
	// Commit is the full commit hash set via -ldflags at build time.
	Commit string

	// CommitHash is the short commit hash recovered from the binary's
	// embedded build info when Commit is not stamped in.
	CommitHash string

	// GoVersion is the Go toolchain the binary was built with.
	GoVersion string

	// RawTags is the comma-separated build tag list set via -ldflags.
	RawTags string
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			CommitHash = setting.Value
		}
	}
}

// Version returns the application version as a properly formed string.
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if appPreRelease != "" {
		version = fmt.Sprintf("%s-%s", version, appPreRelease)
	}

	return version
}

// Tags returns the build tags compiled into the binary.
func Tags() []string {
	if RawTags == "" {
		return nil
	}

	return strings.Split(RawTags, ",")
}
