package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version of the loop guard binaries, overridden via ldflags for releases.
	Version = "0.1.0"
	// Commit is the git revision; falls back to the VCS stamp of the build.
	Commit = ""
	// BuildTime is the UTC build timestamp; falls back to the VCS commit time.
	BuildTime = ""
)

// Short returns the semantic version only.
func Short() string {
	return Version
}

// Full returns the version with revision, build time and Go toolchain.
func Full() string {
	commit, builtAt := buildStamp()

	return fmt.Sprintf("loop-guard %s (commit %s, built %s, %s)", Version, commit, builtAt, runtime.Version())
}

// buildStamp prefers ldflags values and otherwise reads the VCS settings
// embedded by the Go toolchain.
func buildStamp() (string, string) {
	commit, builtAt := Commit, BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch {
			case setting.Key == "vcs.revision" && commit == "":
				commit = setting.Value
			case setting.Key == "vcs.time" && builtAt == "":
				builtAt = setting.Value
			}
		}
	}

	if commit == "" {
		commit = "none"
	}

	if builtAt == "" {
		builtAt = "unknown"
	}

	return commit, builtAt
}
