// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/yndnr/ptagate/internal/infra/buildinfo.Version=v1.0.0 \
//	    -X github.com/yndnr/ptagate/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"

	// GoVersion is the Go version used to build. When not injected the
	// running toolchain version is reported.
	GoVersion = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
	}
	if info.GoVersion == "unknown" {
		info.GoVersion = runtime.Version()
	}
	if info.Commit == "unknown" {
		if rev, ok := vcsRevision(); ok {
			info.Commit = rev
		}
	}
	return info
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + info.Commit + ") built at " + info.BuildTime
}

// UserAgent returns the product token sent to upstreams and in the Server
// header, e.g. "ptagate/v1.2.0".
func UserAgent() string {
	return "ptagate/" + Version
}

func vcsRevision() (string, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			rev := s.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
			return rev, true
		}
	}
	return "", false
}
