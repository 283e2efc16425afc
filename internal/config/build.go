package config

import "fmt"

// Set at link time:
//
//	go build -ldflags "-X fishcast/internal/config.version=1.4.0 \
//	    -X fishcast/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X fishcast/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// String formats the build metadata for the version command.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.BuildTime)
}
