// Package version reports build information for the qntx binary.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/qntx-core/sync"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash      string `json:"commit_hash"`
	BuildTime       string `json:"build_time"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	GoVersion       string `json:"go_version"`
	Platform        string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash:      CommitHash,
		BuildTime:       BuildTime,
		Version:         Version,
		ProtocolVersion: sync.ProtocolVersion,
		GoVersion:       runtime.Version(),
		Platform:        fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Semver parses Version, accepting a leading "v". Untagged builds return nil.
func (i Info) Semver() *semver.Version {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil
	}
	return v
}

// String returns a human-readable version string
func (i Info) String() string {
	if v := i.Semver(); v != nil {
		return fmt.Sprintf("qntx %s (commit %s, built %s, sync protocol %s)", v, i.Short(), i.BuildTime, i.ProtocolVersion)
	}
	return fmt.Sprintf("qntx dev (commit %s, built %s, sync protocol %s)", i.Short(), i.BuildTime, i.ProtocolVersion)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
