// Package version exposes build metadata injected at link time:
//
//	go build -ldflags "-X github.com/compozy/wrfconf/pkg/version.Version=v0.3.0 \
//	  -X github.com/compozy/wrfconf/pkg/version.CommitHash=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the build metadata reported by the health endpoint and --version.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

func Get() Info {
	return Info{Version: Version, CommitHash: CommitHash, BuildDate: BuildDate}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildDate)
}

// GetVersion returns just the version string.
func GetVersion() string {
	return Version
}
