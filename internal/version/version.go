// Package version carries build metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/rickgao/tokenscope/internal/version.Version=0.3.0 \
//	                   -X github.com/rickgao/tokenscope/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/tokenscope/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/screener
package version

import "runtime"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata reported by /health and `screener --version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String formats the build metadata on one line.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime + " " + runtime.Version()
}
