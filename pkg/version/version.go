// Package version exposes build information stamped in at link time.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
)

var (
	// Version is set with -ldflags at release time.
	Version = "dev"
	// GitCommit is set with -ldflags at release time.
	GitCommit = "unknown"
	// BuildTime is set with -ldflags at release time.
	BuildTime = "unknown"
)

// Info is the build information reported by `skillops version`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("Version: %s, GitCommit: %s, BuildTime: %s, GoVersion: %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}

// JSON returns the indented JSON form of i.
func (i Info) JSON() (string, error) {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
