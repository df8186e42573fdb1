// Package version reports which assetgen build produced a listing run.
//
// Release builds set the variables below with -ldflags -X; development builds
// keep the placeholders.
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, set with -X github.com/jmylchreest/assetgen/internal/version.<Name>=<value>.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown" // RFC3339
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo collects the build metadata and the toolchain the binary runs on.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// released reports whether commit and date were stamped into the binary.
func (i Info) released() bool {
	return i.Commit != "unknown" && i.Date != "unknown"
}

// String returns the line printed by `assetgen version` and `--version`.
func String() string {
	info := GetInfo()
	if info.released() {
		return fmt.Sprintf("assetgen version %s (commit: %s, built: %s, %s, %s)",
			info.Version, shortCommit(info.Commit), info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("assetgen version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
}

// Short returns the bare version, used as the cobra Version field.
func Short() string {
	return Version
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
