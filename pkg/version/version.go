// Package version exposes build information for the gpt-cli binary.
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version, overridable at build time with
// -ldflags "-X github.com/gptcli/gptcli/pkg/version.Version=...".
var Version = "0.1.0"

// GitCommit is the git commit the binary was built from.
var GitCommit = "unknown"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns build information for the current binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("gpt-cli %s (commit %s, %s, %s)", i.Version, i.GitCommit, i.GoVersion, i.Platform)
}
