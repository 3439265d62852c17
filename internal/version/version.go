// Package version reports build information for the insightview binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// ProjectName is used in the version banner and the HTTP User-Agent.
const ProjectName = "insightview"

// RepositoryURL is the project homepage.
const RepositoryURL = "https://github.com/devnullvoid/insightview"

const unknown = "unknown"

// BuildInfo contains build-time information.
type BuildInfo struct {
	Version   string
	BuildDate string
	Commit    string
	GoVersion string
	OS        string
	Arch      string
}

// Set at build time via -ldflags "-X github.com/devnullvoid/insightview/internal/version.version=...".
var (
	version   = "dev"
	buildDate = unknown
	commit    = unknown
)

// GetBuildInfo returns ldflags-injected values, falling back to the module
// and VCS information embedded by "go install".
func GetBuildInfo() *BuildInfo {
	info := &BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		Commit:    commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info.Version != "dev" {
		return info
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		info.Version = strings.TrimPrefix(v, "v")
	}

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == unknown && len(setting.Value) >= 7 {
				info.Commit = setting.Value[:7]
			}
		case "vcs.time":
			if info.BuildDate == unknown {
				info.BuildDate = setting.Value
			}
		}
	}

	return info
}

// GetVersionString returns "v<version>".
func GetVersionString() string {
	return "v" + GetBuildInfo().Version
}

// UserAgent returns the User-Agent sent with search requests.
func UserAgent() string {
	return ProjectName + "/" + GetBuildInfo().Version
}

// IsDevBuild reports whether no release version was injected.
func IsDevBuild() bool {
	return version == "dev"
}

// Details returns the multi-line banner printed by "insightview version".
func Details() string {
	info := GetBuildInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s\n", ProjectName, info.Version)
	fmt.Fprintf(&b, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(&b, "Commit: %s\n", info.Commit)
	fmt.Fprintf(&b, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&b, "OS/Arch: %s/%s\n", info.OS, info.Arch)
	return b.String()
}
