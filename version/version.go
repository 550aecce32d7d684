// Package version provides build version information for the CLI.
//
// Version and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/audio2txt/version.Version=1.2.0"
//
// When ldflags are absent, git metadata comes from the embedded VCS
// build info.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the semantic version, set at build time.
	Version = "dev"
	// BuildTime is the RFC3339 build timestamp, set at build time.
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty,omitempty"`
}

// Get collects version information from ldflags and VCS build info.
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.GitCommit = setting.Value
				if len(info.GitCommit) > 7 {
					info.GitCommit = info.GitCommit[:7]
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}
	return info
}

// Short returns "version" or "version-commit[-dirty]".
func Short() string {
	info := Get()
	switch {
	case info.GitCommit == "":
		return info.Version
	case info.IsDirty:
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	default:
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
}

// Full returns the short version with the build time appended when known.
func Full() string {
	info := Get()
	s := Short()
	if info.BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			return fmt.Sprintf("%s (built %s)", s, t.UTC().Format("2006-01-02T15:04:05Z"))
		}
	}
	return s
}
