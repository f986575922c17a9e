// Package version reports build metadata stamped at link time
package version

import "runtime/debug"

// BuildInfo holds version information about the service build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Info returns the build information. version, commit and date are set with
//
//	-ldflags "-X 'modhost/internal/core/version.version=v0.1.0'
//	          -X 'modhost/internal/core/version.commit=abcd'
//	          -X 'modhost/internal/core/version.date=2026-01-02'"
//
// commit falls back to the vcs stamp of the build when not set
func Info() BuildInfo {
	bi := BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.Go = info.GoVersion
		if bi.Commit == "none" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					bi.Commit = s.Value
				}
			}
		}
	}
	return bi
}

// Service is the name reported by the api binary
const Service = "modhost-api"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
