// Package buildinfo reports which notegraph build is running.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/sboosali/notegraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/sboosali/notegraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/sboosali/notegraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Otherwise [Get] falls back to what the Go toolchain stamped into the
// binary, so `go install` builds still report a module version and commit.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description served on /healthz and printed by --version.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var (
	once   sync.Once
	cached Info
)

// Get returns the build description.
func Get() Info {
	once.Do(func() {
		cached = resolve(Info{Version: Version, Commit: Commit, Date: Date}, debug.ReadBuildInfo)
	})
	return cached
}

// resolve fills fields still at their defaults from the toolchain stamps.
func resolve(info Info, read func() (*debug.BuildInfo, bool)) Info {
	bi, ok := read()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

// UserAgent identifies notegraph to the parser service.
func UserAgent() string {
	return "notegraph/" + Get().Version
}
