package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/dlmgr"

// buildVersion is set via -ldflags "-X pkt.systems/dlmgr/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running client binary.
type Info struct {
	Version  string `json:"version" yaml:"version"`
	Module   string `json:"module" yaml:"module"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
	Go       string `json:"go" yaml:"go"`
	Dirty    bool   `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Current returns the best available version string without a dirty suffix.
func Current() string {
	return Read().Version
}

// Read collects version details from the linker flag and build info.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(buildVersion, info)
}

// UserAgent returns "dlmgr/<version>" for outgoing requests.
func UserAgent() string {
	return "dlmgr/" + Current()
}

func fromBuildInfo(linked string, info *debug.BuildInfo) Info {
	out := Info{
		Version: "v0.0.0-unknown",
		Module:  defaultModule,
		Go:      runtime.Version(),
	}
	vcs := readVCS(info)
	out.Revision = vcs.revision
	out.Dirty = vcs.modified
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
	}
	switch {
	case strings.TrimSpace(linked) != "":
		out.Version = strings.TrimSuffix(strings.TrimSpace(linked), "+dirty")
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSuffix(strings.TrimSpace(info.Main.Version), "+dirty")
	default:
		if v := vcs.pseudo(); v != "" {
			out.Version = v
		}
	}
	return out
}

type vcsInfo struct {
	revision string
	time     time.Time
	modified bool
}

func readVCS(info *debug.BuildInfo) vcsInfo {
	var out vcsInfo
	if info == nil {
		return out
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			out.revision = setting.Value
		case "vcs.time":
			if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				out.time = parsed
			}
		case "vcs.modified":
			out.modified = setting.Value == "true"
		}
	}
	return out
}

// pseudo builds a Go-style pseudo version from VCS metadata.
func (v vcsInfo) pseudo() string {
	if v.revision == "" || v.time.IsZero() {
		return ""
	}
	rev := v.revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return "v0.0.0-" + v.time.UTC().Format("20060102150405") + "-" + rev
}
