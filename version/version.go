// Package version reports the version of the partials tools, either set at
// link time or read from the VCS information embedded in the build.
package version

import "runtime/debug"

// Version can be set at build time with:
// go build -ldflags "-X github.com/vsariola/partials/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision of the build, suffixed with -dirty if the
// working tree had modifications, or empty if unknown.
var Hash = revision(debug.ReadBuildInfo())

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

func revision(info *debug.BuildInfo, ok bool) string {
	if !ok {
		return ""
	}
	modified, hash := false, ""
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.modified":
			modified = setting.Value == "true"
		case "vcs.revision":
			hash = setting.Value
		}
	}
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if modified && hash != "" {
		return hash + "-dirty"
	}
	return hash
}
