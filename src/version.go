package ft8modem

import (
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/doismellburning/ft8modem/src.Version=X'"`
var Version string

func getBuildSettingOrDefault(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}
	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

// VersionString describes the build, e.g.
// "ft8modem - Version 1.0 (revision abc123, built at 2024-01-01T00:00:00Z)".
func VersionString() string {
	var buildInfo, _ = debug.ReadBuildInfo()

	var buildTimeStr = getBuildSettingOrDefault(buildInfo, "vcs.time", "UNKNOWN")

	var (
		buildCommit               = getBuildSettingOrDefault(buildInfo, "vcs.revision", "UNKNOWN")
		buildDirtyStr             = getBuildSettingOrDefault(buildInfo, "vcs.modified", "INVALID")
		buildDirty, buildDirtyErr = strconv.ParseBool(buildDirtyStr)
	)

	if buildDirty {
		buildCommit += "-DIRTY"
	} else if buildDirtyErr != nil {
		buildCommit += "-UNKNOWNDIRTY"
	}

	var version = Version
	if version == "" {
		version = "!UNKNOWN!"
	}

	return fmt.Sprintf("ft8modem - Version %s (revision %s, built at %s)", version, buildCommit, buildTimeStr)
}

func PrintVersion(w io.Writer, verbose bool) {
	fmt.Fprintln(w, VersionString())

	if verbose {
		var buildInfo, _ = debug.ReadBuildInfo()
		fmt.Fprintf(w, "\nBuildInfo: %+v\n", buildInfo)
	}
}
