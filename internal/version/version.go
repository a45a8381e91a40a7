// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// These are set at build time via -ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("cpdh v%s (built %s, commit %s, %s/%s)",
		Version, BuildTime, GitCommit, runtime.GOOS, runtime.GOARCH)
}
