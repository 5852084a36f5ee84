package buildinfo

import "github.com/Masterminds/semver/v3"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the window title and the boot
// banner. A semantic version is printed in canonical "vX.Y.Z" form.
func Short() string {
	if Version != "" && Version != "dev" {
		if v, err := semver.NewVersion(Version); err == nil {
			return "v" + v.String()
		}
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}
