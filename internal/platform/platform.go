package platform

import "runtime"

// Platform holds the name tokens used to match GitHub release asset
// file names against the host. Release naming is not standardized, so
// matching is substring containment over these token sets.
type Platform struct {
	OSTokens   []string
	ArchTokens []string
	PreferZip  bool
}

// Detect maps an OS and architecture identifier onto matching tokens.
// Returns ok=false for anything outside the supported matrix; a partial
// platform is never returned.
func Detect(goos, goarch string) (Platform, bool) {
	var p Platform

	switch goos {
	case "linux":
		p.OSTokens = []string{"linux"}
	case "darwin":
		p.OSTokens = []string{"darwin", "macos"}
	case "windows":
		p.OSTokens = []string{"windows"}
		p.PreferZip = true
	default:
		return Platform{}, false
	}

	switch goarch {
	case "amd64":
		p.ArchTokens = []string{"x86_64", "amd64", "x64"}
	case "arm64":
		p.ArchTokens = []string{"aarch64", "arm64"}
	case "arm":
		p.ArchTokens = []string{"armv7", "armv6", "arm"}
	default:
		return Platform{}, false
	}

	return p, true
}

// Host returns the platform of the running process.
func Host() (Platform, bool) {
	return Detect(runtime.GOOS, runtime.GOARCH)
}
