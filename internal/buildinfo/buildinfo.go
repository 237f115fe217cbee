// Package buildinfo holds build-time metadata injected via -ldflags:
//
//	-X github.com/garyellow/calmmate-go/internal/buildinfo.Version=v1.2.0
//	-X github.com/garyellow/calmmate-go/internal/buildinfo.Commit=abc1234
//	-X github.com/garyellow/calmmate-go/internal/buildinfo.BuildDate=2026-01-01T00:00:00Z
package buildinfo

// Version is the semantic version or tag for this build.
var Version = ""

// Commit is the git commit SHA for this build.
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
var BuildDate = ""

// Release names this build for error reports: the version when set,
// otherwise the short commit, otherwise "dev".
func Release() string {
	switch {
	case Version != "":
		return Version
	case len(Commit) > 7:
		return Commit[:7]
	case Commit != "":
		return Commit
	default:
		return "dev"
	}
}

// Fields returns the build metadata as log or JSON fields.
func Fields() map[string]string {
	return map[string]string{
		"version":    Release(),
		"commit":     Commit,
		"build_date": BuildDate,
	}
}
