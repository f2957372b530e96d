// Package version carries build identification, stamped via -ldflags.
package version

var (
	// Version is the release version of the replay tool
	Version = "dev"
	// GitSHA is the git commit SHA of the build
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
