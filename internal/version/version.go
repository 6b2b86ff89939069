// Package version exposes build metadata stamped through -ldflags by
// the release pipeline.
package version

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the short git hash the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
