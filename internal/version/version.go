// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/ragchat/internal/version.Version=v0.3.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for a startup log line.
func String() string {
	return fmt.Sprintf("ragchat %s (commit %s, built %s)", Version, Commit, Date)
}
