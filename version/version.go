package version //nolint:revive // package name intentionally matches build-info convention

import "fmt"

//nolint:gochecknoglobals //version information is set at build time
var (
	Repository string
	Version    string
	Commit     string
	Date       string
)

// String describes the build, e.g. "v1.2.0 (abc123, 2026-01-02)".
func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit == "" {
		return v
	}
	if Date == "" {
		return fmt.Sprintf("%s (%s)", v, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", v, Commit, Date)
}
