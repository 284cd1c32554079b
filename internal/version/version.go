// Package version exposes the build version injected via ldflags.
package version

var version = "v0.0.0"

// Version returns the build version string.
func Version() string {
	return version
}
