// Package version records the build version.
package version

// Version is the semantic version of this build. Overridden at link time for
// release builds.
var Version = "v0.3.0"
