// Package version exposes the build version, overridable at link time with
// -ldflags "-X github.com/ovokpus/PostAssist/pkg/version.Version=...".
package version

// Version is the service version reported by the health endpoint.
var Version = "1.0.0"
