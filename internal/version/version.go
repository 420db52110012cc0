// Package version knows which release is running and, via a background task,
// which release is the newest published one.
package version

import (
	goversion "github.com/hashicorp/go-version"
)

// Version is the release this binary was built from.
const Version = "0.14.2"

// CacheKey holds the latest known released version in the shared cache. It is
// written by the version_check task and read by the dashboard.
const CacheKey = "signet_latest_version"

// TaskVersionCheck is the task name the worker loop dispatches on.
const TaskVersionCheck = "version_check"

var current = goversion.Must(goversion.NewVersion(Version))

// Current returns the running release as a parsed version.
func Current() *goversion.Version {
	return current
}
