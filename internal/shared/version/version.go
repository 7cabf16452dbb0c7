// Package version compares store plugin versions with the latest published release.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// UpdateAvailable reports whether latest is a newer release than current.
// Unknown or unparsable versions never produce an update hint.
func UpdateAvailable(current, latest string) bool {
	c, l := Normalize(current), Normalize(latest)
	if !semver.IsValid(c) || !semver.IsValid(l) {
		return false
	}
	return semver.Compare(c, l) < 0
}
