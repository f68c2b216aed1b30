// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Info carries the version values injected via ldflags at build time. The
// zero value means a plain `go build` without the release flags.
type Info struct {
	Version   string // semantic version from git tags (e.g. "v0.3.0")
	GitCommit string // short git commit hash
	BuildTime string // build timestamp, RFC3339
}
