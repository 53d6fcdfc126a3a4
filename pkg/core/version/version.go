// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and the runner
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Application version
	App = "0.1.0"

	// RCL language revision understood by the toolchain
	Language = "1.0.0"

	// Remote runner protocol version
	Runner = "1.0.0"
)

// Set at build time via -ldflags "-X github.com/msto63/cellbot/pkg/core/version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "rcl", "language":
		return Language
	case "runner", "remote":
		return Runner
	default:
		return App
	}
}

// Info describes the running build
type Info struct {
	App       string `json:"app"`
	Language  string `json:"language"`
	Runner    string `json:"runner"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information
func Get() Info {
	return Info{
		App:       App,
		Language:  Language,
		Runner:    Runner,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("cellbot %s (rcl %s, commit %s, %s, %s)",
		i.App, i.Language, i.Commit, i.GoVersion, i.Platform)
}
