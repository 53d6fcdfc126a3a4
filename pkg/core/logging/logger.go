// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     logging
// Description: Logging package that builds Foundation loggers for the CLI
//              and the remote runner
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

// Level represents log severity for the key-value logger
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}
