// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     replay
// Description: Message types for playback and live runs
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package replay

import (
	"time"

	"github.com/msto63/cellbot/internal/runner"
)

// Event is sent by a live run. Exactly one field is set.
type Event struct {
	Frame  *runner.Frame
	Report *runner.Report
}

// tickMsg advances playback
type tickMsg time.Time

// frameMsg carries a frame from a live run
type frameMsg struct {
	frame runner.Frame
}

// finishedMsg carries the final report of a live run
type finishedMsg struct {
	report *runner.Report
}

// closedMsg signals that the live event channel was closed
type closedMsg struct{}
