// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     logging
// Description: CaptureWriter keeps the most recent log lines of a run so
//              they can be stored alongside the run in the history
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"bytes"
	"sync"
)

// DefaultCaptureLines is the number of lines kept when no limit is given
const DefaultCaptureLines = 500

// CaptureWriter implements io.Writer and retains complete lines in a
// bounded buffer. Oldest lines are dropped first.
type CaptureWriter struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial []byte
	dropped int
}

// NewCaptureWriter creates a writer keeping at most limit lines
func NewCaptureWriter(limit int) *CaptureWriter {
	if limit <= 0 {
		limit = DefaultCaptureLines
	}
	return &CaptureWriter{
		limit: limit,
		lines: make([]string, 0, limit),
	}
}

// Write implements io.Writer
func (w *CaptureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := append(w.partial, p...)
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		w.append(string(data[:idx]))
		data = data[idx+1:]
	}
	w.partial = append([]byte(nil), data...)

	return len(p), nil
}

func (w *CaptureWriter) append(line string) {
	if len(w.lines) == w.limit {
		copy(w.lines, w.lines[1:])
		w.lines = w.lines[:w.limit-1]
		w.dropped++
	}
	w.lines = append(w.lines, line)
}

// Lines returns a copy of the retained lines, including an unterminated
// trailing line
func (w *CaptureWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, len(w.lines), len(w.lines)+1)
	copy(out, w.lines)
	if len(w.partial) > 0 {
		out = append(out, string(w.partial))
	}
	return out
}

// Dropped returns how many lines were evicted
func (w *CaptureWriter) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Reset clears the buffer
func (w *CaptureWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = w.lines[:0]
	w.partial = nil
	w.dropped = 0
}
