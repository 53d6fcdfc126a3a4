// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, formatters, context fields,
//              error logging and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial test suite
// - 2026-10-19 v0.2.0: Rewritten for the synchronous logger

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf}), buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logAt    func(l *Logger)
		want     bool
	}{
		{"debug filtered at info", LevelInfo, func(l *Logger) { l.Debug("x") }, false},
		{"info passes at info", LevelInfo, func(l *Logger) { l.Info("x") }, true},
		{"trace passes at trace", LevelTrace, func(l *Logger) { l.Trace("x") }, true},
		{"warn filtered at error", LevelError, func(l *Logger) { l.Warn("x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(tt.minLevel, FormatText)
			tt.logAt(logger)
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("Expected output=%v, got %v (%q)", tt.want, got, buf.String())
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)
	logger.WithName("rcl").WithField("component", "rcl-parser").WithRunID("run-1").
		Info("program parsed", Fields{"statements": 3})

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Expected valid JSON, got error %v for %q", err, buf.String())
	}

	checks := map[string]interface{}{
		"level":      "info",
		"message":    "program parsed",
		"logger":     "rcl",
		"component":  "rcl-parser",
		"run_id":     "run-1",
		"statements": float64(3),
	}
	for k, want := range checks {
		if data[k] != want {
			t.Errorf("Expected %s=%v, got %v", k, want, data[k])
		}
	}
}

func TestLogger_TextOutputSortedFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.Info("step", Fields{"b": 2, "a": 1})

	out := buf.String()
	if !strings.Contains(out, "[INF]") {
		t.Errorf("Expected level marker, got %q", out)
	}
	if !strings.Contains(out, "[a=1 b=2]") {
		t.Errorf("Expected sorted fields, got %q", out)
	}
}

func TestLogger_LogfmtOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatLogfmt)
	logger.Info("moved", Fields{"row": 2, "facing": "N"})

	out := buf.String()
	for _, want := range []string{"level=info", `message="moved"`, `facing="N"`, "row=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatText)
	child := parent.WithField("component", "child")

	parent.Info("parent")
	if strings.Contains(buf.String(), "component") {
		t.Errorf("Expected parent without child field, got %q", buf.String())
	}

	buf.Reset()
	child.Info("child")
	if !strings.Contains(buf.String(), "component=child") {
		t.Errorf("Expected child field, got %q", buf.String())
	}
}

func TestLogger_LogErrorSeverity(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{"syntax error logs at info", mdwerror.New("bad token").WithCode(mdwerror.CodeSyntax), "[INF]"},
		{"runtime error logs at warn", mdwerror.New("hit wall").WithCode(mdwerror.CodeWallCollision), "[WRN]"},
		{"database error logs at error", mdwerror.New("locked").WithCode(mdwerror.CodeDatabaseError), "[ERR]"},
		{"plain error logs at error", errors.New("plain"), "[ERR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatText)
			logger.LogError(tt.err)
			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("Expected %s, got %q", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if lvl, err := ParseLevel("DEBUG"); err != nil || lvl != LevelDebug {
		t.Errorf("Expected debug, got %v (%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if f, err := ParseFormat("logfmt"); err != nil || f != FormatLogfmt {
		t.Errorf("Expected logfmt, got %v (%v)", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	timer := logger.StartTimer("parse")
	if !timer.IsRunning() {
		t.Error("Expected running timer")
	}
	timer.Stop()
	if timer.IsRunning() {
		t.Error("Expected stopped timer")
	}
	if !strings.Contains(buf.String(), "parse completed") {
		t.Errorf("Expected completion message, got %q", buf.String())
	}
	if timer.Stop() != 0 {
		t.Error("Expected second Stop to return 0")
	}

	buf.Reset()
	logger.StartTimer("run").StopWithError(errors.New("boom"))
	if !strings.Contains(buf.String(), "[WRN]") || !strings.Contains(buf.String(), "run failed") {
		t.Errorf("Expected warn failure message, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("Expected discard logger to disable every level")
	}
}
