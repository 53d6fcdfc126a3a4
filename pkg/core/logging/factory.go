// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format (json, text, console, logfmt; default: console)
	Format string

	// File receives a copy of every entry when set
	File string

	// Output replaces stderr when set
	Output io.Writer

	// Additional outputs (besides the main output)
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "console",
	}
}

// FromConfig derives a logger configuration from the application config
func FromConfig(cfg *config.Config, serviceName string) LoggerConfig {
	lc := DefaultLoggerConfig(serviceName)
	lc.Level = cfg.General.LogLevel
	lc.Format = cfg.General.LogFormat
	return lc
}

// NewLogger creates a new Foundation logger. The returned closer releases
// the log file, if any.
func NewLogger(cfg LoggerConfig) (*mdwlog.Logger, io.Closer, error) {
	// Program output goes to stdout, logs stay on stderr
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	writers := []io.Writer{output}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		closer = f
	}

	writers = append(writers, cfg.AdditionalOutputs...)
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}

	logger := mdwlog.NewWithConfig(mdwlog.Config{
		Level:  parseLevel(cfg.Level),
		Format: parseFormat(cfg.Format),
		Output: output,
		Name:   cfg.ServiceName,
	})

	return logger, closer, nil
}

// NewSimpleLogger creates a console logger without file output
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	logger, _, _ := NewLogger(DefaultLoggerConfig(serviceName))
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLevel converts a string level to mdwlog.Level
func parseLevel(level string) mdwlog.Level {
	l, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return l
}

// parseFormat converts a string format to mdwlog.Format
func parseFormat(format string) mdwlog.Format {
	if format == "" {
		return mdwlog.FormatConsole
	}
	f, err := mdwlog.ParseFormat(format)
	if err != nil {
		return mdwlog.FormatConsole
	}
	return f
}

// Compatibility layer for code logging with key-value pairs

// Logger wraps the Foundation logger with a key-value API
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a key-value logger
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing Foundation logger
func Wrap(logger *mdwlog.Logger, name string) *Logger {
	return &Logger{
		Logger: logger.WithName(name),
		name:   name,
	}
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	mdwLevel := mdwlog.LevelInfo
	switch level {
	case LevelDebug:
		mdwLevel = mdwlog.LevelDebug
	case LevelInfo:
		mdwLevel = mdwlog.LevelInfo
	case LevelWarn:
		mdwLevel = mdwlog.LevelWarn
	case LevelError:
		mdwLevel = mdwlog.LevelError
	}

	return &Logger{
		Logger: l.Logger.WithLevel(mdwLevel),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
