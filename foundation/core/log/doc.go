// Package log provides structured logging for cellbot.
//
// Package: log
// Title: cellbot Structured Logging
// Description: This package implements structured logging with contextual fields,
//              multiple output formats, log levels, performance timers and
//              integration with the structured error type. The RCL engine logs
//              one component per compiler phase; services wrap it with the
//              key/value helper in pkg/core/logging.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-19 v0.2.0: Synchronous writer only, sorted field output, run IDs
//
// Usage:
//   import mdwlog "github.com/msto63/cellbot/foundation/core/log"
//
//   logger := mdwlog.New().
//     WithLevel(mdwlog.LevelDebug).
//     WithFormat(mdwlog.FormatText).
//     WithField("component", "rcl-parser")
//
//   logger.Info("program parsed", mdwlog.Fields{"statements": 12})
//
//   timer := logger.StartTimer("semantic_analysis")
//   // ... analyze
//   timer.Stop()
package log
