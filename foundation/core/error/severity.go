// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors to enable proper prioritization
//              when errors are logged. Severity drives the log level chosen by
//              the logger's LogError helper.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-19 v0.2.0: Severity mapping for RCL codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a problem with user input, e.g. a program that
	// does not compile
	SeverityLow Severity = iota

	// SeverityMedium indicates a failed run or a recoverable service problem
	SeverityMedium

	// SeverityHigh indicates a broken dependency such as the history database
	SeverityHigh

	// SeverityCritical indicates an error that makes the tool unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal, CodeServiceUnavailable:
		return SeverityCritical

	case CodeDatabaseError, CodeConnectionFailed, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeRuntime, CodeWallCollision, CodeCancelled, CodeTimeout, CodeNetworkError:
		return SeverityMedium

	case CodeLexical, CodeSyntax, CodeSemantic, CodeInvalidInput, CodeNotFound,
		CodeValidationFailed, CodeValueOutOfRange:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
