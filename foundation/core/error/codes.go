// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for consistent error classification
//              across cellbot. Codes separate the RCL compiler phases from runtime
//              faults and from the surrounding services (storage, config, transport).
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-19 v0.2.0: RCL phase codes, dropped platform-specific codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// RCL language pipeline
	CodeLexical       Code = "RCL_LEXICAL"
	CodeSyntax        Code = "RCL_SYNTAX"
	CodeSemantic      Code = "RCL_SEMANTIC"
	CodeRuntime       Code = "RCL_RUNTIME"
	CodeWallCollision Code = "RCL_WALL_COLLISION"
	CodeCancelled     Code = "RCL_CANCELLED"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeValueOutOfRange  Code = "VALUE_OUT_OF_RANGE"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeLexical, CodeSyntax, CodeSemantic, CodeRuntime, CodeWallCollision, CodeCancelled,
		CodeDatabaseError, CodeConnectionFailed,
		CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeInvalidConfig,
		CodeValidationFailed, CodeValueOutOfRange:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexical, CodeSyntax, CodeSemantic:
		return "compile"
	case CodeRuntime, CodeWallCollision, CodeCancelled:
		return "runtime"
	case CodeDatabaseError, CodeConnectionFailed:
		return "database"
	case CodeServiceUnavailable, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeValueOutOfRange:
		return "validation"
	default:
		return "generic"
	}
}

// IsCompileTime reports whether the code belongs to a static phase
// (lexing, parsing, semantic analysis) that blocks execution entirely.
func (c Code) IsCompileTime() bool {
	return c.Category() == "compile"
}
