// File: errors.go
// Title: RCL Runtime Errors
// Description: The single error type raised while executing RCL programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"fmt"

	"github.com/msto63/cellbot/foundation/rcl/ast"
)

// ErrorKind classifies runtime faults
type ErrorKind int

const (
	ErrGeneric ErrorKind = iota
	ErrWallCollision
	ErrShape
	ErrIndex
	ErrDivisionByZero
	ErrZeroStep
	ErrResize
	ErrUndeclared
	ErrUndefined
	ErrResultOutsideCall
	ErrArity
	ErrIterationLimit
	ErrCallDepth
	ErrCancelled
)

var errorKindNames = map[ErrorKind]string{
	ErrGeneric:           "generic",
	ErrWallCollision:     "wall_collision",
	ErrShape:             "shape_mismatch",
	ErrIndex:             "index_out_of_range",
	ErrDivisionByZero:    "division_by_zero",
	ErrZeroStep:          "zero_step",
	ErrResize:            "invalid_resize",
	ErrUndeclared:        "undeclared",
	ErrUndefined:         "undefined_value",
	ErrResultOutsideCall: "result_outside_call",
	ErrArity:             "arity_mismatch",
	ErrIterationLimit:    "iteration_limit",
	ErrCallDepth:         "call_depth",
	ErrCancelled:         "cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// RuntimeError aborts a run. Line and Column are zero until the error
// passes through a node with a source position.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *RuntimeError) Error() string {
	if e.Line == 0 {
		return "runtime error: " + e.Message
	}
	return fmt.Sprintf("runtime error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// IsWallCollision reports whether the run stopped because MOVE hit a wall
func (e *RuntimeError) IsWallCollision() bool {
	return e.Kind == ErrWallCollision
}

func newError(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// at attaches pos to err when it carries no position yet
func at(pos ast.Position, err error) error {
	if re, ok := err.(*RuntimeError); ok && re.Line == 0 {
		re.Line, re.Column = pos.Line, pos.Column
	}
	return err
}
