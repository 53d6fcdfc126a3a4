// File: doc.go
// Title: RCL Semantic Analysis Package Documentation
// Description: Static checking of parsed RCL programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package semantic type-checks RCL programs before execution.

The analyzer keeps a stack of scopes. Top-level declarations live in the
global scope; every task body opens an isolated scope that sees only the
task's parameters and locals. Parameters start with an unknown type that
is fixed by their first use.

Types carry a base (int or bool) and a dimension list. Dimension sizes are
recorded when they are literals and left open otherwise; concrete shapes
are verified by the interpreter.
*/
package semantic
