// File: doc.go
// Title: RCL Interpreter Package Documentation
// Description: Tree-walking execution of RCL programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package interpreter executes RCL programs against a Robot.

Values are scalars (int, bool), rectangular arrays or the undefined value
returned by GET before a task has published a result. Binary operators
flatten both operands, stretch a one-element side to the other's length and
reshape the result like the longer operand; a one-element result becomes a
scalar. Majority operators are TRUE when strictly more than half of the
flattened elements satisfy the predicate.

Task calls copy the caller's environment, bind parameters on top and
restore the copy on return. Published results live in the FunctionTable and
survive the restore.

Every fault is a *RuntimeError and ends the run. Robot actions performed
before the fault are kept.
*/
package interpreter
