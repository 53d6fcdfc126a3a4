// File: doc.go
// Title: RCL AST Package Documentation
// Description: Abstract syntax tree of the Robot Cell Language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package ast defines the abstract syntax tree produced by the RCL parser.

The tree is a closed set of node types. Statements implement Stmt and
expressions implement Expr; both interfaces carry unexported marker methods
so that only this package can add node kinds, and the semantic analyzer and
interpreter can switch over them exhaustively.

Nodes are built once by the parser and never mutated afterwards. String
renders a node as a compact S-expression, which is what `cellbot ast`
prints and what the parser tests compare against.
*/
package ast
