// File: doc.go
// Title: RCL Parser Package Documentation
// Description: Implements the lexical analyzer and parser for RCL programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

/*
Package parser provides lexical analysis and parsing for RCL, the robot
control language.

The lexer is case-insensitive for keywords and accepts decimal, octal
(leading 0 or 0o) and hexadecimal (0x) integer literals as well as `//`
line comments. The parser builds an ast.Program by recursive descent;
expressions use precedence climbing with these levels, lowest first:

  - MXTRUE, MXFALSE (prefix)
  - MXEQ, MXLT, MXGT, MXLTE, MXGTE (postfix, or prefix with parentheses)
  - ELEQ, ELLT, ELGT, ELLTE, ELGTE (prefix)
  - AND
  - + and -
  - * and /
  - NOT
  - unary minus

Statements need no separators. Arguments of `DO name` are juxtaposed
expressions; when the task has already been declared exactly its number
of parameters is consumed.

The first error stops parsing and is returned as *LexError or *ParseError.
*/
package parser
