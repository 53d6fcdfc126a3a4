// Package error provides structured error handling for cellbot.
//
// Package: error
// Title: cellbot Error Handling Framework
// Description: This package implements a structured error handling system with contextual
//              information, error codes, severity and stack traces. The RCL engine wraps
//              lexer, parser, semantic and runtime failures into this type; services
//              attach operation names and request IDs.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: RCL phase codes
//
// Usage:
//   import mdwerror "github.com/msto63/cellbot/foundation/core/error"
//
//   err := mdwerror.Wrap(parseErr, "compile failed").
//     WithCode(mdwerror.CodeSyntax).
//     WithDetail("line", 4)
//
//   if mdwerror.HasCode(err, mdwerror.CodeWallCollision) {
//     // the robot hit a wall
//   }
package error
