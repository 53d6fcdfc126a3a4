// File: visitor.go
// Title: RCL AST Traversal
// Description: Depth-first traversal helpers over the RCL syntax tree.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

// Inspect traverses the tree rooted at n in depth-first order. It calls f(n)
// and descends into the children of n only when f returns true.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *VarDecl:
		inspectExprs(n.Dims, f)
		Inspect(n.Value, f)
	case *Assign:
		Inspect(n.Value, f)
	case *ForLoop:
		Inspect(n.Boundary, f)
		Inspect(n.Step, f)
		Inspect(n.Body, f)
	case *Switch:
		Inspect(n.Cond, f)
		Inspect(n.Then.Body, f)
		if n.Else != nil {
			Inspect(n.Else.Body, f)
		}
	case *TaskDecl:
		Inspect(n.Body, f)
	case *Call:
		inspectExprs(n.Args, f)
	case *Result:
		Inspect(n.Value, f)
	case *Resize:
		inspectExprs(n.Dims, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *ArrayLit:
		inspectExprs(n.Elements, f)
	case *Index:
		inspectExprs(n.Indices, f)
	case *Binary:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Not:
		Inspect(n.Operand, f)
	case *Neg:
		Inspect(n.Operand, f)
	case *Majority:
		Inspect(n.Operand, f)
	case *Elementwise:
		Inspect(n.Left, f)
		if n.Right != nil {
			Inspect(n.Right, f)
		}
	}
}

func inspectExprs(exprs []Expr, f func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, f)
	}
}

// ContainsResult reports whether body holds a RESULT statement reachable
// through nested blocks, loops and switches. RESULT statements that belong
// to a nested task declaration do not count.
func ContainsResult(body *Block) bool {
	found := false
	Inspect(body, func(n Node) bool {
		if found {
			return false
		}
		switch n.(type) {
		case *Result:
			found = true
			return false
		case *TaskDecl:
			return false
		case Expr:
			return false
		}
		return true
	})
	return found
}

// CountRobotActions returns how many MOVE and ROTATE statements appear in n
func CountRobotActions(n Node) int {
	count := 0
	Inspect(n, func(n Node) bool {
		switch n.(type) {
		case *Move, *Rotate:
			count++
		}
		return true
	})
	return count
}
