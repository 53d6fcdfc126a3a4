// File: nodes.go
// Title: RCL AST Node Definitions
// Description: Defines every node of the RCL abstract syntax tree together
//              with operator enums and S-expression rendering.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Position represents a position in the source code
type Position struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Pos returns the position itself so that embedding it satisfies Node
func (p Position) Pos() Position { return p }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is implemented by every AST node
type Node interface {
	Pos() Position
	String() string
}

// Stmt is a statement node
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file
type Program struct {
	Statements []Stmt
}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}

func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// Tasks returns the top-level task declarations in source order
func (p *Program) Tasks() []*TaskDecl {
	var tasks []*TaskDecl
	for _, s := range p.Statements {
		if t, ok := s.(*TaskDecl); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// BinaryOp is an arithmetic or logical binary operator
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "and"
	default:
		return "?"
	}
}

// IsArithmetic reports whether op works on ints
func (op BinaryOp) IsArithmetic() bool {
	return op != OpAnd
}

// Comparison is a relation used by majority and elementwise comparisons
type Comparison int

const (
	CmpEQ Comparison = iota
	CmpLT
	CmpGT
	CmpLTE
	CmpGTE
)

// Holds reports whether a <rel> b
func (c Comparison) Holds(a, b int) bool {
	switch c {
	case CmpEQ:
		return a == b
	case CmpLT:
		return a < b
	case CmpGT:
		return a > b
	case CmpLTE:
		return a <= b
	case CmpGTE:
		return a >= b
	default:
		return false
	}
}

func (c Comparison) String() string {
	switch c {
	case CmpEQ:
		return "EQ"
	case CmpLT:
		return "LT"
	case CmpGT:
		return "GT"
	case CmpLTE:
		return "LTE"
	case CmpGTE:
		return "GTE"
	default:
		return "?"
	}
}

// MajorityOp is one of MXEQ..MXGTE, MXTRUE, MXFALSE
type MajorityOp int

const (
	MajEQ MajorityOp = iota
	MajLT
	MajGT
	MajLTE
	MajGTE
	MajTrue
	MajFalse
)

// Comparison returns the relation against zero; ok is false for MXTRUE/MXFALSE
func (op MajorityOp) Comparison() (Comparison, bool) {
	switch op {
	case MajEQ:
		return CmpEQ, true
	case MajLT:
		return CmpLT, true
	case MajGT:
		return CmpGT, true
	case MajLTE:
		return CmpLTE, true
	case MajGTE:
		return CmpGTE, true
	default:
		return 0, false
	}
}

// IsTruth reports whether op is MXTRUE or MXFALSE
func (op MajorityOp) IsTruth() bool {
	return op == MajTrue || op == MajFalse
}

func (op MajorityOp) String() string {
	switch op {
	case MajTrue:
		return "MXTRUE"
	case MajFalse:
		return "MXFALSE"
	}
	c, _ := op.Comparison()
	return "MX" + c.String()
}

// CastOp is LOGITIZE or DIGITIZE
type CastOp int

const (
	CastLogitize CastOp = iota
	CastDigitize
)

func (op CastOp) String() string {
	if op == CastLogitize {
		return "LOGITIZE"
	}
	return "DIGITIZE"
}

// ResizeOp is REDUCE or EXTEND
type ResizeOp int

const (
	ResizeReduce ResizeOp = iota
	ResizeExtend
)

func (op ResizeOp) String() string {
	if op == ResizeReduce {
		return "REDUCE"
	}
	return "EXTEND"
}

// Direction is the argument of ROTATE
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

func (d Direction) String() string {
	if d == DirLeft {
		return "LEFT"
	}
	return "RIGHT"
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VarDecl is `VAR name [dims]? = value`
type VarDecl struct {
	Position
	Name  string
	Dims  []Expr
	Value Expr
}

// Assign is `name = value`
type Assign struct {
	Position
	Name  string
	Value Expr
}

// ForLoop is `FOR counter BOUNDARY boundary STEP step body`
type ForLoop struct {
	Position
	Counter  string
	Boundary Expr
	Step     Expr
	Body     *Block
}

// SwitchArm is one `TRUE|FALSE block` branch of a SWITCH
type SwitchArm struct {
	Literal bool
	Body    *Block
}

// Switch is `SWITCH cond lit block [lit block]?`
type Switch struct {
	Position
	Cond Expr
	Then SwitchArm
	Else *SwitchArm
}

// TaskDecl is `TASK name (params) body`
type TaskDecl struct {
	Position
	Name   string
	Params []string
	Body   *Block
}

// Call is `DO name args...`
type Call struct {
	Position
	Name string
	Args []Expr
}

// Result is `RESULT value`
type Result struct {
	Position
	Value Expr
}

// Move is `MOVE`
type Move struct {
	Position
}

// Rotate is `ROTATE LEFT|RIGHT`
type Rotate struct {
	Position
	Dir Direction
}

// Resize is `REDUCE|EXTEND name [dims]?`
type Resize struct {
	Position
	Op   ResizeOp
	Name string
	Dims []Expr
}

// Block is a parenthesised statement sequence
type Block struct {
	Position
	Statements []Stmt
}

// ExprStmt is an expression evaluated for its side effects
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Pos() Position { return s.X.Pos() }

func (*VarDecl) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*ForLoop) stmtNode()  {}
func (*Switch) stmtNode()   {}
func (*TaskDecl) stmtNode() {}
func (*Call) stmtNode()     {}
func (*Result) stmtNode()   {}
func (*Move) stmtNode()     {}
func (*Rotate) stmtNode()   {}
func (*Resize) stmtNode()   {}
func (*Block) stmtNode()    {}
func (*ExprStmt) stmtNode() {}

func (s *VarDecl) String() string {
	if len(s.Dims) == 0 {
		return fmt.Sprintf("(var %s %s)", s.Name, s.Value)
	}
	return fmt.Sprintf("(var %s %s %s)", s.Name, dimsString(s.Dims), s.Value)
}

func (s *Assign) String() string {
	return fmt.Sprintf("(set %s %s)", s.Name, s.Value)
}

func (s *ForLoop) String() string {
	return fmt.Sprintf("(for %s %s %s %s)", s.Counter, s.Boundary, s.Step, s.Body)
}

func (s *Switch) String() string {
	out := fmt.Sprintf("(switch %s %s %s", s.Cond, boolString(s.Then.Literal), s.Then.Body)
	if s.Else != nil {
		out += fmt.Sprintf(" %s %s", boolString(s.Else.Literal), s.Else.Body)
	}
	return out + ")"
}

func (s *TaskDecl) String() string {
	return fmt.Sprintf("(task %s (%s) %s)", s.Name, strings.Join(s.Params, " "), s.Body)
}

func (s *Call) String() string {
	if len(s.Args) == 0 {
		return fmt.Sprintf("(do %s)", s.Name)
	}
	return fmt.Sprintf("(do %s %s)", s.Name, joinExprs(s.Args))
}

func (s *Result) String() string {
	return fmt.Sprintf("(result %s)", s.Value)
}

func (s *Move) String() string { return "(move)" }

func (s *Rotate) String() string {
	return fmt.Sprintf("(rotate %s)", strings.ToLower(s.Dir.String()))
}

func (s *Resize) String() string {
	name := strings.ToLower(s.Op.String())
	if len(s.Dims) == 0 {
		return fmt.Sprintf("(%s %s)", name, s.Name)
	}
	return fmt.Sprintf("(%s %s %s)", name, s.Name, dimsString(s.Dims))
}

func (s *Block) String() string {
	if len(s.Statements) == 0 {
		return "(block)"
	}
	parts := make([]string, len(s.Statements))
	for i, st := range s.Statements {
		parts[i] = st.String()
	}
	return "(block " + strings.Join(parts, " ") + ")"
}

func (s *ExprStmt) String() string { return s.X.String() }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IntLit is an integer literal; Base is 8, 10 or 16
type IntLit struct {
	Position
	Value int
	Base  int
	Raw   string
}

// BoolLit is TRUE or FALSE
type BoolLit struct {
	Position
	Value bool
}

// Ident is a variable reference
type Ident struct {
	Position
	Name string
}

// ArrayLit is `[e1, e2, ...]`
type ArrayLit struct {
	Position
	Elements []Expr
}

// Index is `name[i, j, ...]` with 1-based indices
type Index struct {
	Position
	Name    string
	Indices []Expr
}

// Size is `SIZE(name)`
type Size struct {
	Position
	Name string
}

// Cast is `LOGITIZE name` or `DIGITIZE name`
type Cast struct {
	Position
	Op   CastOp
	Name string
}

// Binary is `left op right`
type Binary struct {
	Position
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Not is `NOT operand`
type Not struct {
	Position
	Operand Expr
}

// Neg is unary minus
type Neg struct {
	Position
	Operand Expr
}

// Majority is a majority vote over the flattened operand.
// Postfix `e MXGT` and prefix `MXGT(e)` both produce this node.
type Majority struct {
	Position
	Op      MajorityOp
	Operand Expr
}

// Elementwise compares each element against zero, or, when Right is set,
// the elements of Left against the elements of Right.
type Elementwise struct {
	Position
	Op    Comparison
	Left  Expr
	Right Expr
}

// GetEnv is `GET ENVIRONMENT`
type GetEnv struct {
	Position
}

// GetResult is `GET name`
type GetResult struct {
	Position
	Name string
}

func (*IntLit) exprNode()      {}
func (*BoolLit) exprNode()     {}
func (*Ident) exprNode()       {}
func (*ArrayLit) exprNode()    {}
func (*Index) exprNode()       {}
func (*Size) exprNode()        {}
func (*Cast) exprNode()        {}
func (*Binary) exprNode()      {}
func (*Not) exprNode()         {}
func (*Neg) exprNode()         {}
func (*Majority) exprNode()    {}
func (*Elementwise) exprNode() {}
func (*GetEnv) exprNode()      {}
func (*GetResult) exprNode()   {}

func (e *IntLit) String() string  { return strconv.Itoa(e.Value) }
func (e *BoolLit) String() string { return boolString(e.Value) }
func (e *Ident) String() string   { return e.Name }

func (e *ArrayLit) String() string {
	if len(e.Elements) == 0 {
		return "(array)"
	}
	return "(array " + joinExprs(e.Elements) + ")"
}

func (e *Index) String() string {
	return fmt.Sprintf("(index %s %s)", e.Name, joinExprs(e.Indices))
}

func (e *Size) String() string { return fmt.Sprintf("(size %s)", e.Name) }

func (e *Cast) String() string {
	return fmt.Sprintf("(%s %s)", strings.ToLower(e.Op.String()), e.Name)
}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Left, e.Right)
}

func (e *Not) String() string { return fmt.Sprintf("(not %s)", e.Operand) }
func (e *Neg) String() string { return fmt.Sprintf("(neg %s)", e.Operand) }

func (e *Majority) String() string {
	return fmt.Sprintf("(%s %s)", strings.ToLower(e.Op.String()), e.Operand)
}

func (e *Elementwise) String() string {
	op := "el" + strings.ToLower(e.Op.String())
	if e.Right == nil {
		return fmt.Sprintf("(%s %s)", op, e.Left)
	}
	return fmt.Sprintf("(%s %s %s)", op, e.Left, e.Right)
}

func (e *GetEnv) String() string    { return "(environment)" }
func (e *GetResult) String() string { return fmt.Sprintf("(get %s)", e.Name) }

func boolString(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

func dimsString(dims []Expr) string {
	return "[" + joinExprs(dims) + "]"
}
