// File: analyzer.go
// Title: RCL Semantic Analyzer
// Description: Single static pass over a parsed RCL program. Checks scoping,
//              typing and task declarations and stops at the first error.
//              Concrete array sizes are verified at run time.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package semantic

import (
	"fmt"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl/ast"
)

// SemanticError reports a static violation with its source position
type SemanticError struct {
	Message string
	Line    int
	Column  int
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Symbol is a declared variable or task parameter
type Symbol struct {
	Name  string
	Type  Type
	Pos   ast.Position
	Param bool
}

// TaskInfo describes a declared task
type TaskInfo struct {
	Name   string
	Params []string
	Result Type
	Pos    ast.Position
}

// Arity returns the number of parameters of the task
func (t *TaskInfo) Arity() int { return len(t.Params) }

// Result is the typed symbol table produced by a successful analysis
type Result struct {
	Globals map[string]*Symbol
	Tasks   map[string]*TaskInfo
}

type scope struct {
	symbols map[string]*Symbol
	// isolated scopes hide everything below them on the stack
	isolated bool
}

func newScope(isolated bool) *scope {
	return &scope{symbols: make(map[string]*Symbol), isolated: isolated}
}

// Options configures the analyzer
type Options struct {
	Logger *mdwlog.Logger
}

// Analyzer performs static checking of RCL programs
type Analyzer struct {
	scopes  []*scope
	tasks   map[string]*TaskInfo
	current *TaskInfo
	logger  *mdwlog.Logger

	// branches counts the enclosing SWITCH arms and loop bodies
	branches int
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	return &Analyzer{logger: opts.Logger.WithField("component", "rcl-semantic")}
}

// Analyze checks prog with a default analyzer
func Analyze(prog *ast.Program) (*Result, error) {
	return New(Options{Logger: mdwlog.Discard()}).Analyze(prog)
}

// Analyze checks prog and returns its symbol table. The first violation is
// returned as *SemanticError.
func (a *Analyzer) Analyze(prog *ast.Program) (*Result, error) {
	a.scopes = []*scope{newScope(false)}
	a.tasks = make(map[string]*TaskInfo)
	a.current = nil
	a.branches = 0

	for _, stmt := range prog.Statements {
		if err := a.stmt(stmt); err != nil {
			a.logger.Debug("RCL semantic analysis failed", mdwlog.Fields{"error": err.Error()})
			return nil, err
		}
	}

	res := &Result{Globals: a.scopes[0].symbols, Tasks: a.tasks}
	a.logger.Debug("RCL semantic analysis completed", mdwlog.Fields{
		"globals": len(res.Globals),
		"tasks":   len(res.Tasks),
	})
	return res, nil
}

// ---------------------------------------------------------------------------
// Scopes
// ---------------------------------------------------------------------------

func (a *Analyzer) declare(name string, t Type, pos ast.Position, param bool) error {
	top := a.scopes[len(a.scopes)-1]
	if prev, exists := top.symbols[name]; exists {
		return errorAt(pos, "variable %q already declared at %s", name, prev.Pos)
	}
	top.symbols[name] = &Symbol{Name: name, Type: t, Pos: pos, Param: param}
	return nil
}

func (a *Analyzer) lookup(name string) *Symbol {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if sym, ok := a.scopes[i].symbols[name]; ok {
			return sym
		}
		if a.scopes[i].isolated {
			return nil
		}
	}
	return nil
}

func (a *Analyzer) resolve(name string, pos ast.Position) (*Symbol, error) {
	sym := a.lookup(name)
	if sym == nil {
		return nil, errorAt(pos, "undeclared variable %q", name)
	}
	return sym, nil
}

// settle fixes an unknown type to want. When e names a symbol whose type is
// still unknown, the symbol adopts want as well.
func (a *Analyzer) settle(e ast.Expr, t Type, want Base) Type {
	if !t.IsUnknown() {
		return t
	}
	if id, ok := e.(*ast.Ident); ok {
		if sym := a.lookup(id.Name); sym != nil && sym.Type.IsUnknown() {
			sym.Type = Scalar(want)
		}
	}
	return Scalar(want)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (a *Analyzer) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.VarDecl:
		return a.varDecl(s)
	case *ast.Assign:
		return a.assign(s)
	case *ast.ForLoop:
		return a.forLoop(s)
	case *ast.Switch:
		return a.switchStmt(s)
	case *ast.TaskDecl:
		return a.taskDecl(s)
	case *ast.Call:
		return a.call(s)
	case *ast.Result:
		t, err := a.expr(s.Value)
		if err != nil {
			return err
		}
		if a.current != nil && a.current.Result.IsUnknown() {
			a.current.Result = t
		}
		return nil
	case *ast.Move, *ast.Rotate:
		return nil
	case *ast.Resize:
		return a.resize(s)
	case *ast.Block:
		return a.block(s)
	case *ast.ExprStmt:
		_, err := a.expr(s.X)
		return err
	default:
		return errorAt(s.Pos(), "unsupported statement %T", s)
	}
}

func (a *Analyzer) block(b *ast.Block) error {
	for _, s := range b.Statements {
		if err := a.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) varDecl(s *ast.VarDecl) error {
	dims, err := a.dims(s.Dims)
	if err != nil {
		return err
	}

	value, err := a.expr(s.Value)
	if err != nil {
		return err
	}

	declared := value
	if len(dims) > 0 {
		if !value.IsUnknown() && !value.IsArray() {
			return errorAt(s.Pos(), "array %q cannot be initialized from scalar %s", s.Name, value)
		}
		declared = ArrayOf(value.Base, dims...)
	}

	return a.declare(s.Name, declared, s.Pos(), false)
}

// dims checks a dimension list and returns the statically known sizes
func (a *Analyzer) dims(exprs []ast.Expr) ([]int, error) {
	dims := make([]int, 0, len(exprs))
	for _, e := range exprs {
		t, err := a.expr(e)
		if err != nil {
			return nil, err
		}
		t = a.settle(e, t, Int)
		if t.Base != Int || t.IsArray() {
			return nil, errorAt(e.Pos(), "array dimension must be a scalar int, got %s", t)
		}

		size, literal := literalInt(e)
		if !literal {
			dims = append(dims, AnyDim)
			continue
		}
		if size <= 0 {
			return nil, errorAt(e.Pos(), "array dimension must be positive, got %d", size)
		}
		dims = append(dims, size)
	}
	return dims, nil
}

func (a *Analyzer) assign(s *ast.Assign) error {
	sym, err := a.resolve(s.Name, s.Pos())
	if err != nil {
		return err
	}

	value, err := a.expr(s.Value)
	if err != nil {
		return err
	}

	switch {
	case sym.Type.IsUnknown():
		sym.Type = value
	case value.IsUnknown():
		a.settle(s.Value, value, sym.Type.Base)
	case !sym.Type.Compatible(value):
		return errorAt(s.Pos(), "cannot assign %s to %q of type %s", value, s.Name, sym.Type)
	case value.IsArray():
		a.reshape(sym, value)
	}
	return nil
}

// reshape records the new shape of an array variable. Inside a branch the
// old shape may survive, so only what both shapes share is kept.
func (a *Analyzer) reshape(sym *Symbol, t Type) {
	if a.branches > 0 {
		sym.Type = sym.Type.Join(t)
		return
	}
	sym.Type = t
}

// branch analyzes a block that may run zero or more times
func (a *Analyzer) branch(b *ast.Block) error {
	a.branches++
	defer func() { a.branches-- }()
	return a.block(b)
}

func (a *Analyzer) forLoop(s *ast.ForLoop) error {
	counter, err := a.resolve(s.Counter, s.Pos())
	if err != nil {
		return err
	}
	if counter.Type.IsUnknown() {
		counter.Type = IntType
	}
	if counter.Type.Base != Int || counter.Type.IsArray() {
		return errorAt(s.Pos(), "loop counter %q must be a scalar int, got %s", s.Counter, counter.Type)
	}

	for _, part := range []struct {
		name string
		expr ast.Expr
	}{{"BOUNDARY", s.Boundary}, {"STEP", s.Step}} {
		t, err := a.expr(part.expr)
		if err != nil {
			return err
		}
		if t = a.settle(part.expr, t, Int); t.Base != Int {
			return errorAt(part.expr.Pos(), "loop %s must be int, got %s", part.name, t)
		}
	}

	if step, literal := literalInt(s.Step); literal && step == 0 {
		return errorAt(s.Step.Pos(), "loop STEP must not be zero")
	}

	return a.branch(s.Body)
}

func (a *Analyzer) switchStmt(s *ast.Switch) error {
	cond, err := a.expr(s.Cond)
	if err != nil {
		return err
	}
	if cond = a.settle(s.Cond, cond, Bool); cond.Base != Bool {
		return errorAt(s.Cond.Pos(), "SWITCH condition must be bool, got %s", cond)
	}

	if err := a.branch(s.Then.Body); err != nil {
		return err
	}
	if s.Else != nil {
		return a.branch(s.Else.Body)
	}
	return nil
}

func (a *Analyzer) taskDecl(s *ast.TaskDecl) error {
	if prev, exists := a.tasks[s.Name]; exists {
		return errorAt(s.Pos(), "task %q already declared at %s", s.Name, prev.Pos)
	}

	info := &TaskInfo{Name: s.Name, Params: s.Params, Result: UnknownType, Pos: s.Pos()}
	a.tasks[s.Name] = info

	outer := a.current
	a.current = info
	a.scopes = append(a.scopes, newScope(true))
	defer func() {
		a.scopes = a.scopes[:len(a.scopes)-1]
		a.current = outer
	}()

	for _, p := range s.Params {
		if err := a.declare(p, UnknownType, s.Pos(), true); err != nil {
			return errorAt(s.Pos(), "duplicate parameter %q in task %q", p, s.Name)
		}
	}

	if err := a.block(s.Body); err != nil {
		return err
	}

	if !ast.ContainsResult(s.Body) {
		return errorAt(s.Pos(), "task %q has no RESULT statement", s.Name)
	}
	return nil
}

func (a *Analyzer) call(s *ast.Call) error {
	task, ok := a.tasks[s.Name]
	if !ok {
		return errorAt(s.Pos(), "call of undeclared task %q", s.Name)
	}
	if len(s.Args) != task.Arity() {
		return errorAt(s.Pos(), "task %q expects %d arguments, got %d", s.Name, task.Arity(), len(s.Args))
	}
	for _, arg := range s.Args {
		if _, err := a.expr(arg); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) resize(s *ast.Resize) error {
	sym, err := a.resolve(s.Name, s.Pos())
	if err != nil {
		return err
	}

	dims, err := a.dims(s.Dims)
	if err != nil {
		return err
	}

	base := sym.Type.Base
	if base == Unknown {
		base = Int
	}
	if len(dims) == 0 {
		a.reshape(sym, sym.Type.Flat(base))
	} else {
		a.reshape(sym, ArrayOf(base, dims...))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (a *Analyzer) expr(e ast.Expr) (Type, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return IntType, nil

	case *ast.BoolLit:
		return BoolType, nil

	case *ast.Ident:
		sym, err := a.resolve(e.Name, e.Pos())
		if err != nil {
			return Type{}, err
		}
		return sym.Type, nil

	case *ast.ArrayLit:
		return a.arrayLit(e)

	case *ast.Index:
		return a.index(e)

	case *ast.Size:
		if _, err := a.resolve(e.Name, e.Pos()); err != nil {
			return Type{}, err
		}
		return IntType, nil

	case *ast.Cast:
		sym, err := a.resolve(e.Name, e.Pos())
		if err != nil {
			return Type{}, err
		}
		if e.Op == ast.CastLogitize {
			return sym.Type.Flat(Bool), nil
		}
		return sym.Type.Flat(Int), nil

	case *ast.Binary:
		return a.binary(e)

	case *ast.Not:
		t, err := a.scalarOperand(e.Operand, Bool, "NOT")
		if err != nil {
			return Type{}, err
		}
		return t, nil

	case *ast.Neg:
		t, err := a.expr(e.Operand)
		if err != nil {
			return Type{}, err
		}
		if t = a.settle(e.Operand, t, Int); t.Base != Int {
			return Type{}, errorAt(e.Pos(), "unary minus requires int, got %s", t)
		}
		return t, nil

	case *ast.Majority:
		return a.majority(e)

	case *ast.Elementwise:
		return a.elementwise(e)

	case *ast.GetEnv:
		return EnvironmentType, nil

	case *ast.GetResult:
		task, ok := a.tasks[e.Name]
		if !ok {
			return Type{}, errorAt(e.Pos(), "GET of undeclared task %q", e.Name)
		}
		return task.Result, nil

	default:
		return Type{}, errorAt(e.Pos(), "unsupported expression %T", e)
	}
}

func (a *Analyzer) arrayLit(e *ast.ArrayLit) (Type, error) {
	if len(e.Elements) == 0 {
		return ArrayOf(Int, 0), nil
	}

	var first Type
	for i, elem := range e.Elements {
		t, err := a.expr(elem)
		if err != nil {
			return Type{}, err
		}
		if i == 0 {
			first = t
			continue
		}
		if first.IsUnknown() {
			first = t
			continue
		}
		if !t.IsUnknown() && t.Base != first.Base {
			return Type{}, errorAt(elem.Pos(), "array literal mixes %s and %s elements", first.Base, t.Base)
		}
	}

	base := first.Base
	if base == Unknown {
		base = Int
	}
	if first.IsArray() && !first.RankKnown() {
		return ArrayOf(base, AnyRank), nil
	}
	return ArrayOf(base, append([]int{len(e.Elements)}, first.Dims...)...), nil
}

func (a *Analyzer) index(e *ast.Index) (Type, error) {
	sym, err := a.resolve(e.Name, e.Pos())
	if err != nil {
		return Type{}, err
	}
	if !sym.Type.IsUnknown() && !sym.Type.IsArray() {
		return Type{}, errorAt(e.Pos(), "cannot index scalar %q", e.Name)
	}
	for _, idx := range e.Indices {
		if _, err := a.scalarOperand(idx, Int, "array index"); err != nil {
			return Type{}, err
		}
	}

	// Rank faults are left to the run-time index check
	if !sym.Type.RankKnown() || len(e.Indices) > len(sym.Type.Dims) {
		return UnknownType, nil
	}
	return ArrayOf(sym.Type.Base, sym.Type.Dims[len(e.Indices):]...), nil
}

func (a *Analyzer) binary(e *ast.Binary) (Type, error) {
	want, what := Int, e.Op.String()
	if e.Op == ast.OpAnd {
		want, what = Bool, "AND"
	}

	if _, err := a.scalarOperand(e.Left, want, what); err != nil {
		return Type{}, err
	}
	if _, err := a.scalarOperand(e.Right, want, what); err != nil {
		return Type{}, err
	}
	return Scalar(want), nil
}

func (a *Analyzer) majority(e *ast.Majority) (Type, error) {
	t, err := a.expr(e.Operand)
	if err != nil {
		return Type{}, err
	}

	want := Int
	if e.Op.IsTruth() {
		want = Bool
	}
	if t = a.settle(e.Operand, t, want); t.Base != want {
		return Type{}, errorAt(e.Pos(), "%s requires %s operand, got %s", e.Op, want, t)
	}
	return BoolType, nil
}

func (a *Analyzer) elementwise(e *ast.Elementwise) (Type, error) {
	left, err := a.intOperand(e.Left, e)
	if err != nil {
		return Type{}, err
	}
	if e.Right == nil {
		return left.Flat(Bool), nil
	}

	right, err := a.intOperand(e.Right, e)
	if err != nil {
		return Type{}, err
	}

	// Length mismatches are reported by the run-time shape check
	n, m := left.Elements(), right.Elements()
	switch {
	case n == AnyDim || m == AnyDim:
		return ArrayOf(Bool, AnyDim), nil
	case n == 1:
		return ArrayOf(Bool, m), nil
	case m == 1 || n == m:
		return ArrayOf(Bool, n), nil
	default:
		return ArrayOf(Bool, AnyDim), nil
	}
}

func (a *Analyzer) intOperand(operand ast.Expr, e *ast.Elementwise) (Type, error) {
	t, err := a.expr(operand)
	if err != nil {
		return Type{}, err
	}
	if t = a.settle(operand, t, Int); t.Base != Int {
		return Type{}, errorAt(e.Pos(), "EL%s requires int operands, got %s", e.Op, t)
	}
	return t, nil
}

// scalarOperand checks that operand is a scalar of base want
func (a *Analyzer) scalarOperand(operand ast.Expr, want Base, what string) (Type, error) {
	t, err := a.expr(operand)
	if err != nil {
		return Type{}, err
	}
	t = a.settle(operand, t, want)
	if t.Base != want || t.IsArray() {
		return Type{}, errorAt(operand.Pos(), "%s expects scalar %s, got %s", what, want, t)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// literalInt returns the value of an integer literal, optionally negated
func literalInt(e ast.Expr) (int, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		return e.Value, true
	case *ast.Neg:
		if lit, ok := e.Operand.(*ast.IntLit); ok {
			return -lit.Value, true
		}
	}
	return 0, false
}

func errorAt(pos ast.Position, format string, args ...interface{}) *SemanticError {
	return &SemanticError{
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}
