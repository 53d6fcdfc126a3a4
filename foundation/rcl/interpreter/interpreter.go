// File: interpreter.go
// Title: RCL Tree-Walking Interpreter
// Description: Executes a checked RCL program against a runtime
//              environment and a robot. Task calls use dynamic scoping:
//              the caller's environment is snapshotted, parameters are bound
//              on top, and the snapshot is restored when the call returns.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"context"
	"errors"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl/ast"
)

// Robot is the actuator and sensor interface the interpreter drives
type Robot interface {
	// Move advances one cell in the facing direction and reports success.
	// A blocked move must leave the robot unchanged.
	Move() bool
	RotateLeft()
	RotateRight()
	// Environment returns the 3x3x2 sensor grid around the robot
	Environment() [3][3][2]bool
}

// Action identifies a robot action reported to the step hook
type Action int

const (
	ActionMove Action = iota
	ActionRotateLeft
	ActionRotateRight
	ActionSense
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionRotateLeft:
		return "rotate_left"
	case ActionRotateRight:
		return "rotate_right"
	case ActionSense:
		return "sense"
	default:
		return "unknown"
	}
}

// StepHook is invoked after every successful robot action
type StepHook func(action Action)

// Options configures an interpreter
type Options struct {
	Logger *mdwlog.Logger

	// EntryTask is called without arguments after the top-level statements
	// when a task of that name has been declared.
	EntryTask string

	// MaxIterations bounds the total number of FOR iterations; 0 disables the limit.
	MaxIterations int

	// MaxCallDepth bounds nested DO calls; 0 selects DefaultMaxCallDepth.
	MaxCallDepth int

	StepHook StepHook
}

// DefaultMaxCallDepth is used when Options.MaxCallDepth is zero
const DefaultMaxCallDepth = 10000

// MaxElements bounds the element count of a declared or resized array
const MaxElements = 1 << 24

// Interpreter executes RCL programs. An Interpreter serves a single run.
type Interpreter struct {
	env        *Environment
	funcs      *FunctionTable
	robot      Robot
	callStack  []string
	iterations int
	actions    int
	ctx        context.Context
	opts       Options
	logger     *mdwlog.Logger
}

// New creates an interpreter driving robot
func New(robot Robot, opts Options) *Interpreter {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}

	return &Interpreter{
		env:    NewEnvironment(),
		funcs:  NewFunctionTable(),
		robot:  robot,
		ctx:    context.Background(),
		opts:   opts,
		logger: opts.Logger.WithField("component", "rcl-interpreter"),
	}
}

// Env returns the global environment
func (in *Interpreter) Env() *Environment { return in.env }

// Functions returns the task table
func (in *Interpreter) Functions() *FunctionTable { return in.funcs }

// Actions returns the number of robot actions performed so far
func (in *Interpreter) Actions() int { return in.actions }

// Run executes prog. The first fault stops the run and is returned as
// *RuntimeError; robot actions already performed are not undone.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program) error {
	in.ctx = ctx

	in.logger.Debug("Starting RCL run", mdwlog.Fields{
		"statements": len(prog.Statements),
		"entry_task": in.opts.EntryTask,
	})

	for _, stmt := range prog.Statements {
		if err := in.exec(stmt); err != nil {
			return in.finish(err)
		}
	}

	if in.opts.EntryTask != "" {
		if fn, ok := in.funcs.Lookup(in.opts.EntryTask); ok {
			call := &ast.Call{Position: fn.Decl.Position, Name: fn.Decl.Name}
			if err := in.exec(call); err != nil {
				return in.finish(err)
			}
		}
	}

	return in.finish(nil)
}

func (in *Interpreter) finish(err error) error {
	fields := mdwlog.Fields{"actions": in.actions, "iterations": in.iterations}
	if err != nil {
		fields["error"] = err.Error()
		in.logger.Debug("RCL run aborted", fields)
		return err
	}
	in.logger.Debug("RCL run completed", fields)
	return nil
}

func (in *Interpreter) checkContext() error {
	if err := in.ctx.Err(); err != nil {
		kind := "cancelled"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timed out"
		}
		return newError(ErrCancelled, "run %s", kind)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (in *Interpreter) exec(s ast.Stmt) error {
	if err := in.checkContext(); err != nil {
		return at(s.Pos(), err)
	}

	var err error
	switch s := s.(type) {
	case *ast.VarDecl:
		err = in.varDecl(s)
	case *ast.Assign:
		err = in.assign(s)
	case *ast.ForLoop:
		err = in.forLoop(s)
	case *ast.Switch:
		err = in.switchStmt(s)
	case *ast.TaskDecl:
		in.funcs.Declare(s)
	case *ast.Call:
		err = in.call(s)
	case *ast.Result:
		err = in.result(s)
	case *ast.Move:
		err = in.move()
	case *ast.Rotate:
		in.rotate(s.Dir)
	case *ast.Resize:
		err = in.resize(s)
	case *ast.Block:
		err = in.block(s)
	case *ast.ExprStmt:
		_, err = in.eval(s.X)
	default:
		err = newError(ErrGeneric, "unsupported statement %T", s)
	}

	if err != nil {
		return at(s.Pos(), err)
	}
	return nil
}

func (in *Interpreter) block(b *ast.Block) error {
	for _, s := range b.Statements {
		if err := in.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) varDecl(s *ast.VarDecl) error {
	value, err := in.eval(s.Value)
	if err != nil {
		return err
	}

	if len(s.Dims) > 0 {
		dims, err := in.dims(s.Dims)
		if err != nil {
			return err
		}
		if value.IsUndefined() {
			return newError(ErrUndefined, "array %q initialized from undefined value", s.Name)
		}

		declared, actual := trimShape(dims), trimShape(value.shape)
		if !equalShape(declared, actual) {
			return newError(ErrShape, "array %q declared with shape %s but initialized with shape %s",
				s.Name, shapeString(dims), shapeString(value.shape))
		}
		value = value.Reshape(dims)
	}

	in.env.Set(s.Name, value)
	return nil
}

// dims evaluates a dimension list to positive sizes
func (in *Interpreter) dims(exprs []ast.Expr) ([]int, error) {
	dims := make([]int, len(exprs))
	size := 1
	for i, e := range exprs {
		n, err := in.scalarInt(e, "array dimension")
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, at(e.Pos(), newError(ErrShape, "array dimension must be positive, got %d", n))
		}
		dims[i] = n
		if n > MaxElements/size {
			return nil, at(e.Pos(), newError(ErrShape, "array of %s exceeds %d elements", shapeString(dims[:i+1]), MaxElements))
		}
		size *= n
	}
	return dims, nil
}

func (in *Interpreter) assign(s *ast.Assign) error {
	if !in.env.Has(s.Name) {
		return newError(ErrUndeclared, "assignment to undeclared variable %q", s.Name)
	}
	value, err := in.eval(s.Value)
	if err != nil {
		return err
	}
	in.env.Set(s.Name, value)
	return nil
}

func (in *Interpreter) forLoop(s *ast.ForLoop) error {
	boundary, err := in.scalarInt(s.Boundary, "loop boundary")
	if err != nil {
		return err
	}
	step, err := in.scalarInt(s.Step, "loop step")
	if err != nil {
		return err
	}
	if step == 0 {
		return at(s.Step.Pos(), newError(ErrZeroStep, "loop step must not be zero"))
	}

	in.env.Set(s.Counter, Int(1))
	for {
		counter, err := in.counter(s.Counter)
		if err != nil {
			return err
		}
		if counter >= boundary {
			return nil
		}

		if in.opts.MaxIterations > 0 && in.iterations >= in.opts.MaxIterations {
			return newError(ErrIterationLimit, "iteration limit of %d exceeded", in.opts.MaxIterations)
		}
		in.iterations++

		if err := in.block(s.Body); err != nil {
			return err
		}

		// the body may have reassigned the counter
		if counter, err = in.counter(s.Counter); err != nil {
			return err
		}
		in.env.Set(s.Counter, Int(counter+step))
	}
}

func (in *Interpreter) counter(name string) (int, error) {
	v, ok := in.env.Get(name)
	if !ok {
		return 0, newError(ErrUndeclared, "loop counter %q is not bound", name)
	}
	sc, ok := v.Scalar()
	if !ok {
		return 0, newError(ErrShape, "loop counter %q is not a scalar", name)
	}
	return sc.AsInt(), nil
}

func (in *Interpreter) switchStmt(s *ast.Switch) error {
	cond, err := in.eval(s.Cond)
	if err != nil {
		return err
	}
	if cond.IsUndefined() {
		return at(s.Cond.Pos(), newError(ErrUndefined, "SWITCH on undefined value"))
	}
	sc, ok := cond.Scalar()
	if !ok {
		return at(s.Cond.Pos(), newError(ErrShape, "SWITCH condition has %d elements, expected one", cond.Len()))
	}

	switch {
	case sc.Truthy() == s.Then.Literal:
		return in.block(s.Then.Body)
	case s.Else != nil:
		return in.block(s.Else.Body)
	default:
		return nil
	}
}

func (in *Interpreter) call(s *ast.Call) error {
	fn, ok := in.funcs.Lookup(s.Name)
	if !ok {
		return newError(ErrUndeclared, "call of undeclared task %q", s.Name)
	}
	params := fn.Decl.Params
	if len(s.Args) != len(params) {
		return newError(ErrArity, "task %q expects %d arguments, got %d", s.Name, len(params), len(s.Args))
	}
	if len(in.callStack) >= in.opts.MaxCallDepth {
		return newError(ErrCallDepth, "call depth of %d exceeded", in.opts.MaxCallDepth)
	}

	args := make([]Value, len(s.Args))
	for i, a := range s.Args {
		v, err := in.eval(a)
		if err != nil {
			return err
		}
		args[i] = v
	}

	saved := in.env.Snapshot()
	for i, p := range params {
		in.env.Set(p, args[i])
	}

	in.callStack = append(in.callStack, s.Name)
	in.logger.Trace("Entering task", mdwlog.Fields{"task": s.Name, "depth": len(in.callStack)})

	if err := in.block(fn.Decl.Body); err != nil {
		return err
	}

	in.callStack = in.callStack[:len(in.callStack)-1]
	in.env.Restore(saved)
	return nil
}

func (in *Interpreter) result(s *ast.Result) error {
	if len(in.callStack) == 0 {
		return newError(ErrResultOutsideCall, "RESULT outside of a task call")
	}
	v, err := in.eval(s.Value)
	if err != nil {
		return err
	}
	in.funcs.Publish(in.callStack[len(in.callStack)-1], v)
	return nil
}

func (in *Interpreter) move() error {
	if !in.robot.Move() {
		return newError(ErrWallCollision, "MOVE blocked by a wall")
	}
	in.step(ActionMove)
	return nil
}

func (in *Interpreter) rotate(dir ast.Direction) {
	if dir == ast.DirLeft {
		in.robot.RotateLeft()
		in.step(ActionRotateLeft)
		return
	}
	in.robot.RotateRight()
	in.step(ActionRotateRight)
}

func (in *Interpreter) step(a Action) {
	in.actions++
	in.logger.Trace("Robot action", mdwlog.Fields{"action": a.String(), "count": in.actions})
	if in.opts.StepHook != nil {
		in.opts.StepHook(a)
	}
}

func (in *Interpreter) resize(s *ast.Resize) error {
	v, ok := in.env.Get(s.Name)
	if !ok {
		return newError(ErrUndeclared, "%s of undeclared variable %q", s.Op, s.Name)
	}
	if len(s.Dims) == 0 {
		return newError(ErrResize, "%s %s needs a target size", s.Op, s.Name)
	}

	dims, err := in.dims(s.Dims)
	if err != nil {
		return err
	}
	resized, err := resize(s.Op, v, dims)
	if err != nil {
		return err
	}
	in.env.Set(s.Name, resized)
	return nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (in *Interpreter) eval(e ast.Expr) (Value, error) {
	v, err := in.evalExpr(e)
	if err != nil {
		return Value{}, at(e.Pos(), err)
	}
	return v, nil
}

func (in *Interpreter) evalExpr(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Int(e.Value), nil

	case *ast.BoolLit:
		return Bool(e.Value), nil

	case *ast.Ident:
		return in.variable(e.Name)

	case *ast.ArrayLit:
		items := make([]Value, len(e.Elements))
		for i, elem := range e.Elements {
			v, err := in.eval(elem)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return buildArray(items)

	case *ast.Index:
		arr, err := in.variable(e.Name)
		if err != nil {
			return Value{}, err
		}
		indices := make([]int, len(e.Indices))
		for i, idx := range e.Indices {
			if indices[i], err = in.scalarInt(idx, "array index"); err != nil {
				return Value{}, err
			}
		}
		return arr.Index(indices)

	case *ast.Size:
		v, err := in.variable(e.Name)
		if err != nil {
			return Value{}, err
		}
		return Int(v.Len()), nil

	case *ast.Cast:
		v, err := in.variable(e.Name)
		if err != nil {
			return Value{}, err
		}
		return cast(e.Op, v)

	case *ast.Binary:
		l, err := in.eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return Value{}, err
		}
		return binaryOp(e.Op, l, r)

	case *ast.Not:
		v, err := in.eval(e.Operand)
		if err != nil {
			return Value{}, err
		}
		return notOp(v)

	case *ast.Neg:
		v, err := in.eval(e.Operand)
		if err != nil {
			return Value{}, err
		}
		return negOp(v)

	case *ast.Majority:
		v, err := in.eval(e.Operand)
		if err != nil {
			return Value{}, err
		}
		ok, err := majority(e.Op, v)
		if err != nil {
			return Value{}, err
		}
		return Bool(ok), nil

	case *ast.Elementwise:
		l, err := in.eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		if e.Right == nil {
			return elementwise(e.Op, l, nil)
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return Value{}, err
		}
		return elementwise(e.Op, l, &r)

	case *ast.GetEnv:
		return in.sense(), nil

	case *ast.GetResult:
		fn, ok := in.funcs.Lookup(e.Name)
		if !ok {
			return Value{}, newError(ErrUndeclared, "GET of undeclared task %q", e.Name)
		}
		if !fn.Published {
			return Undefined(), nil
		}
		return fn.Result, nil

	default:
		return Value{}, newError(ErrGeneric, "unsupported expression %T", e)
	}
}

func (in *Interpreter) variable(name string) (Value, error) {
	v, ok := in.env.Get(name)
	if !ok {
		return Value{}, newError(ErrUndeclared, "undeclared variable %q", name)
	}
	return v, nil
}

// scalarInt evaluates e and collapses it to a single int
func (in *Interpreter) scalarInt(e ast.Expr, what string) (int, error) {
	v, err := in.eval(e)
	if err != nil {
		return 0, err
	}
	if v.IsUndefined() {
		return 0, at(e.Pos(), newError(ErrUndefined, "%s is undefined", what))
	}
	sc, ok := v.Scalar()
	if !ok {
		return 0, at(e.Pos(), newError(ErrShape, "%s must be a scalar, got %d elements", what, v.Len()))
	}
	return sc.AsInt(), nil
}

// sense reads the robot sensors into a bool[3,3,2] array
func (in *Interpreter) sense() Value {
	grid := in.robot.Environment()
	elems := make([]Value, 0, 18)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for l := 0; l < 2; l++ {
				elems = append(elems, Bool(grid[r][c][l]))
			}
		}
	}
	in.step(ActionSense)
	return Array([]int{3, 3, 2}, elems)
}
