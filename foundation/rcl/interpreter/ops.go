// File: ops.go
// Title: RCL Array Operations
// Description: Broadcasting arithmetic, majority votes, elementwise
//              comparisons, casts and resizing over flattened values.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import "github.com/msto63/cellbot/foundation/rcl/ast"

// broadcast flattens both operands and stretches a one-element side to the
// length of the other. The returned shape belongs to the longer operand.
func broadcast(l, r Value) ([]Value, []Value, []int, error) {
	if l.IsUndefined() || r.IsUndefined() {
		return nil, nil, nil, newError(ErrUndefined, "operation on undefined value")
	}

	a, b := l.Flatten(), r.Flatten()
	shape := l.shape
	switch {
	case len(a) == len(b):
		if shape == nil {
			shape = r.shape
		}
	case len(a) == 1:
		a = repeat(a[0], len(b))
		shape = r.shape
	case len(b) == 1:
		b = repeat(b[0], len(a))
	default:
		return nil, nil, nil, newError(ErrShape, "cannot broadcast %d elements against %d", len(a), len(b))
	}
	return a, b, shape, nil
}

func repeat(v Value, n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// degrade turns a one-element result into a scalar
func degrade(shape []int, elems []Value) Value {
	if len(elems) == 1 {
		return elems[0]
	}
	if shape == nil {
		shape = []int{len(elems)}
	}
	return Array(shape, elems)
}

// binaryOp applies + - * / or AND with broadcasting
func binaryOp(op ast.BinaryOp, l, r Value) (Value, error) {
	a, b, shape, err := broadcast(l, r)
	if err != nil {
		return Value{}, err
	}

	out := make([]Value, len(a))
	for i := range a {
		x, y := a[i], b[i]
		switch op {
		case ast.OpAdd:
			out[i] = Int(x.AsInt() + y.AsInt())
		case ast.OpSub:
			out[i] = Int(x.AsInt() - y.AsInt())
		case ast.OpMul:
			out[i] = Int(x.AsInt() * y.AsInt())
		case ast.OpDiv:
			if y.AsInt() == 0 {
				return Value{}, newError(ErrDivisionByZero, "division by zero")
			}
			out[i] = Int(floorDiv(x.AsInt(), y.AsInt()))
		case ast.OpAnd:
			out[i] = Bool(x.Truthy() && y.Truthy())
		}
	}
	return degrade(shape, out), nil
}

// floorDiv rounds toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mapElements applies f to every element, keeping the shape
func mapElements(v Value, f func(Value) Value) (Value, error) {
	if v.IsUndefined() {
		return Value{}, newError(ErrUndefined, "operation on undefined value")
	}
	elems := v.Flatten()
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = f(e)
	}
	return degrade(v.shape, out), nil
}

func notOp(v Value) (Value, error) {
	return mapElements(v, func(e Value) Value { return Bool(!e.Truthy()) })
}

func negOp(v Value) (Value, error) {
	return mapElements(v, func(e Value) Value { return Int(-e.AsInt()) })
}

// majority reports whether strictly more than half of the flattened
// elements satisfy op. MXFALSE counts falsy elements on its own, so an
// even split yields FALSE for both MXTRUE and MXFALSE.
func majority(op ast.MajorityOp, v Value) (bool, error) {
	if v.IsUndefined() {
		return false, newError(ErrUndefined, "%s of undefined value", op)
	}

	var pred func(Value) bool
	switch op {
	case ast.MajTrue:
		pred = Value.Truthy
	case ast.MajFalse:
		pred = func(e Value) bool { return !e.Truthy() }
	default:
		cmp, _ := op.Comparison()
		pred = func(e Value) bool { return cmp.Holds(e.AsInt(), 0) }
	}

	elems := v.Flatten()
	count := 0
	for _, e := range elems {
		if pred(e) {
			count++
		}
	}
	return count > len(elems)/2, nil
}

// elementwise compares every element against zero, or pairwise against
// right when it is defined. The result is always a flat bool array.
func elementwise(cmp ast.Comparison, left Value, right *Value) (Value, error) {
	if right == nil {
		if left.IsUndefined() {
			return Value{}, newError(ErrUndefined, "EL%s of undefined value", cmp)
		}
		elems := left.Flatten()
		out := make([]Value, len(elems))
		for i, e := range elems {
			out[i] = Bool(cmp.Holds(e.AsInt(), 0))
		}
		return Array([]int{len(out)}, out), nil
	}

	a, b, _, err := broadcast(left, *right)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(a))
	for i := range a {
		out[i] = Bool(cmp.Holds(a[i].AsInt(), b[i].AsInt()))
	}
	return Array([]int{len(out)}, out), nil
}

// cast converts every flattened element to bool (LOGITIZE) or to 0/1 (DIGITIZE)
func cast(op ast.CastOp, v Value) (Value, error) {
	if v.IsUndefined() {
		return Value{}, newError(ErrUndefined, "%s of undefined value", op)
	}
	elems := v.Flatten()
	out := make([]Value, len(elems))
	for i, e := range elems {
		if op == ast.CastLogitize {
			out[i] = Bool(e.Truthy())
		} else {
			out[i] = Int(Bool(e.Truthy()).AsInt())
		}
	}
	return Array([]int{len(out)}, out), nil
}

// resize truncates (REDUCE) or zero-pads (EXTEND) the flattened value to
// the element count of dims and arranges the result in dims.
func resize(op ast.ResizeOp, v Value, dims []int) (Value, error) {
	if v.IsUndefined() {
		return Value{}, newError(ErrUndefined, "%s of undefined value", op)
	}

	elems := v.Flatten()
	size := product(dims)

	switch op {
	case ast.ResizeReduce:
		if size > len(elems) {
			return Value{}, newError(ErrResize, "cannot REDUCE %d elements to %d", len(elems), size)
		}
		elems = elems[:size]
	case ast.ResizeExtend:
		if size < len(elems) {
			return Value{}, newError(ErrResize, "cannot EXTEND %d elements to %d", len(elems), size)
		}
		zero := Int(0)
		if len(elems) > 0 && elems[0].Kind() == KindBool {
			zero = Bool(false)
		}
		for len(elems) < size {
			elems = append(elems, zero)
		}
	}
	return Array(dims, elems), nil
}
