// File: value.go
// Title: RCL Runtime Values
// Description: Runtime representation of RCL values. Arrays are stored as a
//              shape plus a row-major list of scalar elements, which keeps
//              every array rectangular by construction.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindUndefined Kind = iota
	KindInt
	KindBool
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "undefined"
	}
}

// Value is an RCL runtime value. The zero Value is undefined.
type Value struct {
	kind  Kind
	i     int
	b     bool
	shape []int
	elems []Value
}

// Undefined returns the value GET yields before a task has published a result
func Undefined() Value { return Value{} }

// Int returns a scalar int
func Int(n int) Value { return Value{kind: KindInt, i: n} }

// Bool returns a scalar bool
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array returns an array with the given shape and row-major scalar elements.
// The caller guarantees that len(elems) equals the product of shape.
func Array(shape []int, elems []Value) Value {
	return Value{
		kind:  KindArray,
		shape: append([]int(nil), shape...),
		elems: elems,
	}
}

// Ints builds a one-dimensional int array
func Ints(ns ...int) Value {
	elems := make([]Value, len(ns))
	for i, n := range ns {
		elems[i] = Int(n)
	}
	return Array([]int{len(ns)}, elems)
}

// Bools builds a one-dimensional bool array
func Bools(bs ...bool) Value {
	elems := make([]Value, len(bs))
	for i, b := range bs {
		elems[i] = Bool(b)
	}
	return Array([]int{len(bs)}, elems)
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsArray() bool     { return v.kind == KindArray }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Shape returns the dimensions of an array, nil for scalars
func (v Value) Shape() []int {
	return append([]int(nil), v.shape...)
}

// Len returns the flattened element count
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindUndefined:
		return 0
	default:
		return 1
	}
}

// Flatten returns the scalar elements in row-major order
func (v Value) Flatten() []Value {
	switch v.kind {
	case KindArray:
		return append([]Value(nil), v.elems...)
	case KindUndefined:
		return nil
	default:
		return []Value{v}
	}
}

// AsInt returns the integer value; bools count as 0 and 1
func (v Value) AsInt() int {
	if v.kind == KindBool {
		if v.b {
			return 1
		}
		return 0
	}
	return v.i
}

// Truthy reports whether a scalar is TRUE or a non-zero int
func (v Value) Truthy() bool {
	if v.kind == KindBool {
		return v.b
	}
	return v.kind == KindInt && v.i != 0
}

// Scalar collapses a one-element array to its element
func (v Value) Scalar() (Value, bool) {
	switch {
	case v.kind == KindArray && len(v.elems) == 1:
		return v.elems[0], true
	case v.kind == KindInt || v.kind == KindBool:
		return v, true
	default:
		return Value{}, false
	}
}

// Reshape returns the elements of v arranged in shape
func (v Value) Reshape(shape []int) Value {
	return Array(shape, v.Flatten())
}

// Equal reports deep equality of kind, shape and elements
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	case KindArray:
		if !equalShape(v.shape, o.shape) || len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Index performs 1-based multi-index descent. Fewer indices than dimensions
// select a sub-array.
func (v Value) Index(indices []int) (Value, error) {
	if v.kind != KindArray {
		return Value{}, newError(ErrIndex, "cannot index a scalar value")
	}
	if len(indices) > len(v.shape) {
		return Value{}, newError(ErrIndex, "%d indices for array of shape %s", len(indices), shapeString(v.shape))
	}

	offset := 0
	for d, idx := range indices {
		if idx < 1 || idx > v.shape[d] {
			return Value{}, newError(ErrIndex, "index %d out of range 1..%d", idx, v.shape[d])
		}
		offset = offset*v.shape[d] + (idx - 1)
	}

	rest := v.shape[len(indices):]
	if len(rest) == 0 {
		return v.elems[offset], nil
	}

	size := product(rest)
	start := offset * size
	return Array(rest, append([]Value(nil), v.elems[start:start+size]...)), nil
}

// Native converts v to plain Go values: int, bool, nested []interface{} or nil
func (v Value) Native() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindBool:
		return v.b
	case KindArray:
		return nest(v.shape, v.elems)
	default:
		return nil
	}
}

func nest(shape []int, elems []Value) []interface{} {
	out := make([]interface{}, shape[0])
	if len(shape) == 1 {
		for i := range out {
			out[i] = elems[i].Native()
		}
		return out
	}
	size := product(shape[1:])
	for i := range out {
		out[i] = nest(shape[1:], elems[i*size:(i+1)*size])
	}
	return out
}

// String renders v as RCL source would write it
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindArray:
		var sb strings.Builder
		writeNested(&sb, v.shape, v.elems)
		return sb.String()
	default:
		return "UNDEFINED"
	}
}

func writeNested(sb *strings.Builder, shape []int, elems []Value) {
	sb.WriteByte('[')
	if len(shape) == 1 {
		for i, e := range elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
	} else {
		size := product(shape[1:])
		for i := 0; i < shape[0]; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNested(sb, shape[1:], elems[i*size:(i+1)*size])
		}
	}
	sb.WriteByte(']')
}

// buildArray assembles an array literal from evaluated elements. Scalars
// produce a vector; arrays must all share one shape.
func buildArray(items []Value) (Value, error) {
	if len(items) == 0 {
		return Array([]int{0}, nil), nil
	}

	var inner []int
	for i, item := range items {
		if item.IsUndefined() {
			return Value{}, newError(ErrUndefined, "undefined value in array literal")
		}
		if i == 0 {
			inner = item.shape
			continue
		}
		if !equalShape(inner, item.shape) {
			return Value{}, newError(ErrShape, "ragged array: element %d has shape %s, expected %s",
				i+1, shapeString(item.shape), shapeString(inner))
		}
	}

	elems := make([]Value, 0, len(items)*product(inner))
	for _, item := range items {
		elems = append(elems, item.Flatten()...)
	}
	return Array(append([]int{len(items)}, inner...), elems), nil
}

// trimShape drops trailing dimensions of size 1
func trimShape(shape []int) []int {
	end := len(shape)
	for end > 0 && shape[end-1] == 1 {
		end--
	}
	return shape[:end]
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
