// File: types.go
// Title: RCL Static Types
// Description: Static types used by the semantic analyzer. A type is a base
//              (int, bool or not yet known) plus a dimension list; an empty
//              dimension list denotes a scalar.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package semantic

import (
	"strconv"
	"strings"
)

// Base is the element type of a value
type Base int

const (
	// Unknown is the type of a task parameter before its first use
	Unknown Base = iota
	Int
	Bool
)

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// AnyDim marks a dimension whose size is only known at run time
const AnyDim = -1

// AnyRank is the single dimension of an array whose rank is only known at
// run time
const AnyRank = -2

// Type is a static RCL type
type Type struct {
	Base Base
	Dims []int
}

var (
	UnknownType = Type{Base: Unknown}
	IntType     = Type{Base: Int}
	BoolType    = Type{Base: Bool}

	// EnvironmentType is the type of GET ENVIRONMENT
	EnvironmentType = ArrayOf(Bool, 3, 3, 2)
)

// Scalar returns the scalar type with base b
func Scalar(b Base) Type {
	return Type{Base: b}
}

// ArrayOf returns an array type with base b and the given dimensions
func ArrayOf(b Base, dims ...int) Type {
	return Type{Base: b, Dims: append([]int(nil), dims...)}
}

// IsArray reports whether t has at least one dimension
func (t Type) IsArray() bool { return len(t.Dims) > 0 }

// RankKnown reports whether t is an array with a statically known rank
func (t Type) RankKnown() bool {
	return t.IsArray() && !(len(t.Dims) == 1 && t.Dims[0] == AnyRank)
}

// IsUnknown reports whether the base of t has not been resolved yet
func (t Type) IsUnknown() bool { return t.Base == Unknown }

// Compatible reports whether a value of type o may be stored in a slot of
// type t: bases and array-ness must agree, unknown matches anything.
func (t Type) Compatible(o Type) bool {
	if t.IsUnknown() || o.IsUnknown() {
		return true
	}
	return t.Base == o.Base && t.IsArray() == o.IsArray()
}

// Elements returns the flattened element count, or AnyDim when a
// dimension is not known statically.
func (t Type) Elements() int {
	n := 1
	for _, d := range t.Dims {
		if d < 0 {
			return AnyDim
		}
		n *= d
	}
	return n
}

// Join returns the type covering both t and o, used when a statement may or
// may not have changed the shape of a variable. Bases must agree.
func (t Type) Join(o Type) Type {
	if !t.IsArray() || !o.IsArray() {
		return o
	}
	if !t.RankKnown() || !o.RankKnown() || len(t.Dims) != len(o.Dims) {
		return ArrayOf(o.Base, AnyRank)
	}
	dims := make([]int, len(t.Dims))
	for i := range dims {
		dims[i] = t.Dims[i]
		if o.Dims[i] != t.Dims[i] {
			dims[i] = AnyDim
		}
	}
	return ArrayOf(o.Base, dims...)
}

// Flat returns the one-dimensional array type holding the elements of t
func (t Type) Flat(b Base) Type {
	return ArrayOf(b, t.Elements())
}

func (t Type) String() string {
	if !t.IsArray() {
		return t.Base.String()
	}
	dims := make([]string, len(t.Dims))
	for i, d := range t.Dims {
		switch d {
		case AnyDim:
			dims[i] = "?"
		case AnyRank:
			dims[i] = "*"
		default:
			dims[i] = strconv.Itoa(d)
		}
	}
	return t.Base.String() + "[" + strings.Join(dims, ",") + "]"
}
