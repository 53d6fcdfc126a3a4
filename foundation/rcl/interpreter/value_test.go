// File: value_test.go
// Title: RCL Value and Array Operation Tests
// Description: Tests for value rendering, indexing, broadcasting and
//              majority thresholds.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package interpreter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/msto63/cellbot/foundation/rcl/ast"
)

func intsOfLen(n int) Value {
	ns := make([]int, n)
	for i := range ns {
		ns[i] = i + 1
	}
	return Ints(ns...)
}

func TestBinaryOp_BroadcastRule(t *testing.T) {
	for m := 0; m <= 4; m++ {
		for n := 0; n <= 4; n++ {
			_, err := binaryOp(ast.OpAdd, intsOfLen(m), intsOfLen(n))
			shouldSucceed := m == n || m == 1 || n == 1
			if shouldSucceed && err != nil {
				t.Errorf("m=%d n=%d: unexpected error %v", m, n, err)
			}
			if !shouldSucceed {
				var rtErr *RuntimeError
				if !errors.As(err, &rtErr) || rtErr.Kind != ErrShape {
					t.Errorf("m=%d n=%d: expected shape error, got %v", m, n, err)
				}
			}
		}
	}
}

func TestMajority_Threshold(t *testing.T) {
	tests := []struct {
		name     string
		op       ast.MajorityOp
		value    Value
		expected bool
	}{
		{"Tie is false", ast.MajTrue, Bools(true, true, false, false), false},
		{"Strict majority", ast.MajTrue, Bools(true, true, false), true},
		{"MXFALSE tie is false", ast.MajFalse, Bools(true, true, false, false), false},
		{"MXFALSE majority", ast.MajFalse, Bools(false, false, true), true},
		{"Empty array", ast.MajTrue, Bools(), false},
		{"Scalar true", ast.MajTrue, Bool(true), true},
		{"MXEQ", ast.MajEQ, Ints(0, 0, 5), true},
		{"MXLT", ast.MajLT, Ints(-1, 2, 3), false},
		{"MXLTE", ast.MajLTE, Ints(-1, 0, 3), true},
		{"MXGTE", ast.MajGTE, Ints(-1, 0, -3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := majority(tt.op, tt.value)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMajority_CountProperty(t *testing.T) {
	for k := 0; k <= 8; k++ {
		for trues := 0; trues <= k; trues++ {
			bs := make([]bool, k)
			for i := 0; i < trues; i++ {
				bs[i] = true
			}
			got, err := majority(ast.MajTrue, Bools(bs...))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if want := trues > k/2; got != want {
				t.Errorf("k=%d t=%d: expected %v, got %v", k, trues, want, got)
			}
		}
	}
}

func TestValue_Index(t *testing.T) {
	m := Array([]int{2, 3}, Ints(1, 2, 3, 4, 5, 6).Flatten())

	tests := []struct {
		indices  []int
		expected string
	}{
		{[]int{1, 1}, "1"},
		{[]int{2, 3}, "6"},
		{[]int{1}, "[1, 2, 3]"},
		{[]int{2}, "[4, 5, 6]"},
	}
	for _, tt := range tests {
		got, err := m.Index(tt.indices)
		if err != nil {
			t.Errorf("%v: unexpected error %v", tt.indices, err)
			continue
		}
		if got.String() != tt.expected {
			t.Errorf("%v: expected %s, got %s", tt.indices, tt.expected, got)
		}
	}

	for _, bad := range [][]int{{3, 1}, {1, 4}, {0}, {1, 1, 1}} {
		if _, err := m.Index(bad); err == nil {
			t.Errorf("%v: expected error", bad)
		}
	}
}

func TestValue_Native(t *testing.T) {
	m := Array([]int{2, 2}, Bools(true, false, false, true).Flatten())
	expected := []interface{}{
		[]interface{}{true, false},
		[]interface{}{false, true},
	}
	if got := m.Native(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if Undefined().Native() != nil {
		t.Error("Expected nil for undefined value")
	}
	if Int(3).Native() != 3 {
		t.Error("Expected 3 for scalar int")
	}
}

func TestBuildArray(t *testing.T) {
	nested, err := buildArray([]Value{Ints(1, 2), Ints(3, 4), Ints(5, 6)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(nested.Shape(), []int{3, 2}) {
		t.Errorf("Expected shape [3 2], got %v", nested.Shape())
	}

	empty, err := buildArray(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(empty.Shape(), []int{0}) {
		t.Errorf("Expected shape [0], got %v", empty.Shape())
	}

	if _, err := buildArray([]Value{Ints(1, 2), Int(3)}); err == nil {
		t.Error("Expected ragged array error")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, expected int }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{6, 3, 2},
		{-6, 3, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("%d / %d: expected %d, got %d", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestTrimShape(t *testing.T) {
	tests := []struct {
		shape    []int
		expected []int
	}{
		{[]int{3, 1}, []int{3}},
		{[]int{3, 1, 1}, []int{3}},
		{[]int{1}, []int{}},
		{[]int{1, 3}, []int{1, 3}},
		{nil, []int{}},
	}
	for _, tt := range tests {
		if got := trimShape(tt.shape); !equalShape(got, tt.expected) {
			t.Errorf("%v: expected %v, got %v", tt.shape, tt.expected, got)
		}
	}
}
