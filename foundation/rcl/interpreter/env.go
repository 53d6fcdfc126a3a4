// File: env.go
// Title: RCL Runtime Environment
// Description: Variable bindings and the task table of a single run.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"sort"

	"github.com/msto63/cellbot/foundation/rcl/ast"
)

// Environment maps variable names to values
type Environment struct {
	vars map[string]Value
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// Get returns the value bound to name
func (e *Environment) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set binds name to v, replacing any previous value
func (e *Environment) Set(name string, v Value) {
	e.vars[name] = v
}

// Has reports whether name is bound
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names returns the bound names in sorted order
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the current bindings. Values are immutable, so a
// shallow copy is enough.
func (e *Environment) Snapshot() map[string]Value {
	snap := make(map[string]Value, len(e.vars))
	for k, v := range e.vars {
		snap[k] = v
	}
	return snap
}

// Restore replaces all bindings with snap
func (e *Environment) Restore(snap map[string]Value) {
	e.vars = snap
}

// Function is a declared task and its last published result
type Function struct {
	Decl      *ast.TaskDecl
	Result    Value
	Published bool
}

// FunctionTable holds the tasks declared so far
type FunctionTable struct {
	funcs map[string]*Function
}

// NewFunctionTable creates an empty table
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{funcs: make(map[string]*Function)}
}

// Declare registers decl. Executing a declaration again keeps the
// published result.
func (t *FunctionTable) Declare(decl *ast.TaskDecl) {
	if fn, ok := t.funcs[decl.Name]; ok {
		fn.Decl = decl
		return
	}
	t.funcs[decl.Name] = &Function{Decl: decl}
}

// Lookup returns the task called name
func (t *FunctionTable) Lookup(name string) (*Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Publish stores v as the latest result of name
func (t *FunctionTable) Publish(name string, v Value) {
	if fn, ok := t.funcs[name]; ok {
		fn.Result = v
		fn.Published = true
	}
}

// Results returns every published result keyed by task name
func (t *FunctionTable) Results() map[string]Value {
	out := make(map[string]Value)
	for name, fn := range t.funcs {
		if fn.Published {
			out[name] = fn.Result
		}
	}
	return out
}
