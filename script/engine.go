// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package script implements a small embedded scripting language for
// building geometry. Scripts declare variables with let, use arrays
// and #{...} object maps, loop with for, while and loop, define
// top-level functions with fn, and call host functions registered
// on an [Engine]. Every run is bounded by an operation limit and a
// maximum expression depth, so that no script can hang its host.
package script

import (
	"errors"
	"fmt"
	"maps"
)

// EvalError is an error raised while running a script.
type EvalError struct {
	// Line is the 1-based source line, or 0 if unknown.
	Line int
	Msg  string

	// Err is the underlying error, if any.
	Err error
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
	}
	return e.Msg
}

func (e *EvalError) Unwrap() error { return e.Err }

// ErrTooManyOperations is wrapped by the [EvalError] returned when
// a script exceeds [Engine.MaxOperations].
var ErrTooManyOperations = errors.New("too many operations")

// Call describes a host function call site.
type Call struct {
	Engine *Engine
	Name   string
	Line   int
}

// Errorf returns an [EvalError] at the call site.
func (c *Call) Errorf(format string, args ...any) error {
	return &EvalError{Line: c.Line, Msg: fmt.Sprintf(format, args...)}
}

// Func is a host function callable from scripts.
type Func func(c *Call, args []Value) (Value, error)

// BinaryFunc implements a binary operator for host types. It
// returns false if it does not handle the given operands.
type BinaryFunc func(op string, a, b Value) (Value, bool, error)

// UnaryFunc implements a unary operator for host types. It
// returns false if it does not handle the given operand.
type UnaryFunc func(op string, a Value) (Value, bool, error)

// Engine holds host functions, operator overloads and resource limits.
// An Engine is not safe for concurrent registration, but once set up
// it may run scripts from multiple goroutines.
type Engine struct {

	// MaxOperations bounds the number of evaluation steps in a single
	// run; 0 means unlimited.
	MaxOperations int

	// MaxExprDepth bounds the nesting depth of expressions and blocks
	// when compiling; 0 means unlimited.
	MaxExprDepth int

	// MaxCallDepth bounds script function recursion; 0 means unlimited.
	MaxCallDepth int

	funcs  map[string]Func
	binary []BinaryFunc
	unary  []UnaryFunc
}

// NewEngine returns a new [Engine] with the standard library
// registered and default limits.
func NewEngine() *Engine {
	e := &Engine{
		MaxOperations: 50000,
		MaxExprDepth:  64,
		MaxCallDepth:  32,
		funcs:         map[string]Func{},
	}
	registerStdlib(e)
	return e
}

// Clone returns a copy of the engine with its own function table,
// so that registrations on the copy do not affect the original.
func (e *Engine) Clone() *Engine {
	c := *e
	c.funcs = maps.Clone(e.funcs)
	return &c
}

// Register registers a host function, replacing any existing
// function with the same name.
func (e *Engine) Register(name string, f Func) {
	e.funcs[name] = f
}

// Func returns the host function with the given name, or nil.
func (e *Engine) Func(name string) Func {
	return e.funcs[name]
}

// RegisterBinary adds a binary operator overload for host types.
// Overloads are tried in registration order.
func (e *Engine) RegisterBinary(f BinaryFunc) {
	e.binary = append(e.binary, f)
}

// RegisterUnary adds a unary operator overload for host types.
func (e *Engine) RegisterUnary(f UnaryFunc) {
	e.unary = append(e.unary, f)
}

// Compile parses the given source.
func (e *Engine) Compile(src string) (*AST, error) {
	return Parse(src, e.MaxExprDepth)
}

// Run runs a compiled script with the given scope. Top-level
// variables declared by the script are pushed onto the scope.
func (e *Engine) Run(scope *Scope, ast *AST) error {
	_, err := e.run(scope, ast)
	return err
}

// Eval compiles and runs the given source as an expression or
// statement list, returning the value of its final expression.
func (e *Engine) Eval(scope *Scope, src string) (Value, error) {
	ast, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return e.run(scope, ast)
}

func (e *Engine) run(scope *Scope, ast *AST) (Value, error) {
	in := &interp{eng: e, ast: ast, global: scope}
	v, err := in.execTop(scope, ast.Stmts)
	if err != nil {
		return nil, in.wrap(err)
	}
	return v, nil
}
