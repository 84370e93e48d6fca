// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package implicit provides implicit surfaces as math expression trees
// over the X, Y and Z axes, along with hash-consing, compilation to
// flat tapes, and point, interval and gradient evaluation.
//
// A shape is the region where its tree evaluates to a negative value.
package implicit

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Op is an operation in an expression tree.
type Op uint8

const (
	OpX Op = iota
	OpY
	OpZ
	OpConst

	// unary
	OpNeg
	OpAbs
	OpSqrt
	OpSquare
	OpSin
	OpCos
	OpTan
	OpExp
	OpLn
	OpFloor
	OpCeil
	OpRound
	OpRecip
	OpNot

	// binary
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpAtan2
	OpMod
	OpCompare
	OpAnd
	OpOr
)

var opNames = [...]string{
	OpX: "x", OpY: "y", OpZ: "z", OpConst: "const",
	OpNeg: "neg", OpAbs: "abs", OpSqrt: "sqrt", OpSquare: "square",
	OpSin: "sin", OpCos: "cos", OpTan: "tan", OpExp: "exp", OpLn: "ln",
	OpFloor: "floor", OpCeil: "ceil", OpRound: "round", OpRecip: "recip",
	OpNot: "not",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMin: "min",
	OpMax: "max", OpAtan2: "atan2", OpMod: "mod", OpCompare: "compare",
	OpAnd: "and", OpOr: "or",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// IsUnary returns whether the op takes a single argument.
func (o Op) IsUnary() bool { return o >= OpNeg && o <= OpNot }

// IsBinary returns whether the op takes two arguments.
func (o Op) IsBinary() bool { return o >= OpAdd }

// Node is an immutable node in an expression tree. Trees are
// represented by a pointer to their root node, and may share
// subtrees, forming a directed acyclic graph.
type Node struct {
	op    Op
	value float32
	a, b  *Node
}

var (
	nodeX = &Node{op: OpX}
	nodeY = &Node{op: OpY}
	nodeZ = &Node{op: OpZ}
)

// X returns the tree for the X axis.
func X() *Node { return nodeX }

// Y returns the tree for the Y axis.
func Y() *Node { return nodeY }

// Z returns the tree for the Z axis.
func Z() *Node { return nodeZ }

// Const returns a constant tree.
func Const(v float32) *Node {
	return &Node{op: OpConst, value: v}
}

// Op returns the operation of the node.
func (n *Node) Op() Op { return n.op }

// Args returns the arguments of the node, which are nil
// for leaves and b is nil for unary ops.
func (n *Node) Args() (a, b *Node) { return n.a, n.b }

// Constant returns the value of the node and true if it is a constant.
func (n *Node) Constant() (float32, bool) {
	if n.op == OpConst {
		return n.value, true
	}
	return 0, false
}

func unary(op Op, a *Node) *Node {
	if v, ok := a.Constant(); ok {
		return Const(applyUnary(op, v))
	}
	return &Node{op: op, a: a}
}

func binary(op Op, a, b *Node) *Node {
	if va, ok := a.Constant(); ok {
		if vb, ok := b.Constant(); ok {
			return Const(applyBinary(op, va, vb))
		}
	}
	return &Node{op: op, a: a, b: b}
}

func (n *Node) Neg() *Node    { return unary(OpNeg, n) }
func (n *Node) Abs() *Node    { return unary(OpAbs, n) }
func (n *Node) Sqrt() *Node   { return unary(OpSqrt, n) }
func (n *Node) Square() *Node { return unary(OpSquare, n) }
func (n *Node) Sin() *Node    { return unary(OpSin, n) }
func (n *Node) Cos() *Node    { return unary(OpCos, n) }
func (n *Node) Tan() *Node    { return unary(OpTan, n) }
func (n *Node) Exp() *Node    { return unary(OpExp, n) }
func (n *Node) Ln() *Node     { return unary(OpLn, n) }
func (n *Node) Floor() *Node  { return unary(OpFloor, n) }
func (n *Node) Ceil() *Node   { return unary(OpCeil, n) }
func (n *Node) Round() *Node  { return unary(OpRound, n) }
func (n *Node) Recip() *Node  { return unary(OpRecip, n) }
func (n *Node) Not() *Node    { return unary(OpNot, n) }

func (n *Node) Add(o *Node) *Node     { return binary(OpAdd, n, o) }
func (n *Node) Sub(o *Node) *Node     { return binary(OpSub, n, o) }
func (n *Node) Mul(o *Node) *Node     { return binary(OpMul, n, o) }
func (n *Node) Div(o *Node) *Node     { return binary(OpDiv, n, o) }
func (n *Node) Min(o *Node) *Node     { return binary(OpMin, n, o) }
func (n *Node) Max(o *Node) *Node     { return binary(OpMax, n, o) }
func (n *Node) Atan2(o *Node) *Node   { return binary(OpAtan2, n, o) }
func (n *Node) Mod(o *Node) *Node     { return binary(OpMod, n, o) }
func (n *Node) Compare(o *Node) *Node { return binary(OpCompare, n, o) }
func (n *Node) And(o *Node) *Node     { return binary(OpAnd, n, o) }
func (n *Node) Or(o *Node) *Node      { return binary(OpOr, n, o) }

// Remap returns a copy of the tree with the X, Y and Z axes
// replaced by the given trees. Shared subtrees stay shared.
func (n *Node) Remap(x, y, z *Node) *Node {
	memo := map[*Node]*Node{}
	var walk func(m *Node) *Node
	walk = func(m *Node) *Node {
		if r, ok := memo[m]; ok {
			return r
		}
		var r *Node
		switch {
		case m.op == OpX:
			r = x
		case m.op == OpY:
			r = y
		case m.op == OpZ:
			r = z
		case m.op == OpConst:
			r = m
		case m.op.IsUnary():
			r = unary(m.op, walk(m.a))
		default:
			r = binary(m.op, walk(m.a), walk(m.b))
		}
		memo[m] = r
		return r
	}
	return walk(n)
}

// Eval evaluates the tree at a single point by compiling a
// throwaway tape; use [Compile] and [PointEval] for repeated evaluation.
func (n *Node) Eval(x, y, z float32) float32 {
	return NewPointEval(Compile(n)).Eval(x, y, z)
}

// String returns an s-expression for the tree, abbreviating deep trees.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	if depth > 8 {
		b.WriteString("..")
		return
	}
	switch {
	case n.op == OpConst:
		fmt.Fprintf(b, "%g", n.value)
	case n.op <= OpZ:
		b.WriteString(n.op.String())
	default:
		b.WriteString("(")
		b.WriteString(n.op.String())
		b.WriteString(" ")
		n.a.write(b, depth+1)
		if n.b != nil {
			b.WriteString(" ")
			n.b.write(b, depth+1)
		}
		b.WriteString(")")
	}
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func applyUnary(op Op, v float32) float32 {
	switch op {
	case OpNeg:
		return -v
	case OpAbs:
		return math32.Abs(v)
	case OpSqrt:
		return math32.Sqrt(v)
	case OpSquare:
		return v * v
	case OpSin:
		return math32.Sin(v)
	case OpCos:
		return math32.Cos(v)
	case OpTan:
		return math32.Tan(v)
	case OpExp:
		return math32.Exp(v)
	case OpLn:
		return math32.Log(v)
	case OpFloor:
		return math32.Floor(v)
	case OpCeil:
		return math32.Ceil(v)
	case OpRound:
		return math32.Round(v)
	case OpRecip:
		return 1 / v
	case OpNot:
		return boolf(v == 0)
	}
	panic("implicit: not a unary op: " + op.String())
}

// mod is the euclidean remainder, which has the sign of the divisor.
func mod(a, b float32) float32 {
	m := math32.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func applyBinary(op Op, a, b float32) float32 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpMin:
		if math32.IsNaN(a) || math32.IsNaN(b) {
			return math32.NaN()
		}
		return math32.Min(a, b)
	case OpMax:
		if math32.IsNaN(a) || math32.IsNaN(b) {
			return math32.NaN()
		}
		return math32.Max(a, b)
	case OpAtan2:
		return math32.Atan2(a, b)
	case OpMod:
		return mod(a, b)
	case OpCompare:
		switch {
		case math32.IsNaN(a) || math32.IsNaN(b):
			return math32.NaN()
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case OpAnd:
		if a == 0 {
			return a
		}
		return b
	case OpOr:
		if a != 0 {
			return a
		}
		return b
	}
	panic("implicit: not a binary op: " + op.String())
}
