// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package implicit

import "math"

// Instr is a single instruction in a [Tape]. It reads slots A and B
// and writes its result to its own index in the tape.
type Instr struct {
	Op    Op
	A, B  uint32
	Value float32
}

// Tape is a tree flattened into a post-order instruction list with
// duplicate subtrees merged. The last instruction is the root.
// A tape is read-only and may be shared between goroutines.
type Tape struct {
	Instrs []Instr
}

// Len returns the number of instructions in the tape.
func (t *Tape) Len() int { return len(t.Instrs) }

// Compile flattens the given tree into a [Tape].
func Compile(n *Node) *Tape {
	tp := &Tape{}
	byPtr := map[*Node]uint32{}
	byKey := map[Instr]uint32{}
	var walk func(m *Node) uint32
	walk = func(m *Node) uint32 {
		if i, ok := byPtr[m]; ok {
			return i
		}
		in := Instr{Op: m.op}
		switch {
		case m.op == OpConst:
			in.Value = m.value
			if in.Value != in.Value {
				in.Value = float32(math.NaN())
			}
		case m.op.IsUnary():
			in.A = walk(m.a)
		case m.op.IsBinary():
			in.A = walk(m.a)
			in.B = walk(m.b)
		}
		i, ok := byKey[in]
		if !ok || in.Value != in.Value {
			i = uint32(len(tp.Instrs))
			tp.Instrs = append(tp.Instrs, in)
			byKey[in] = i
		}
		byPtr[m] = i
		return i
	}
	walk(n)
	return tp
}

// PointEval evaluates a [Tape] at single points. It owns scratch
// memory and must not be shared between goroutines.
type PointEval struct {
	tape  *Tape
	slots []float32
}

// NewPointEval returns a new [PointEval] for the given tape.
func NewPointEval(t *Tape) *PointEval {
	return &PointEval{tape: t, slots: make([]float32, len(t.Instrs))}
}

// Eval evaluates the tape at the given point.
func (e *PointEval) Eval(x, y, z float32) float32 {
	s := e.slots
	for i, in := range e.tape.Instrs {
		var v float32
		switch {
		case in.Op == OpX:
			v = x
		case in.Op == OpY:
			v = y
		case in.Op == OpZ:
			v = z
		case in.Op == OpConst:
			v = in.Value
		case in.Op.IsUnary():
			v = applyUnary(in.Op, s[in.A])
		default:
			v = applyBinary(in.Op, s[in.A], s[in.B])
		}
		s[i] = v
	}
	return s[len(s)-1]
}
