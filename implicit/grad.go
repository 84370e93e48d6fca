// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package implicit

import (
	"github.com/chewxy/math32"
)

// Grad is a value with its partial derivatives along X, Y and Z.
type Grad struct {
	V, DX, DY, DZ float32
}

func (g Grad) scale(s float32) Grad {
	return Grad{g.V, g.DX * s, g.DY * s, g.DZ * s}
}

func (g Grad) withValue(v float32) Grad {
	g.V = v
	return g
}

func gradUnary(op Op, a Grad) Grad {
	v := applyUnary(op, a.V)
	switch op {
	case OpNeg:
		return a.scale(-1).withValue(v)
	case OpAbs:
		if a.V < 0 {
			return a.scale(-1).withValue(v)
		}
		return a
	case OpSqrt:
		return a.scale(0.5 / v).withValue(v)
	case OpSquare:
		return a.scale(2 * a.V).withValue(v)
	case OpSin:
		return a.scale(math32.Cos(a.V)).withValue(v)
	case OpCos:
		return a.scale(-math32.Sin(a.V)).withValue(v)
	case OpTan:
		c := math32.Cos(a.V)
		return a.scale(1 / (c * c)).withValue(v)
	case OpExp:
		return a.scale(v).withValue(v)
	case OpLn:
		return a.scale(1 / a.V).withValue(v)
	case OpRecip:
		return a.scale(-1 / (a.V * a.V)).withValue(v)
	}
	// piecewise constant
	return Grad{V: v}
}

func gradBinary(op Op, a, b Grad) Grad {
	v := applyBinary(op, a.V, b.V)
	switch op {
	case OpAdd:
		return Grad{v, a.DX + b.DX, a.DY + b.DY, a.DZ + b.DZ}
	case OpSub:
		return Grad{v, a.DX - b.DX, a.DY - b.DY, a.DZ - b.DZ}
	case OpMul:
		return Grad{v,
			a.DX*b.V + b.DX*a.V,
			a.DY*b.V + b.DY*a.V,
			a.DZ*b.V + b.DZ*a.V}
	case OpDiv:
		d := b.V * b.V
		return Grad{v,
			(a.DX*b.V - b.DX*a.V) / d,
			(a.DY*b.V - b.DY*a.V) / d,
			(a.DZ*b.V - b.DZ*a.V) / d}
	case OpMin:
		if a.V < b.V {
			return a
		}
		return b
	case OpMax:
		if a.V > b.V {
			return a
		}
		return b
	case OpAtan2:
		d := a.V*a.V + b.V*b.V
		return Grad{v,
			(b.V*a.DX - a.V*b.DX) / d,
			(b.V*a.DY - a.V*b.DY) / d,
			(b.V*a.DZ - a.V*b.DZ) / d}
	case OpMod:
		return a.withValue(v)
	case OpAnd:
		if a.V == 0 {
			return a
		}
		return b
	case OpOr:
		if a.V != 0 {
			return a
		}
		return b
	}
	return Grad{V: v}
}

// GradEval evaluates a [Tape] at single points with automatic
// differentiation. It owns scratch memory and must not be shared
// between goroutines.
type GradEval struct {
	tape  *Tape
	slots []Grad
}

// NewGradEval returns a new [GradEval] for the given tape.
func NewGradEval(t *Tape) *GradEval {
	return &GradEval{tape: t, slots: make([]Grad, len(t.Instrs))}
}

// Eval evaluates the tape and its gradient at the given point.
func (e *GradEval) Eval(x, y, z float32) Grad {
	s := e.slots
	for i, in := range e.tape.Instrs {
		var v Grad
		switch {
		case in.Op == OpX:
			v = Grad{x, 1, 0, 0}
		case in.Op == OpY:
			v = Grad{y, 0, 1, 0}
		case in.Op == OpZ:
			v = Grad{z, 0, 0, 1}
		case in.Op == OpConst:
			v = Grad{V: in.Value}
		case in.Op.IsUnary():
			v = gradUnary(in.Op, s[in.A])
		default:
			v = gradBinary(in.Op, s[in.A], s[in.B])
		}
		s[i] = v
	}
	return s[len(s)-1]
}
