// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package implicit

import (
	"github.com/chewxy/math32"
)

// Interval is a closed range of values. An interval with a NaN
// bound may contain NaN.
type Interval struct {
	Lo, Hi float32
}

// Iv returns a new [Interval].
func Iv(lo, hi float32) Interval { return Interval{lo, hi} }

// HasNaN returns whether the interval may contain NaN.
func (i Interval) HasNaN() bool {
	return math32.IsNaN(i.Lo) || math32.IsNaN(i.Hi)
}

// Contains returns whether v is inside the interval.
func (i Interval) Contains(v float32) bool {
	return v >= i.Lo && v <= i.Hi
}

// Mid returns the midpoint of the interval.
func (i Interval) Mid() float32 { return (i.Lo + i.Hi) / 2 }

// Width returns the width of the interval.
func (i Interval) Width() float32 { return i.Hi - i.Lo }

var (
	ivNaN = Interval{math32.NaN(), math32.NaN()}
	ivAll = Interval{math32.Inf(-1), math32.Inf(1)}
)

func min4(a, b, c, d float32) float32 {
	return math32.Min(math32.Min(a, b), math32.Min(c, d))
}

func max4(a, b, c, d float32) float32 {
	return math32.Max(math32.Max(a, b), math32.Max(c, d))
}

// monotonic applies an increasing function to both bounds.
func monotonic(i Interval, f func(float32) float32) Interval {
	return Interval{f(i.Lo), f(i.Hi)}
}

func ivUnary(op Op, a Interval) Interval {
	if a.HasNaN() {
		return ivNaN
	}
	switch op {
	case OpNeg:
		return Interval{-a.Hi, -a.Lo}
	case OpAbs:
		switch {
		case a.Lo >= 0:
			return a
		case a.Hi <= 0:
			return Interval{-a.Hi, -a.Lo}
		}
		return Interval{0, math32.Max(-a.Lo, a.Hi)}
	case OpSqrt:
		switch {
		case a.Hi < 0:
			return ivNaN
		case a.Lo < 0:
			return Interval{math32.NaN(), math32.Sqrt(a.Hi)}
		}
		return monotonic(a, math32.Sqrt)
	case OpSquare:
		switch {
		case a.Lo >= 0:
			return Interval{a.Lo * a.Lo, a.Hi * a.Hi}
		case a.Hi <= 0:
			return Interval{a.Hi * a.Hi, a.Lo * a.Lo}
		}
		m := math32.Max(-a.Lo, a.Hi)
		return Interval{0, m * m}
	case OpSin, OpCos:
		return Interval{-1, 1}
	case OpTan:
		return ivAll
	case OpExp:
		return monotonic(a, math32.Exp)
	case OpLn:
		switch {
		case a.Hi < 0:
			return ivNaN
		case a.Lo < 0:
			return Interval{math32.NaN(), math32.Log(a.Hi)}
		}
		return monotonic(a, math32.Log)
	case OpFloor:
		return monotonic(a, math32.Floor)
	case OpCeil:
		return monotonic(a, math32.Ceil)
	case OpRound:
		return monotonic(a, math32.Round)
	case OpRecip:
		if a.Lo > 0 || a.Hi < 0 {
			return Interval{1 / a.Hi, 1 / a.Lo}
		}
		return ivAll
	case OpNot:
		switch {
		case a.Lo == 0 && a.Hi == 0:
			return Interval{1, 1}
		case a.Lo > 0 || a.Hi < 0:
			return Interval{0, 0}
		}
		return Interval{0, 1}
	}
	panic("implicit: not a unary op: " + op.String())
}

func ivBinary(op Op, a, b Interval) Interval {
	if a.HasNaN() || b.HasNaN() {
		return ivNaN
	}
	switch op {
	case OpAdd:
		return Interval{a.Lo + b.Lo, a.Hi + b.Hi}
	case OpSub:
		return Interval{a.Lo - b.Hi, a.Hi - b.Lo}
	case OpMul:
		p, q, r, s := a.Lo*b.Lo, a.Lo*b.Hi, a.Hi*b.Lo, a.Hi*b.Hi
		return Interval{min4(p, q, r, s), max4(p, q, r, s)}
	case OpDiv:
		if b.Lo > 0 || b.Hi < 0 {
			p, q, r, s := a.Lo/b.Lo, a.Lo/b.Hi, a.Hi/b.Lo, a.Hi/b.Hi
			return Interval{min4(p, q, r, s), max4(p, q, r, s)}
		}
		return ivAll
	case OpMin:
		return Interval{math32.Min(a.Lo, b.Lo), math32.Min(a.Hi, b.Hi)}
	case OpMax:
		return Interval{math32.Max(a.Lo, b.Lo), math32.Max(a.Hi, b.Hi)}
	case OpAtan2:
		return Interval{-math32.Pi, math32.Pi}
	case OpMod:
		if b.Lo == b.Hi && b.Lo > 0 {
			n := math32.Floor(a.Lo / b.Lo)
			if math32.Floor(a.Hi/b.Lo) == n {
				return Interval{a.Lo - n*b.Lo, a.Hi - n*b.Lo}
			}
			return Interval{0, b.Lo}
		}
		m := math32.Max(math32.Abs(b.Lo), math32.Abs(b.Hi))
		if b.Lo > 0 {
			return Interval{0, m}
		}
		return Interval{-m, m}
	case OpCompare:
		switch {
		case a.Hi < b.Lo:
			return Interval{-1, -1}
		case a.Lo > b.Hi:
			return Interval{1, 1}
		case a.Lo == a.Hi && b.Lo == b.Hi:
			return Interval{0, 0}
		}
		return Interval{-1, 1}
	case OpAnd:
		switch {
		case a.Lo == 0 && a.Hi == 0:
			return a
		case a.Lo > 0 || a.Hi < 0:
			return b
		}
		return Interval{math32.Min(0, b.Lo), math32.Max(0, b.Hi)}
	case OpOr:
		switch {
		case a.Lo == 0 && a.Hi == 0:
			return b
		case a.Lo > 0 || a.Hi < 0:
			return a
		}
		return Interval{math32.Min(a.Lo, b.Lo), math32.Max(a.Hi, b.Hi)}
	}
	panic("implicit: not a binary op: " + op.String())
}

// IntervalEval evaluates a [Tape] over axis-aligned regions, returning
// a conservative bound on the values the tree takes within the region.
// It owns scratch memory and must not be shared between goroutines.
type IntervalEval struct {
	tape  *Tape
	slots []Interval
}

// NewIntervalEval returns a new [IntervalEval] for the given tape.
func NewIntervalEval(t *Tape) *IntervalEval {
	return &IntervalEval{tape: t, slots: make([]Interval, len(t.Instrs))}
}

// Eval evaluates the tape over the given region.
func (e *IntervalEval) Eval(x, y, z Interval) Interval {
	s := e.slots
	for i, in := range e.tape.Instrs {
		var v Interval
		switch {
		case in.Op == OpX:
			v = x
		case in.Op == OpY:
			v = y
		case in.Op == OpZ:
			v = z
		case in.Op == OpConst:
			v = Interval{in.Value, in.Value}
		case in.Op.IsUnary():
			v = ivUnary(in.Op, s[in.A])
		default:
			v = ivBinary(in.Op, s[in.A], s[in.B])
		}
		s[i] = v
	}
	return s[len(s)-1]
}
