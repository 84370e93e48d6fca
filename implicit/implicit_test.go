// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package implicit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func circle(r float32) *Node {
	return X().Square().Add(Y().Square()).Sqrt().Sub(Const(r))
}

func TestConstFolding(t *testing.T) {
	n := Const(2).Add(Const(3)).Mul(Const(4))
	v, ok := n.Constant()
	assert.True(t, ok)
	assert.Equal(t, float32(20), v)

	_, ok = X().Add(Const(1)).Constant()
	assert.False(t, ok)
}

func TestPointEval(t *testing.T) {
	c := circle(1)
	assert.InDelta(t, -1, c.Eval(0, 0, 0), 1e-6)
	assert.InDelta(t, 1, c.Eval(2, 0, 0), 1e-6)
	assert.InDelta(t, 0, c.Eval(0, 1, 5), 1e-6)

	assert.Equal(t, float32(-1), X().Compare(Y()).Eval(1, 2, 0))
	assert.Equal(t, float32(1), X().Compare(Y()).Eval(3, 2, 0))
	assert.Equal(t, float32(1), X().Mod(Const(3)).Eval(-2, 0, 0))
	assert.Equal(t, float32(5), X().And(Y()).Eval(1, 5, 0))
	assert.Equal(t, float32(0), X().And(Y()).Eval(0, 5, 0))
	assert.Equal(t, float32(5), X().Or(Y()).Eval(0, 5, 0))
}

func TestRemap(t *testing.T) {
	c := circle(1)
	moved := c.Remap(X().Sub(Const(2)), Y(), Z())
	assert.InDelta(t, -1, moved.Eval(2, 0, 0), 1e-6)
	assert.InDelta(t, 1, moved.Eval(0, 0, 0), 1e-6)
}

func TestContextIdentity(t *testing.T) {
	ctx := NewContext()
	a := circle(1)
	b := circle(1)
	c := circle(2)
	assert.NotSame(t, a, b)
	assert.Equal(t, ctx.Import(a), ctx.Import(b))
	assert.NotEqual(t, ctx.Import(a), ctx.Import(c))
	assert.True(t, ctx.Equal(a, b))
	assert.False(t, ctx.Equal(a, c))
	assert.False(t, ctx.Equal(a, nil))

	n := ctx.Len()
	ctx.Import(circle(1))
	assert.Equal(t, n, ctx.Len())
}

func TestTapeDedup(t *testing.T) {
	a := X().Square()
	b := X().Square()
	tp := Compile(a.Add(b))
	// x, square, add
	assert.Equal(t, 3, tp.Len())
	assert.Equal(t, float32(18), NewPointEval(tp).Eval(3, 0, 0))
}

func TestIntervalEval(t *testing.T) {
	c := NewIntervalEval(Compile(circle(1)))

	out := c.Eval(Iv(2, 3), Iv(2, 3), Iv(0, 0))
	assert.Greater(t, out.Lo, float32(0))

	in := c.Eval(Iv(-0.1, 0.1), Iv(-0.1, 0.1), Iv(0, 0))
	assert.Less(t, in.Hi, float32(0))

	edge := c.Eval(Iv(0.5, 1.5), Iv(-0.1, 0.1), Iv(0, 0))
	assert.True(t, edge.Contains(0))

	sq := NewIntervalEval(Compile(X().Square())).Eval(Iv(-2, 1), Iv(0, 0), Iv(0, 0))
	assert.Equal(t, Iv(0, 4), sq)

	div := NewIntervalEval(Compile(Const(1).Div(X()))).Eval(Iv(-1, 1), Iv(0, 0), Iv(0, 0))
	assert.True(t, math32.IsInf(div.Lo, -1))

	sqrt := NewIntervalEval(Compile(X().Sqrt())).Eval(Iv(-1, 4), Iv(0, 0), Iv(0, 0))
	assert.True(t, sqrt.HasNaN())
}

func TestIntervalContainsPoints(t *testing.T) {
	n := X().Mul(Y()).Sub(Z().Sin()).Max(X().Atan2(Y())).Min(X().Mod(Const(0.7)))
	tp := Compile(n)
	ie := NewIntervalEval(tp)
	pe := NewPointEval(tp)
	r := ie.Eval(Iv(-1, 1), Iv(0.5, 2), Iv(-3, 3))
	for _, p := range [][3]float32{{-1, 0.5, -3}, {0, 1, 0}, {1, 2, 3}, {0.3, 1.7, -1.2}} {
		v := pe.Eval(p[0], p[1], p[2])
		assert.True(t, r.Contains(v), "%v not in %v", v, r)
	}
}

func TestGradEval(t *testing.T) {
	g := NewGradEval(Compile(circle(1))).Eval(3, 4, 0)
	assert.InDelta(t, 4, g.V, 1e-5)
	assert.InDelta(t, 0.6, g.DX, 1e-5)
	assert.InDelta(t, 0.8, g.DY, 1e-5)
	assert.InDelta(t, 0, g.DZ, 1e-5)

	g = NewGradEval(Compile(X().Mul(Y()).Add(Z().Sin()))).Eval(2, 3, 0)
	assert.InDelta(t, 6, g.V, 1e-5)
	assert.InDelta(t, 3, g.DX, 1e-5)
	assert.InDelta(t, 2, g.DY, 1e-5)
	assert.InDelta(t, 1, g.DZ, 1e-5)
}

func TestString(t *testing.T) {
	assert.Equal(t, "(add x 1)", X().Add(Const(1)).String())
}
