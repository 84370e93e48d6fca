// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shapes

import (
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircle(t *testing.T) {
	tr := Circle{Center: math32.Vec2(1, 0), Radius: 2}.Tree()
	assert.InDelta(t, -2, tr.Eval(1, 0, 0), 1e-6)
	assert.InDelta(t, 0, tr.Eval(3, 0, 0), 1e-6)
}

func TestBoxAndCsg(t *testing.T) {
	b := Box{Lower: math32.Vec3(0, 0, 0), Upper: math32.Vec3(1, 1, 1)}.Tree()
	s := Sphere{Center: math32.Vec3(1, 1, 1), Radius: 0.5}.Tree()
	assert.Less(t, b.Eval(0.5, 0.5, 0.5), float32(0))
	assert.Greater(t, b.Eval(2, 0.5, 0.5), float32(0))

	d := Difference{Shape: b, Cutout: s}.Tree()
	assert.Greater(t, d.Eval(0.9, 0.9, 0.9), float32(0))
	assert.Less(t, d.Eval(0.1, 0.1, 0.1), float32(0))

	u := Union{Input: []*implicit.Node{b, s}}.Tree()
	assert.Less(t, u.Eval(1.2, 1.2, 1.2), float32(0))
	i := Intersection{Input: []*implicit.Node{b, s}}.Tree()
	assert.Greater(t, i.Eval(1.2, 1.2, 1.2), float32(0))

	empty, ok := Union{}.Tree().Constant()
	assert.True(t, ok)
	assert.True(t, math32.IsInf(empty, 1))
}

func TestTransforms(t *testing.T) {
	circle := Circle{Radius: 1}.Tree()
	m := Move{Shape: circle, Offset: math32.Vec3(3, 0, 0)}.Tree()
	assert.InDelta(t, -1, m.Eval(3, 0, 0), 1e-6)

	su := ScaleUniform{Shape: circle, Scale: 2}.Tree()
	assert.InDelta(t, 0, su.Eval(2, 0, 0), 1e-6)
	assert.InDelta(t, -2, su.Eval(0, 0, 0), 1e-6)

	sc := Scale{Shape: circle, Scale: math32.Vec3(2, 1, 1)}.Tree()
	assert.InDelta(t, 0, sc.Eval(2, 0, 0), 1e-6)

	r := RotateZ{Shape: Move{Shape: circle, Offset: math32.Vec3(2, 0, 0)}.Tree(), Angle: math32.Pi / 2}.Tree()
	assert.InDelta(t, -1, r.Eval(0, 2, 0), 1e-5)

	p, err := ParsePlane("yz")
	require.NoError(t, err)
	mirror := Reflect{Shape: m, Plane: p}.Tree()
	assert.InDelta(t, -1, mirror.Eval(-3, 0, 0), 1e-6)

	e := ExtrudeZ{Shape: circle, Lower: 0, Upper: 1}.Tree()
	assert.Less(t, e.Eval(0, 0, 0.5), float32(0))
	assert.Greater(t, e.Eval(0, 0, 2), float32(0))

	h := Halfspace{Plane: math32.Vec4(1, 0, 0, 2)}.Tree()
	assert.Less(t, h.Eval(1, 0, 0), float32(0))
	assert.Greater(t, h.Eval(3, 0, 0), float32(0))

	bl := Blend{A: circle, B: m, Radius: 0}.Tree()
	assert.InDelta(t, -1, bl.Eval(3, 0, 0), 1e-6)
}

func TestParsePlane(t *testing.T) {
	p, err := ParsePlane("XY")
	require.NoError(t, err)
	assert.Equal(t, math32.Vec3(0, 0, 1), p.Axis)
	_, err = ParsePlane("xx")
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	ts := Types()
	assert.Len(t, ts, len(All))
	assert.Equal(t, "Circle", ts[0].Name())
}
