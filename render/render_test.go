// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"testing"

	"cogentcore.org/core/base/tolassert"
	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/implicit/shapes"
	"cogentcore.org/halfspace/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var small = Options{TileSize: 8, Workers: 4}

func circle(r float32) *implicit.Node {
	return shapes.Circle{Radius: r}.Tree()
}

func TestView2(t *testing.T) {
	v := NewView2(100, 50)
	p := v.Model(0, 0)
	tolassert.EqualTol(t, -2+0.02, p.X, 1e-5)
	tolassert.EqualTol(t, 1-0.02, p.Y, 1e-5)
	p = v.Model(99, 49)
	tolassert.EqualTol(t, 2-0.02, p.X, 1e-5)
	tolassert.EqualTol(t, -1+0.02, p.Y, 1e-5)

	v.Center = math32.Vec2(1, 1)
	v = v.Zoom(2)
	p = v.Model(50, 25)
	tolassert.EqualTol(t, 1+0.04, p.X, 1e-5)
	tolassert.EqualTol(t, 1-0.04, p.Y, 1e-5)
}

func TestView3Basis(t *testing.T) {
	v := NewView3(10, 10)
	p := v.Model(5, 5, 9)
	tolassert.EqualTol(t, 0.1, p.X, 1e-5)
	tolassert.EqualTol(t, -0.1, p.Y, 1e-5)
	tolassert.EqualTol(t, 0.9, p.Z, 1e-5)

	v.Yaw = math32.Pi / 2
	u, w, n := v.basis()
	tolassert.EqualTol(t, 0, u.Dot(w), 1e-6)
	tolassert.EqualTol(t, 0, u.Dot(n), 1e-6)
	tolassert.EqualTol(t, 1, n.Length(), 1e-6)
}

func TestBitfield(t *testing.T) {
	s := world.SceneOf(circle(0.5))
	img, err := Render2(nil, s, NewView2(32, 32), Bitfield, small)
	require.NoError(t, err)
	assert.Equal(t, defaultColor, img.RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
}

func TestCullingMatchesExact(t *testing.T) {
	s := world.SceneOf(circle(0.7))
	v := NewView2(64, 48)
	approx, err := Fields(nil, s, v, false, small)
	require.NoError(t, err)
	exact, err := Fields(nil, s, v, true, small)
	require.NoError(t, err)
	filled := 0
	for i := range approx[0].Dist {
		assert.Equal(t, exact[0].Dist[i] < 0, approx[0].Dist[i] < 0)
		if approx[0].Status[i] != Evaluated {
			filled++
		}
	}
	assert.Greater(t, filled, 0)
	for _, st := range exact[0].Status {
		assert.Equal(t, Evaluated, st)
	}
}

func TestCompositeOrder(t *testing.T) {
	red, err := world.NewRGB(implicit.Const(1), implicit.Const(0), implicit.Const(0))
	require.NoError(t, err)
	blue, err := world.NewHSL(implicit.Const(4*math32.Pi/3), implicit.Const(1), implicit.Const(0.5))
	require.NoError(t, err)
	s := &world.Scene{Shapes: []world.Drawable{
		{Tree: circle(0.8), Color: red},
		{Tree: circle(0.3), Color: blue},
	}}
	img, err := Render2(nil, s, NewView2(20, 20), Bitfield, small)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(10, 3))
}

func TestCancelled(t *testing.T) {
	c := NewCancel()
	c.Cancel()
	_, err := Render2(c, world.SceneOf(circle(1)), NewView2(16, 16), SdfExact, small)
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = Render3(c, world.SceneOf(circle(1)), NewView3(16, 16), Shaded, small)
	assert.ErrorIs(t, err, ErrCancelled)
	var none *Cancel
	assert.False(t, none.IsCancelled())
}

func TestModes(t *testing.T) {
	s := world.SceneOf(circle(0.5))
	for _, m := range []Mode2{SdfApprox, SdfExact, Debug} {
		img, err := Render2(nil, s, NewView2(16, 16), m, small)
		require.NoError(t, err, m.String())
		assert.Equal(t, uint8(255), img.RGBAAt(8, 8).A, m.String())
	}
}

func TestHeightmap(t *testing.T) {
	sphere := shapes.Sphere{Radius: 0.5}.Tree()
	s := world.SceneOf(sphere)
	v := NewView3(32, 32)
	f, err := Frames(nil, s, v, false, small)
	require.NoError(t, err)
	center := f.Hits[16*32+16]
	// the front of the sphere is at z = 0.5, a quarter of the way from the front
	assert.InDelta(t, 24, center, 1)
	assert.Equal(t, int32(-1), f.Hits[0])

	img, err := Render3(nil, s, v, Heightmap, small)
	require.NoError(t, err)
	assert.Greater(t, img.RGBAAt(16, 16).R, img.RGBAAt(16, 6).R)
}

func TestShaded(t *testing.T) {
	s := world.SceneOf(shapes.Sphere{Radius: 0.5}.Tree())
	v := NewView3(32, 32)
	f, err := Frames(nil, s, v, true, small)
	require.NoError(t, err)
	n := f.Normal[16*32+16]
	assert.Greater(t, n.Z, float32(0.9))

	img, err := Render3(nil, s, v, Shaded, small)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.RGBAAt(16, 16).A)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestUpscale(t *testing.T) {
	w, h := LevelSize(100, 60, 3)
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)
	w, h = LevelSize(100, 60, 10)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	img, err := Render2(nil, world.SceneOf(circle(0.5)), NewView2(8, 8), Bitfield, small)
	require.NoError(t, err)
	big := Upscale(img, 32, 32)
	assert.Equal(t, 32, big.Bounds().Dx())
	assert.Equal(t, img.RGBAAt(4, 4), big.RGBAAt(17, 17))
	assert.Same(t, img, Upscale(img, 8, 8))
}
