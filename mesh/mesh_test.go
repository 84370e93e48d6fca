// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"bytes"
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit/shapes"
	"cogentcore.org/halfspace/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereMesh(t *testing.T, depth int) *Mesh {
	s := Settings{Scale: 1, Depth: depth, Workers: 4}
	m, err := Build(nil, shapes.Sphere{Radius: 0.6}.Tree(), s)
	require.NoError(t, err)
	return m
}

func TestSphere(t *testing.T) {
	m := sphereMesh(t, 4)
	require.NotEmpty(t, m.Triangles)
	for _, tri := range m.Triangles {
		for _, v := range tri {
			assert.InDelta(t, 0.6, v.Length(), 0.13)
		}
	}
}

func TestOutwardNormals(t *testing.T) {
	m := sphereMesh(t, 4)
	outward := 0
	for _, tri := range m.Triangles {
		c := tri[0].Add(tri[1]).Add(tri[2]).DivScalar(3)
		if tri.Normal().Dot(c) > 0 {
			outward++
		}
	}
	assert.Greater(t, outward, len(m.Triangles)*9/10)
}

func TestClosed(t *testing.T) {
	m := sphereMesh(t, 3)
	type edge [2]math32.Vector3
	count := map[edge]int{}
	for _, tri := range m.Triangles {
		for i := range 3 {
			count[edge{tri[i], tri[(i+1)%3]}]++
		}
	}
	for e, n := range count {
		assert.Equal(t, n, count[edge{e[1], e[0]}], "every edge has a matching reverse edge")
	}
}

func TestEmpty(t *testing.T) {
	m, err := Build(nil, shapes.Sphere{Radius: 0.1, Center: math32.Vec3(5, 5, 5)}.Tree(), Settings{Scale: 1, Depth: 4})
	require.NoError(t, err)
	assert.Empty(t, m.Triangles)
}

func TestBuildCancelled(t *testing.T) {
	c := render.NewCancel()
	c.Cancel()
	_, err := Build(c, shapes.Sphere{Radius: 0.6}.Tree(), Settings{Scale: 1, Depth: 4})
	assert.ErrorIs(t, err, render.ErrCancelled)
}

func TestSTL(t *testing.T) {
	m := sphereMesh(t, 3)
	var b bytes.Buffer
	require.NoError(t, WriteSTL(&b, m))
	assert.Equal(t, 84+50*len(m.Triangles), b.Len())
	assert.Equal(t, STLHeader, string(b.Bytes()[:len(STLHeader)]))

	r, err := ReadSTL(&b)
	require.NoError(t, err)
	assert.Equal(t, m.Triangles, r.Triangles)

	s := m.Solid()
	require.Len(t, s.Triangles, len(m.Triangles))
	n := m.Triangles[0].Normal()
	assert.Equal(t, [3]float32{n.X, n.Y, n.Z}, [3]float32(s.Triangles[0].Normal))
	assert.False(t, s.IsAscii)
}
