// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"cmp"
	"slices"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/render"
)

// Triangle is a mesh face, wound counter-clockwise when seen
// from outside the shape.
type Triangle [3]math32.Vector3

// Normal returns the unit normal of the triangle, or zero for a
// degenerate triangle.
func (t Triangle) Normal() math32.Vector3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	l := n.Length()
	if l == 0 || math32.IsNaN(l) {
		return math32.Vector3{}
	}
	return n.DivScalar(l)
}

// Mesh is a triangle soup.
type Mesh struct {
	Triangles []Triangle
}

// Build meshes the zero level set of t inside the cube given by s.
// It returns [render.ErrCancelled] if c is cancelled.
func Build(c *render.Cancel, t *implicit.Node, s Settings) (*Mesh, error) {
	o, err := buildOctree(c, t, s)
	if err != nil {
		return nil, err
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return o.walk(), nil
}

// walk emits a quad for every grid edge with a sign change, joining
// the vertices of the four leaves around it. Each edge is visited
// from the leaf whose minimum corner it starts at.
func (o *octree) walk() *Mesh {
	cells := make([]cell, 0, len(o.leaves))
	for c := range o.leaves {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b cell) int {
		return cmp.Or(cmp.Compare(a[2], b[2]), cmp.Compare(a[1], b[1]), cmp.Compare(a[0], b[0]))
	})

	m := &Mesh{}
	for _, c := range cells {
		l := o.leaves[c]
		for axis := range 3 {
			// corner 0 and the corner one step along the axis
			start := l.corners&1 == 1
			end := l.corners>>(1<<axis)&1 == 1
			if start == end {
				continue
			}
			b, d := (axis+1)%3, (axis+2)%3
			var quad [4]*leaf
			ok := true
			for i, off := range [4][2]int32{{0, 0}, {-1, 0}, {-1, -1}, {0, -1}} {
				n := c
				n[b] += off[0]
				n[d] += off[1]
				quad[i] = o.leaves[n]
				if quad[i] == nil {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			v := [4]math32.Vector3{quad[0].vertex, quad[1].vertex, quad[2].vertex, quad[3].vertex}
			if !start {
				v[1], v[3] = v[3], v[1]
			}
			m.Triangles = append(m.Triangles, Triangle{v[0], v[1], v[2]}, Triangle{v[0], v[2], v[3]})
		}
	}
	return m
}
