// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh builds triangle meshes from implicit trees and
// writes them as binary STL.
//
// A sparse octree is built over a cube, pruning cells that interval
// arithmetic proves to be entirely inside or outside the shape. Each
// leaf cell that straddles the surface gets a vertex at the average
// of the zero crossings along its edges, and every grid edge with a
// sign change emits a quad joining the four leaves around it.
package mesh

import (
	"runtime"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/render"
	"golang.org/x/sync/errgroup"
)

// Settings are the meshing parameters: the cube is center ± scale
// along every axis, split into 2^Depth cells per axis.
type Settings struct {
	Center math32.Vector3
	Scale  float32
	Depth  int

	// Workers is the number of goroutines; 0 means GOMAXPROCS.
	Workers int
}

type cell [3]int32

// leaf is a leaf cell that straddles the surface.
type leaf struct {
	cell   cell
	vertex math32.Vector3

	// corners is the sign of each corner, bit i set when corner
	// i (x = i&1, y = i&2, z = i&4) is inside.
	corners uint8
}

type octree struct {
	s      Settings
	size   float32
	leaves map[cell]*leaf
}

func (o *octree) position(x, y, z int32) math32.Vector3 {
	lo := o.s.Center.SubScalar(o.s.Scale)
	return math32.Vec3(lo.X+float32(x)*o.size, lo.Y+float32(y)*o.size, lo.Z+float32(z)*o.size)
}

// builder subdivides cells on one goroutine.
type builder struct {
	o        *octree
	c        *render.Cancel
	point    *implicit.PointEval
	interval *implicit.IntervalEval
	leaves   []*leaf
}

// build recursively subdivides the cell at the given level, whose
// minimum corner is at the given coordinates in leaf units.
func (b *builder) build(level int, x, y, z int32) error {
	if err := b.c.Err(); err != nil {
		return err
	}
	span := int32(1) << (b.o.s.Depth - level)
	lo := b.o.position(x, y, z)
	hi := b.o.position(x+span, y+span, z+span)
	iv := b.interval.Eval(implicit.Iv(lo.X, hi.X), implicit.Iv(lo.Y, hi.Y), implicit.Iv(lo.Z, hi.Z))
	if !iv.HasNaN() && (iv.Lo > 0 || iv.Hi < 0) {
		return nil
	}
	if level == b.o.s.Depth {
		if l := b.leaf(x, y, z); l != nil {
			b.leaves = append(b.leaves, l)
		}
		return nil
	}
	half := span / 2
	for i := range 8 {
		if err := b.build(level+1, x+half*int32(i&1), y+half*int32(i>>1&1), z+half*int32(i>>2&1)); err != nil {
			return err
		}
	}
	return nil
}

var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// leaf evaluates the corners of a leaf cell and places its vertex,
// returning nil if the cell does not straddle the surface.
func (b *builder) leaf(x, y, z int32) *leaf {
	var pos [8]math32.Vector3
	var val [8]float32
	var corners uint8
	for i := range 8 {
		pos[i] = b.o.position(x+int32(i&1), y+int32(i>>1&1), z+int32(i>>2&1))
		val[i] = b.point.Eval(pos[i].X, pos[i].Y, pos[i].Z)
		if val[i] < 0 {
			corners |= 1 << i
		}
	}
	if corners == 0 || corners == 0xff {
		return nil
	}
	var sum math32.Vector3
	n := 0
	for _, e := range cubeEdges {
		a, c := e[0], e[1]
		if (corners>>a&1 == 1) == (corners>>c&1 == 1) {
			continue
		}
		t := float32(0.5)
		if d := val[a] - val[c]; d != 0 && !math32.IsNaN(d) {
			t = max(0, min(1, val[a]/d))
		}
		sum = sum.Add(pos[a].Add(pos[c].Sub(pos[a]).MulScalar(t)))
		n++
	}
	return &leaf{cell: cell{x, y, z}, vertex: sum.DivScalar(float32(n)), corners: corners}
}

// buildOctree builds the leaves in parallel, splitting the work
// at the second level of the tree.
func buildOctree(c *render.Cancel, t *implicit.Node, s Settings) (*octree, error) {
	o := &octree{s: s, size: 2 * s.Scale / float32(int32(1)<<s.Depth), leaves: map[cell]*leaf{}}
	tape := implicit.Compile(t)
	split := min(2, s.Depth)
	n := int32(1) << split
	span := int32(1) << (s.Depth - split)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	results := make([][]*leaf, n*n*n)
	for i := range n * n * n {
		g.Go(func() error {
			b := &builder{o: o, c: c, point: implicit.NewPointEval(tape), interval: implicit.NewIntervalEval(tape)}
			err := b.build(split, span*(i%n), span*(i/n%n), span*(i/(n*n)))
			results[i] = b.leaves
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, ls := range results {
		for _, l := range ls {
			o.leaves[l.cell] = l
		}
	}
	return o, nil
}
