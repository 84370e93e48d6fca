// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"runtime"

	"cogentcore.org/halfspace/implicit"
	"golang.org/x/sync/errgroup"
)

// Options are the parallelism parameters of rendering.
type Options struct {
	// TileSize is the edge length of a tile in pixels.
	TileSize int

	// Workers is the number of goroutines; 0 means GOMAXPROCS.
	Workers int
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = Options{TileSize: 64}

func (o Options) tileSize() int {
	if o.TileSize <= 0 {
		return 64
	}
	return o.TileSize
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}

// tiles splits a width x height image into tiles.
func (o Options) tiles(width, height int) []image.Rectangle {
	ts := o.tileSize()
	var rs []image.Rectangle
	for y := 0; y < height; y += ts {
		for x := 0; x < width; x += ts {
			rs = append(rs, image.Rect(x, y, min(x+ts, width), min(y+ts, height)))
		}
	}
	return rs
}

// forTiles runs f on every tile in parallel, polling the cancel
// token before each tile.
func (o Options) forTiles(c *Cancel, width, height int, f func(r image.Rectangle) error) error {
	var g errgroup.Group
	g.SetLimit(o.workers())
	for _, r := range o.tiles(width, height) {
		g.Go(func() error {
			if err := c.Err(); err != nil {
				return err
			}
			return f(r)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return c.Err()
}

// scaled returns the interval of c + s*i.
func scaled(c, s float32, i implicit.Interval) implicit.Interval {
	if s >= 0 {
		return implicit.Iv(c+s*i.Lo, c+s*i.Hi)
	}
	return implicit.Iv(c+s*i.Hi, c+s*i.Lo)
}

func add(a, b implicit.Interval) implicit.Interval {
	return implicit.Iv(a.Lo+b.Lo, a.Hi+b.Hi)
}

// evaluators are per-goroutine evaluators over a shared tape.
type evaluators struct {
	point    *implicit.PointEval
	interval *implicit.IntervalEval
	grad     *implicit.GradEval
}

func newEvaluators(t *implicit.Tape) *evaluators {
	return &evaluators{
		point:    implicit.NewPointEval(t),
		interval: implicit.NewIntervalEval(t),
		grad:     implicit.NewGradEval(t),
	}
}
