// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/world"
	"github.com/lucasb-eyer/go-colorful"
)

// shape is a drawable compiled for rendering.
type shape struct {
	tape  *implicit.Tape
	color *colorTapes
}

type colorTapes struct {
	model world.ColorModels
	ch    [3]*implicit.Tape
}

// compile compiles every drawable of a scene.
func compile(s *world.Scene) []shape {
	shs := make([]shape, len(s.Shapes))
	for i, d := range s.Shapes {
		shs[i].tape = implicit.Compile(d.Tree)
		if d.Color != nil {
			ct := &colorTapes{model: d.Color.Model}
			for j, c := range d.Color.Channels {
				ct.ch[j] = implicit.Compile(c)
			}
			shs[i].color = ct
		}
	}
	return shs
}

// colorEval evaluates a color at points; it is single-goroutine.
type colorEval struct {
	model world.ColorModels
	ch    [3]*implicit.PointEval
}

func (ct *colorTapes) evaluator() *colorEval {
	if ct == nil {
		return nil
	}
	ce := &colorEval{model: ct.model}
	for i, t := range ct.ch {
		ce.ch[i] = implicit.NewPointEval(t)
	}
	return ce
}

// eval returns the color at a point. Channels that are not
// numbers give a transparent color.
func (ce *colorEval) eval(x, y, z float32) color.RGBA {
	var v [3]float32
	for i, e := range ce.ch {
		v[i] = e.Eval(x, y, z)
		if math32.IsNaN(v[i]) {
			return color.RGBA{}
		}
	}
	if ce.model == world.HSL {
		c := colorful.Hsl(float64(v[0])*180/math32.Pi, clamp01(v[1]), clamp01(v[2])).Clamped()
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 255}
	}
	return color.RGBA{unit8(v[0]), unit8(v[1]), unit8(v[2]), 255}
}

func clamp01(f float32) float64 {
	return float64(max(0, min(1, f)))
}

func unit8(f float32) uint8 {
	return uint8(math32.Round(float32(clamp01(f)) * 255))
}

// scaleRGB multiplies the color channels by k in [0, 1].
func scaleRGB(c color.RGBA, k float32) color.RGBA {
	k = max(0, min(1, k))
	return color.RGBA{uint8(float32(c.R) * k), uint8(float32(c.G) * k), uint8(float32(c.B) * k), c.A}
}

var (
	defaultColor = color.RGBA{255, 255, 255, 255}
	insideColor  = color.RGBA{70, 130, 220, 255}
	outsideColor = color.RGBA{230, 160, 80, 255}
	albedo       = color.RGBA{204, 204, 204, 255}
)
