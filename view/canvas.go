// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package view

import (
	"fmt"
	"slices"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/world"
)

// Kinds are the kinds of [Canvas].
type Kinds int32

const (
	Canvas2D Kinds = iota
	Canvas3D
)

func (k Kinds) String() string {
	if k == Canvas3D {
		return "3d"
	}
	return "2d"
}

// MarshalText implements [encoding.TextMarshaler].
func (k Kinds) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Kinds) UnmarshalText(b []byte) error {
	switch string(b) {
	case "2d":
		*k = Canvas2D
	case "3d":
		*k = Canvas3D
	default:
		return fmt.Errorf("unknown canvas kind %q", b)
	}
	return nil
}

// Canvas is the camera and rendering mode of a view, independent
// of the image size.
type Canvas struct {
	Kind  Kinds        `json:"kind"`
	Mode2 render.Mode2 `json:"mode2"`
	Mode3 render.Mode3 `json:"mode3"`

	// Center is the model position at the image center;
	// 2D canvases use only X and Y.
	Center math32.Vector3 `json:"center"`

	// Scale is the model distance from the center to the edge
	// of the shorter image side.
	Scale float32 `json:"scale"`

	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
}

// New2D returns a 2D canvas showing [-1, 1].
func New2D(mode render.Mode2) Canvas {
	return Canvas{Kind: Canvas2D, Mode2: mode, Scale: 1}
}

// New3D returns a 3D canvas showing [-1, 1] from above.
func New3D(mode render.Mode3) Canvas {
	return Canvas{Kind: Canvas3D, Mode3: mode, Scale: 1}
}

// View2 returns the 2D camera for an image size.
func (c Canvas) View2(w, h int) render.View2 {
	v := render.NewView2(w, h)
	v.Center = math32.Vec2(c.Center.X, c.Center.Y)
	v.Scale = c.Scale
	return v
}

// View3 returns the 3D camera for an image size.
func (c Canvas) View3(w, h int) render.View3 {
	v := render.NewView3(w, h)
	v.Center = c.Center
	v.Scale = c.Scale
	v.Pitch = c.Pitch
	v.Yaw = c.Yaw
	return v
}

// Pan moves the camera by a pixel offset in an image of the given
// size.
func (c Canvas) Pan(dx, dy float32, w, h int) Canvas {
	k := 2 * c.Scale / float32(max(1, min(w, h)))
	if c.Kind == Canvas2D {
		c.Center.X -= dx * k
		c.Center.Y += dy * k
		return c
	}
	v := c.View3(w, h)
	a := v.Model(0, 0, 0)
	b := v.Model(1, 0, 0)
	u := b.Sub(a).Normal()
	d := v.Model(0, 1, 0)
	down := d.Sub(a).Normal()
	c.Center = c.Center.Sub(u.MulScalar(dx * k)).Sub(down.MulScalar(dy * k))
	return c
}

// Zoom scales the view by the given factor.
func (c Canvas) Zoom(f float32) Canvas {
	if f > 0 && !math32.IsInf(f, 0) {
		c.Scale *= f
	}
	return c
}

// Rotate changes the yaw and pitch of a 3D canvas,
// clamping the pitch to [0, π].
func (c Canvas) Rotate(dyaw, dpitch float32) Canvas {
	if c.Kind != Canvas3D {
		return c
	}
	c.Yaw = math32.Mod(c.Yaw+dyaw, 2*math32.Pi)
	c.Pitch = max(0, min(math32.Pi, c.Pitch+dpitch))
	return c
}

// ShapeID is the identity of a drawable in a shared
// [implicit.Context].
type ShapeID struct {
	Tree     implicit.NodeID
	Colored  bool
	Model    world.ColorModels
	Channels [3]implicit.NodeID
}

// RenderSettings is everything that determines a rendered image.
// Trees are compared by their ids in a shared context, so comparing
// settings does not traverse trees.
type RenderSettings struct {
	Canvas Canvas
	Width  int
	Height int
	Shapes []ShapeID
}

// NewRenderSettings returns the settings for rendering a scene on
// a canvas, importing its trees into ctx.
func NewRenderSettings(ctx *implicit.Context, c Canvas, w, h int, s *world.Scene) *RenderSettings {
	rs := &RenderSettings{Canvas: c, Width: w, Height: h}
	if s == nil {
		return rs
	}
	for _, d := range s.Shapes {
		id := ShapeID{Tree: ctx.Import(d.Tree)}
		if d.Color != nil {
			id.Colored = true
			id.Model = d.Color.Model
			for i, ch := range d.Color.Channels {
				id.Channels[i] = ctx.Import(ch)
			}
		}
		rs.Shapes = append(rs.Shapes, id)
	}
	return rs
}

// Equal returns whether the settings would render the same image.
func (s *RenderSettings) Equal(o *RenderSettings) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Canvas == o.Canvas && s.Width == o.Width && s.Height == o.Height &&
		slices.Equal(s.Shapes, o.Shapes)
}
