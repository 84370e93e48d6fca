// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/script"
)

// ColorModels are the color models of a [Color].
type ColorModels int32

const (
	// RGB has red, green and blue channels in [0, 1].
	RGB ColorModels = iota

	// HSL has hue in radians and saturation and lightness in [0, 1].
	HSL
)

// Color is a possibly spatially varying color: each channel is a tree.
type Color struct {
	Model    ColorModels
	Channels [3]*implicit.Node
}

// NewRGB returns a validated RGB [Color].
func NewRGB(r, g, b *implicit.Node) (*Color, error) {
	for i, c := range []*implicit.Node{r, g, b} {
		if err := checkUnit(c, "rgb"[i:i+1]); err != nil {
			return nil, err
		}
	}
	return &Color{Model: RGB, Channels: [3]*implicit.Node{r, g, b}}, nil
}

// NewHSL returns a validated HSL [Color]. The hue is wrapped into
// [0, 2π); saturation and lightness must be in [0, 1] when constant.
func NewHSL(h, s, l *implicit.Node) (*Color, error) {
	if err := checkUnit(s, "saturation"); err != nil {
		return nil, err
	}
	if err := checkUnit(l, "lightness"); err != nil {
		return nil, err
	}
	return &Color{Model: HSL, Channels: [3]*implicit.Node{h.Mod(implicit.Const(2 * math32.Pi)), s, l}}, nil
}

func checkUnit(t *implicit.Node, name string) error {
	if v, ok := t.Constant(); ok && !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s channel must be in [0, 1], got %g", name, v)
	}
	return nil
}

// TypeName is the script type name.
func (c *Color) TypeName() string { return "Color" }

// Drawable is a tree with an optional color.
type Drawable struct {
	Tree  *implicit.Node
	Color *Color
}

// TypeName is the script type name.
func (d *Drawable) TypeName() string { return "Drawable" }

func (d *Drawable) ScriptString() string {
	if d.Color == nil {
		return "Drawable(..)"
	}
	return "Drawable(.., color)"
}

// Scene is a non-empty ordered list of drawables,
// drawn back to front.
type Scene struct {
	Shapes []Drawable
}

// TypeName is the script type name.
func (s *Scene) TypeName() string { return "Scene" }

func (s *Scene) ScriptString() string {
	return fmt.Sprintf("Scene(%d shapes)", len(s.Shapes))
}

// SceneOf returns a scene holding a single uncolored tree.
func SceneOf(t *implicit.Node) *Scene {
	return &Scene{Shapes: []Drawable{{Tree: t}}}
}

// ErrEmptyScene is returned when building a scene with no shapes.
var ErrEmptyScene = errors.New("scene must contain at least one shape")

// SceneFrom builds a scene from a tree, a drawable, a scene or an
// array of any of those. A scene converts to itself.
func SceneFrom(v script.Value) (*Scene, error) {
	switch v := v.(type) {
	case *Scene:
		return v, nil
	case *implicit.Node:
		return SceneOf(v), nil
	case *Drawable:
		return &Scene{Shapes: []Drawable{*v}}, nil
	case *script.Array:
		s := &Scene{}
		for _, e := range v.Elems {
			sub, err := SceneFrom(e)
			if err != nil {
				return nil, err
			}
			s.Shapes = append(s.Shapes, sub.Shapes...)
		}
		if len(s.Shapes) == 0 {
			return nil, ErrEmptyScene
		}
		return s, nil
	}
	return nil, fmt.Errorf("cannot build a scene from %s", script.TypeName(v))
}
