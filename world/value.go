// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"fmt"
	"strconv"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/script"
)

// ValueKinds are the kinds of [Value].
type ValueKinds int32

const (
	// Float is a scalar number.
	Float ValueKinds = iota

	// Vec2 is a 2-vector.
	Vec2

	// Vec3 is a 3-vector.
	Vec3

	// Tree is an implicit tree.
	Tree

	// String is a string.
	String

	// Dynamic is any other script value, kept uninterpreted.
	Dynamic
)

// Value is a typed interpretation of a script value,
// used for display and for typed access by the host.
type Value struct {
	Kind ValueKinds

	Float float64
	Vec2  math32.Vector2
	Vec3  math32.Vector3
	Tree  *implicit.Node
	Str   string

	// Dynamic holds the original script value for the Dynamic kind.
	Dynamic script.Value
}

// FromScript converts a script value. Numbers become floats,
// arrays of 2 or 3 numbers become vectors, trees and strings keep
// their type and anything else stays dynamic.
func FromScript(v script.Value) Value {
	if f, ok := script.ToFloat(v); ok {
		return Value{Kind: Float, Float: f}
	}
	switch v := v.(type) {
	case *implicit.Node:
		return Value{Kind: Tree, Tree: v}
	case string:
		return Value{Kind: String, Str: v}
	case *script.Array:
		if fs, ok := numbers(v); ok {
			switch len(fs) {
			case 2:
				return Value{Kind: Vec2, Vec2: math32.Vec2(fs[0], fs[1])}
			case 3:
				return Value{Kind: Vec3, Vec3: math32.Vec3(fs[0], fs[1], fs[2])}
			}
		}
	}
	return Value{Kind: Dynamic, Dynamic: v}
}

// numbers returns the elements of the array as float32
// if they are all numbers.
func numbers(a *script.Array) ([]float32, bool) {
	fs := make([]float32, len(a.Elems))
	for i, e := range a.Elems {
		f, ok := script.ToFloat(e)
		if !ok {
			return nil, false
		}
		fs[i] = float32(f)
	}
	return fs, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// String returns the display text of the value.
func (v Value) String() string {
	switch v.Kind {
	case Float:
		return formatFloat(v.Float)
	case Vec2:
		return fmt.Sprintf("vec2(%s, %s)", formatFloat32(v.Vec2.X), formatFloat32(v.Vec2.Y))
	case Vec3:
		return fmt.Sprintf("vec3(%s, %s, %s)", formatFloat32(v.Vec3.X), formatFloat32(v.Vec3.Y), formatFloat32(v.Vec3.Z))
	case Tree:
		return "Tree(..)"
	case String:
		return strconv.Quote(v.Str)
	}
	return script.Format(v.Dynamic)
}

// Text returns the display text for a script value.
func Text(v script.Value) string {
	return FromScript(v).String()
}
