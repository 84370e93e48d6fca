// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"fmt"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/implicit/shapes"
	"cogentcore.org/halfspace/script"
)

// ToTree converts a tree or a number to a tree.
func ToTree(v script.Value) (*implicit.Node, bool) {
	if t, ok := v.(*implicit.Node); ok {
		return t, true
	}
	if f, ok := script.ToFloat(v); ok {
		return implicit.Const(float32(f)), true
	}
	return nil, false
}

func treeArg(c *script.Call, args []script.Value, i int) (*implicit.Node, error) {
	t, ok := ToTree(args[i])
	if !ok {
		return nil, c.Errorf("function '%s' expects a tree for argument %d, found %s", c.Name, i+1, script.TypeName(args[i]))
	}
	return t, nil
}

func isTree(args []script.Value) bool {
	for _, a := range args {
		if _, ok := a.(*implicit.Node); ok {
			return true
		}
	}
	return false
}

var treeBinaryOps = map[string]func(a, b *implicit.Node) *implicit.Node{
	"+": (*implicit.Node).Add,
	"-": (*implicit.Node).Sub,
	"*": (*implicit.Node).Mul,
	"/": (*implicit.Node).Div,
	"%": (*implicit.Node).Mod,
}

func treeBinary(op string, a, b script.Value) (script.Value, bool, error) {
	if !isTree([]script.Value{a, b}) {
		return nil, false, nil
	}
	f, ok := treeBinaryOps[op]
	if !ok {
		return nil, false, nil
	}
	ta, oka := ToTree(a)
	tb, okb := ToTree(b)
	if !oka || !okb {
		return nil, false, nil
	}
	return f(ta, tb), true, nil
}

func treeUnary(op string, a script.Value) (script.Value, bool, error) {
	t, ok := a.(*implicit.Node)
	if !ok {
		return nil, false, nil
	}
	switch op {
	case "-":
		return t.Neg(), true, nil
	case "!":
		return t.Not(), true, nil
	}
	return nil, false, nil
}

// overload wraps a numeric host function so that it builds a tree
// when any argument is a tree.
func overload(e *script.Engine, name string, n int, tree func(ts []*implicit.Node) *implicit.Node) {
	prev := e.Func(name)
	e.Register(name, func(c *script.Call, args []script.Value) (script.Value, error) {
		if !isTree(args) {
			if prev == nil {
				return nil, c.Errorf("function '%s' expects a tree", name)
			}
			return prev(c, args)
		}
		if err := script.ArgCount(c, args, n); err != nil {
			return nil, err
		}
		ts := make([]*implicit.Node, n)
		for i := range args {
			t, err := treeArg(c, args, i)
			if err != nil {
				return nil, err
			}
			ts[i] = t
		}
		return tree(ts), nil
	})
}

func unaryTree(f func(*implicit.Node) *implicit.Node) func(ts []*implicit.Node) *implicit.Node {
	return func(ts []*implicit.Node) *implicit.Node { return f(ts[0]) }
}

func binaryTree(f func(a, b *implicit.Node) *implicit.Node) func(ts []*implicit.Node) *implicit.Node {
	return func(ts []*implicit.Node) *implicit.Node { return f(ts[0], ts[1]) }
}

// vector returns n floats from either n number arguments
// or a single array of n numbers.
func vector(c *script.Call, args []script.Value, n int) ([]float32, error) {
	if len(args) == 1 {
		if a, ok := args[0].(*script.Array); ok {
			args = a.Elems
		}
	}
	if len(args) != n {
		return nil, c.Errorf("function '%s' expects %d numbers", c.Name, n)
	}
	fs := make([]float32, n)
	for i := range args {
		f, err := script.Float(c, args, i)
		if err != nil {
			return nil, err
		}
		fs[i] = float32(f)
	}
	return fs, nil
}

func floatArray(fs ...float32) *script.Array {
	a := &script.Array{Elems: make([]script.Value, len(fs))}
	for i, f := range fs {
		a.Elems[i] = float64(f)
	}
	return a
}

// Vector2 converts a script value to a 2-vector.
func Vector2(v script.Value) (math32.Vector2, error) {
	a, ok := v.(*script.Array)
	if ok {
		if fs, ok := numbers(a); ok && len(fs) == 2 {
			return math32.Vec2(fs[0], fs[1]), nil
		}
	}
	return math32.Vector2{}, fmt.Errorf("expected a 2-vector, found %s", script.Format(v))
}

// Vector3 converts a script value to a 3-vector.
func Vector3(v script.Value) (math32.Vector3, error) {
	a, ok := v.(*script.Array)
	if ok {
		if fs, ok := numbers(a); ok && len(fs) == 3 {
			return math32.Vec3(fs[0], fs[1], fs[2]), nil
		}
	}
	return math32.Vector3{}, fmt.Errorf("expected a 3-vector, found %s", script.Format(v))
}

// Vector4 converts a script value to a 4-vector.
func Vector4(v script.Value) (math32.Vector4, error) {
	a, ok := v.(*script.Array)
	if ok {
		if fs, ok := numbers(a); ok && len(fs) == 4 {
			return math32.Vec4(fs[0], fs[1], fs[2], fs[3]), nil
		}
	}
	return math32.Vector4{}, fmt.Errorf("expected a 4-vector, found %s", script.Format(v))
}

// RegisterGeometry registers tree operators and the geometry host
// functions: tree-aware math, vec2, vec3, plane, remap, the
// drawing functions and the shape constructors.
func RegisterGeometry(e *script.Engine) {
	e.RegisterBinary(treeBinary)
	e.RegisterUnary(treeUnary)

	for name, f := range map[string]func(*implicit.Node) *implicit.Node{
		"abs":    (*implicit.Node).Abs,
		"sqrt":   (*implicit.Node).Sqrt,
		"square": (*implicit.Node).Square,
		"sin":    (*implicit.Node).Sin,
		"cos":    (*implicit.Node).Cos,
		"tan":    (*implicit.Node).Tan,
		"exp":    (*implicit.Node).Exp,
		"ln":     (*implicit.Node).Ln,
		"floor":  (*implicit.Node).Floor,
		"ceil":   (*implicit.Node).Ceil,
		"round":  (*implicit.Node).Round,
		"recip":  (*implicit.Node).Recip,
		"not":    (*implicit.Node).Not,
		"neg":    (*implicit.Node).Neg,
	} {
		overload(e, name, 1, unaryTree(f))
	}
	for name, f := range map[string]func(a, b *implicit.Node) *implicit.Node{
		"min":     (*implicit.Node).Min,
		"max":     (*implicit.Node).Max,
		"atan2":   (*implicit.Node).Atan2,
		"modulo":  (*implicit.Node).Mod,
		"compare": (*implicit.Node).Compare,
		"and":     (*implicit.Node).And,
		"or":      (*implicit.Node).Or,
	} {
		overload(e, name, 2, binaryTree(f))
	}

	e.Register("vec2", func(c *script.Call, args []script.Value) (script.Value, error) {
		fs, err := vector(c, args, 2)
		if err != nil {
			return nil, err
		}
		return floatArray(fs...), nil
	})
	e.Register("vec3", func(c *script.Call, args []script.Value) (script.Value, error) {
		fs, err := vector(c, args, 3)
		if err != nil {
			return nil, err
		}
		return floatArray(fs...), nil
	})
	e.Register("plane", func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, c.Errorf("plane expects a string such as \"yz\"")
		}
		p, err := shapes.ParsePlane(s)
		if err != nil {
			return nil, c.Errorf("%v", err)
		}
		return p, nil
	})
	e.Register("remap", func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 4); err != nil {
			return nil, err
		}
		ts := make([]*implicit.Node, 4)
		for i := range args {
			t, err := treeArg(c, args, i)
			if err != nil {
				return nil, err
			}
			ts[i] = t
		}
		return ts[0].Remap(ts[1], ts[2], ts[3]), nil
	})

	e.Register("draw", func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		t, err := treeArg(c, args, 0)
		if err != nil {
			return nil, err
		}
		return &Drawable{Tree: t}, nil
	})
	registerColor(e, "draw_rgb", NewRGB)
	registerColor(e, "draw_hsl", NewHSL)
	e.Register("scene", func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 1); err != nil {
			return nil, err
		}
		s, err := SceneFrom(args[0])
		if err != nil {
			return nil, c.Errorf("%v", err)
		}
		return s, nil
	})

	registerShapes(e)
}

func registerColor(e *script.Engine, name string, color func(a, b, c *implicit.Node) (*Color, error)) {
	e.Register(name, func(c *script.Call, args []script.Value) (script.Value, error) {
		if err := script.ArgCount(c, args, 4); err != nil {
			return nil, err
		}
		ts := make([]*implicit.Node, 4)
		for i := range args {
			t, err := treeArg(c, args, i)
			if err != nil {
				return nil, err
			}
			ts[i] = t
		}
		col, err := color(ts[1], ts[2], ts[3])
		if err != nil {
			return nil, c.Errorf("%v", err)
		}
		return &Drawable{Tree: ts[0], Color: col}, nil
	})
}
