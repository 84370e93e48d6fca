// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shapes provides parametric implicit shapes and transforms.
//
// Every shape is a plain struct whose exported fields are its
// parameters. Fields carry a `desc:` tag describing the parameter and
// may carry a `default:` tag holding a script literal for its initial
// value, which is used when generating script templates.
package shapes

import (
	"fmt"
	"reflect"
	"strings"

	"cogentcore.org/core/base/reflectx"
	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
)

// Shape is a parametric shape that can build its implicit tree.
type Shape interface {
	Tree() *implicit.Node
}

// All contains one zero value of every shape type, in display order.
var All = []Shape{
	Circle{}, Sphere{}, Rectangle{}, Box{},
	Union{}, Intersection{}, Difference{}, Inverse{}, Blend{},
	Move{}, Scale{}, ScaleUniform{}, Reflect{}, RotateZ{},
	ExtrudeZ{}, Offset{}, Halfspace{},
}

// Types returns the non-pointer struct types of [All].
func Types() []reflect.Type {
	ts := make([]reflect.Type, len(All))
	for i, s := range All {
		ts[i] = reflectx.NonPointerType(reflect.TypeOf(s))
	}
	return ts
}

// Plane is a plane through the point Axis*Offset with normal Axis.
type Plane struct {
	Axis   math32.Vector3
	Offset float32
}

// ParsePlane returns the plane named by the given axis pair, one of
// xy, yz or zx (or yx, zy, xz), through the origin.
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "xy", "yx":
		return Plane{Axis: math32.Vec3(0, 0, 1)}, nil
	case "yz", "zy":
		return Plane{Axis: math32.Vec3(1, 0, 0)}, nil
	case "zx", "xz":
		return Plane{Axis: math32.Vec3(0, 1, 0)}, nil
	}
	return Plane{}, fmt.Errorf("invalid plane %q; expected xy, yz or zx", s)
}

func (p Plane) String() string {
	return fmt.Sprintf("plane(axis: [%g, %g, %g], offset: %g)", p.Axis.X, p.Axis.Y, p.Axis.Z, p.Offset)
}

func c(v float32) *implicit.Node { return implicit.Const(v) }

// Circle is a 2D circle.
type Circle struct {
	Center math32.Vector2 `desc:"center of the circle"`
	Radius float32        `desc:"radius of the circle" default:"1"`
}

func (s Circle) Tree() *implicit.Node {
	dx := implicit.X().Sub(c(s.Center.X))
	dy := implicit.Y().Sub(c(s.Center.Y))
	return dx.Square().Add(dy.Square()).Sqrt().Sub(c(s.Radius))
}

// Sphere is a 3D sphere.
type Sphere struct {
	Center math32.Vector3 `desc:"center of the sphere"`
	Radius float32        `desc:"radius of the sphere" default:"1"`
}

func (s Sphere) Tree() *implicit.Node {
	dx := implicit.X().Sub(c(s.Center.X))
	dy := implicit.Y().Sub(c(s.Center.Y))
	dz := implicit.Z().Sub(c(s.Center.Z))
	return dx.Square().Add(dy.Square()).Add(dz.Square()).Sqrt().Sub(c(s.Radius))
}

// Rectangle is an axis-aligned 2D rectangle.
type Rectangle struct {
	Lower math32.Vector2 `desc:"lower corner of the rectangle"`
	Upper math32.Vector2 `desc:"upper corner of the rectangle" default:"[1, 1]"`
}

func (s Rectangle) Tree() *implicit.Node {
	x, y := implicit.X(), implicit.Y()
	return c(s.Lower.X).Sub(x).Max(x.Sub(c(s.Upper.X))).
		Max(c(s.Lower.Y).Sub(y).Max(y.Sub(c(s.Upper.Y))))
}

// Box is an axis-aligned 3D box.
type Box struct {
	Lower math32.Vector3 `desc:"lower corner of the box"`
	Upper math32.Vector3 `desc:"upper corner of the box" default:"[1, 1, 1]"`
}

func (s Box) Tree() *implicit.Node {
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	return c(s.Lower.X).Sub(x).Max(x.Sub(c(s.Upper.X))).
		Max(c(s.Lower.Y).Sub(y).Max(y.Sub(c(s.Upper.Y)))).
		Max(c(s.Lower.Z).Sub(z).Max(z.Sub(c(s.Upper.Z))))
}

// Union is the union of a list of shapes.
type Union struct {
	Input []*implicit.Node `desc:"list of shapes to merge"`
}

func (s Union) Tree() *implicit.Node {
	return fold(s.Input, (*implicit.Node).Min, math32.Inf(1))
}

// Intersection is the intersection of a list of shapes.
type Intersection struct {
	Input []*implicit.Node `desc:"list of shapes to intersect"`
}

func (s Intersection) Tree() *implicit.Node {
	return fold(s.Input, (*implicit.Node).Max, math32.Inf(-1))
}

// fold reduces the trees pairwise so that the result is balanced.
func fold(ts []*implicit.Node, f func(a, b *implicit.Node) *implicit.Node, empty float32) *implicit.Node {
	switch len(ts) {
	case 0:
		return c(empty)
	case 1:
		return ts[0]
	}
	m := len(ts) / 2
	return f(fold(ts[:m], f, empty), fold(ts[m:], f, empty))
}

// Difference removes one shape from another.
type Difference struct {
	Shape  *implicit.Node `desc:"original shape"`
	Cutout *implicit.Node `desc:"shape to subtract"`
}

func (s Difference) Tree() *implicit.Node {
	return s.Shape.Max(s.Cutout.Neg())
}

// Inverse swaps the inside and outside of a shape.
type Inverse struct {
	Shape *implicit.Node `desc:"shape to invert"`
}

func (s Inverse) Tree() *implicit.Node {
	return s.Shape.Neg()
}

// Blend is a smooth union of two shapes.
type Blend struct {
	A      *implicit.Node `desc:"first shape"`
	B      *implicit.Node `desc:"second shape"`
	Radius float32        `desc:"blend radius" default:"0.1"`
}

func (s Blend) Tree() *implicit.Node {
	if s.Radius <= 0 {
		return s.A.Min(s.B)
	}
	r := c(s.Radius)
	h := r.Sub(s.A.Sub(s.B).Abs()).Max(c(0)).Div(r)
	return s.A.Min(s.B).Sub(h.Square().Mul(c(s.Radius / 4)))
}

// Move translates a shape.
type Move struct {
	Shape  *implicit.Node `desc:"shape to move"`
	Offset math32.Vector3 `desc:"position offset"`
}

func (s Move) Tree() *implicit.Node {
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	return s.Shape.Remap(x.Sub(c(s.Offset.X)), y.Sub(c(s.Offset.Y)), z.Sub(c(s.Offset.Z)))
}

// Scale scales a shape independently along each axis.
type Scale struct {
	Shape *implicit.Node `desc:"shape to scale"`
	Scale math32.Vector3 `desc:"scale to apply on each axis" default:"[1, 1, 1]"`
}

func (s Scale) Tree() *implicit.Node {
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	return s.Shape.Remap(x.Div(c(s.Scale.X)), y.Div(c(s.Scale.Y)), z.Div(c(s.Scale.Z)))
}

// ScaleUniform scales a shape equally along every axis,
// preserving distances.
type ScaleUniform struct {
	Shape *implicit.Node `desc:"shape to scale"`
	Scale float32        `desc:"scale to apply" default:"1"`
}

func (s ScaleUniform) Tree() *implicit.Node {
	k := c(s.Scale)
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	return s.Shape.Remap(x.Div(k), y.Div(k), z.Div(k)).Mul(k)
}

// Reflect mirrors a shape across a plane.
type Reflect struct {
	Shape *implicit.Node `desc:"shape to reflect"`
	Plane Plane          `desc:"plane about which to reflect the shape"`
}

func (s Reflect) Tree() *implicit.Node {
	a := s.Plane.Axis
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	d := x.Mul(c(a.X)).Add(y.Mul(c(a.Y))).Add(z.Mul(c(a.Z))).Sub(c(s.Plane.Offset))
	d2 := d.Mul(c(2))
	return s.Shape.Remap(
		x.Sub(d2.Mul(c(a.X))),
		y.Sub(d2.Mul(c(a.Y))),
		z.Sub(d2.Mul(c(a.Z))))
}

// RotateZ rotates a shape about the Z axis.
type RotateZ struct {
	Shape  *implicit.Node `desc:"shape to rotate"`
	Angle  float32        `desc:"rotation angle in radians"`
	Center math32.Vector2 `desc:"center of rotation"`
}

func (s RotateZ) Tree() *implicit.Node {
	sin, cos := math32.Sincos(s.Angle)
	dx := implicit.X().Sub(c(s.Center.X))
	dy := implicit.Y().Sub(c(s.Center.Y))
	x := c(s.Center.X).Add(dx.Mul(c(cos))).Add(dy.Mul(c(sin)))
	y := c(s.Center.Y).Sub(dx.Mul(c(sin))).Add(dy.Mul(c(cos)))
	return s.Shape.Remap(x, y, implicit.Z())
}

// ExtrudeZ extrudes a 2D shape along the Z axis.
type ExtrudeZ struct {
	Shape *implicit.Node `desc:"shape to extrude"`
	Lower float32        `desc:"lower bound of the extrusion"`
	Upper float32        `desc:"upper bound of the extrusion" default:"1"`
}

func (s ExtrudeZ) Tree() *implicit.Node {
	z := implicit.Z()
	return s.Shape.Max(c(s.Lower).Sub(z).Max(z.Sub(c(s.Upper))))
}

// Offset grows a shape by a distance, or shrinks it if negative.
type Offset struct {
	Shape    *implicit.Node `desc:"shape to offset"`
	Distance float32        `desc:"offset distance"`
}

func (s Offset) Tree() *implicit.Node {
	return s.Shape.Sub(c(s.Distance))
}

// Halfspace is the region where a*x + b*y + c*z < d
// for the plane equation [a, b, c, d].
type Halfspace struct {
	Plane math32.Vector4 `desc:"plane equation coefficients [a, b, c, d]" default:"[1, 0, 0, 0]"`
}

func (s Halfspace) Tree() *implicit.Node {
	x, y, z := implicit.X(), implicit.Y(), implicit.Z()
	return x.Mul(c(s.Plane.X)).Add(y.Mul(c(s.Plane.Y))).Add(z.Mul(c(s.Plane.Z))).Sub(c(s.Plane.W))
}
