// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export turns implicit trees into STL meshes and scenes
// into PNG images.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"time"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/implicit/shapes"
	"cogentcore.org/halfspace/mesh"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/world"
)

// MaxDepth is the octree depth at which a mesh export is rejected.
const MaxDepth = 20

// ErrorKinds are the kinds of [Error].
type ErrorKinds int32

const (
	InvalidBounds ErrorKinds = iota
	BoundsAreTooSmall
	InvalidMinFeature
	MinFeatureIsTooSmall
	InvalidResolution
	InvalidWidth
	InvalidHeight
	Cancelled
)

var errorKindNames = [...]string{
	"invalid bounds", "bounds are too small", "invalid minimum feature",
	"minimum feature is too small", "invalid resolution", "invalid width",
	"invalid height", "cancelled",
}

func (k ErrorKinds) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKinds(%d)", k)
	}
	return errorKindNames[k]
}

// Error is an export failure. Value holds the offending number
// for the kinds that have one.
type Error struct {
	Kind  ErrorKinds
	Value float32
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidMinFeature, MinFeatureIsTooSmall, InvalidResolution:
		return fmt.Sprintf("%v: %g", e.Kind, e.Value)
	case InvalidWidth, InvalidHeight:
		return fmt.Sprintf("%v: %d", e.Kind, int(e.Value))
	}
	return e.Kind.String()
}

// Is matches errors of the same kind, so callers can compare against
// a zero-valued &Error{Kind: k}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Unwrap makes a cancelled export match [render.ErrCancelled].
func (e *Error) Unwrap() error {
	if e.Kind == Cancelled {
		return render.ErrCancelled
	}
	return nil
}

// IsCancelled returns whether err is a cancelled export.
func IsCancelled(err error) bool {
	return errors.Is(err, render.ErrCancelled)
}

func cancelled(err error) error {
	if errors.Is(err, render.ErrCancelled) {
		return &Error{Kind: Cancelled}
	}
	return err
}

// MeshSettings computes the octree parameters for a bounding box
// and minimum feature size. The feature size is checked first, so
// that unbounded boxes report [MinFeatureIsTooSmall].
func MeshSettings(lower, upper math32.Vector3, feature float32) (mesh.Settings, error) {
	center := lower.Add(upper).DivScalar(2)
	half := upper.Sub(lower).DivScalar(2)
	scale := 1.01 * max(math32.Abs(half.X), math32.Abs(half.Y), math32.Abs(half.Z))
	if math32.IsNaN(feature) {
		return mesh.Settings{}, &Error{Kind: InvalidMinFeature, Value: feature}
	}
	depth := 0
	for scale*2/float32(int64(1)<<depth) >= feature {
		depth++
		if depth >= MaxDepth {
			return mesh.Settings{}, &Error{Kind: MinFeatureIsTooSmall, Value: feature}
		}
	}
	if math32.IsNaN(center.X) || math32.IsNaN(center.Y) || math32.IsNaN(center.Z) {
		return mesh.Settings{}, &Error{Kind: InvalidBounds}
	}
	if math32.IsNaN(scale) || scale < 1e-8 {
		return mesh.Settings{}, &Error{Kind: BoundsAreTooSmall}
	}
	return mesh.Settings{Center: center, Scale: scale, Depth: depth}, nil
}

// Mesh meshes the part of t inside the given box.
func Mesh(c *render.Cancel, t *implicit.Node, lower, upper math32.Vector3, feature float32, workers int) (*mesh.Mesh, error) {
	s, err := MeshSettings(lower, upper, feature)
	if err != nil {
		return nil, err
	}
	s.Workers = workers
	start := time.Now()
	t = t.Max(shapes.Box{Lower: lower, Upper: upper}.Tree())
	m, err := mesh.Build(c, t, s)
	if err != nil {
		return nil, cancelled(err)
	}
	slog.Debug("exported mesh", "depth", s.Depth, "triangles", len(m.Triangles), "elapsed", time.Since(start))
	return m, nil
}

// WriteMesh meshes t and writes it as binary STL.
func WriteMesh(w io.Writer, c *render.Cancel, t *implicit.Node, lower, upper math32.Vector3, feature float32, workers int) error {
	m, err := Mesh(c, t, lower, upper, feature, workers)
	if err != nil {
		return err
	}
	return mesh.WriteSTL(w, m)
}

// ImageView returns the camera for an image of the given 2D box
// at the given resolution in pixels per unit.
func ImageView(lower, upper math32.Vector2, resolution float32) (render.View2, error) {
	if !(resolution > 0) || math32.IsInf(resolution, 0) {
		return render.View2{}, &Error{Kind: InvalidResolution, Value: resolution}
	}
	w := math32.Round((upper.X - lower.X) * resolution)
	if !(w > 0) || w > 1<<16 {
		return render.View2{}, &Error{Kind: InvalidWidth, Value: w}
	}
	h := math32.Round((upper.Y - lower.Y) * resolution)
	if !(h > 0) || h > 1<<16 {
		return render.View2{}, &Error{Kind: InvalidHeight, Value: h}
	}
	v := render.NewView2(int(w), int(h))
	v.Center = lower.Add(upper).DivScalar(2)
	v.Scale = float32(min(v.Width, v.Height)) / (2 * resolution)
	return v, nil
}

// Image renders a scene over a 2D box, compositing its drawables
// back to front.
func Image(c *render.Cancel, s *world.Scene, lower, upper math32.Vector2, resolution float32, o render.Options) (*image.RGBA, error) {
	v, err := ImageView(lower, upper, resolution)
	if err != nil {
		return nil, err
	}
	fs, err := render.Fields(c, s, v, true, o)
	if err != nil {
		return nil, cancelled(err)
	}
	return render.Composite(fs, v.Width, v.Height), nil
}

// WriteImage renders a scene and writes it as PNG.
func WriteImage(w io.Writer, c *render.Cancel, s *world.Scene, lower, upper math32.Vector2, resolution float32, o render.Options) error {
	img, err := Image(c, s, lower, upper, resolution, o)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Request runs an export requested by a block script, writing the
// result to w.
func Request(w io.Writer, c *render.Cancel, r *world.ExportRequest, o render.Options) error {
	switch r.Kind {
	case world.MeshExport:
		return WriteMesh(w, c, r.Tree, r.Lower, r.Upper, r.Feature, o.Workers)
	case world.ImageExport:
		return WriteImage(w, c, r.Scene, math32.Vec2(r.Lower.X, r.Lower.Y), math32.Vec2(r.Upper.X, r.Upper.Y), r.Resolution, o)
	}
	return fmt.Errorf("unknown export kind %d", r.Kind)
}
