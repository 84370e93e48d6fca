// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"cogentcore.org/core/math32"
)

// View2 is a 2D camera. Scale is the model-space distance from the
// center to the edge of the shorter image side.
type View2 struct {
	Center math32.Vector2
	Scale  float32
	Width  int
	Height int
}

// NewView2 returns a [View2] centered at the origin showing
// [-1, 1] along the shorter side.
func NewView2(width, height int) View2 {
	return View2{Scale: 1, Width: width, Height: height}
}

// Transform returns the matrix mapping pixel coordinates, with the
// origin at the top left and y down, to model coordinates.
func (v View2) Transform() math32.Matrix2 {
	k := 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
	return math32.Translate2D(v.Center.X, v.Center.Y).
		Mul(math32.Scale2D(k, -k)).
		Mul(math32.Translate2D(-float32(v.Width)/2, -float32(v.Height)/2))
}

// Model returns the model position of the center of a pixel.
func (v View2) Model(px, py int) math32.Vector2 {
	return v.Transform().MulVector2AsPoint(math32.Vec2(float32(px)+0.5, float32(py)+0.5))
}

// WithSize returns the view with the given image size.
func (v View2) WithSize(w, h int) View2 {
	v.Width, v.Height = w, h
	return v
}

// Pan moves the center by a pixel offset.
func (v View2) Pan(dx, dy float32) View2 {
	k := 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
	v.Center.X -= dx * k
	v.Center.Y += dy * k
	return v
}

// Zoom scales the view by the given factor about the center.
func (v View2) Zoom(f float32) View2 {
	if f > 0 {
		v.Scale *= f
	}
	return v
}

// View3 is an orthographic 3D camera looking down the -Z axis of a
// frame rotated by Yaw about Z and then Pitch about X. Depth is the
// number of voxels along the view direction.
type View3 struct {
	Center math32.Vector3
	Scale  float32
	Pitch  float32
	Yaw    float32
	Width  int
	Height int
	Depth  int
}

// NewView3 returns a [View3] centered at the origin showing [-1, 1]
// along the shorter side, with a cube of voxels.
func NewView3(width, height int) View3 {
	return View3{Scale: 1, Width: width, Height: height, Depth: max(width, height)}
}

// WithSize returns the view with the given image size,
// scaling the depth with the shorter side.
func (v View3) WithSize(w, h int) View3 {
	old := max(1, min(v.Width, v.Height))
	v.Depth = max(1, v.Depth*max(1, min(w, h))/old)
	v.Width, v.Height = w, h
	return v
}

// basis returns the model-space directions of the image x, image y
// (up) and view (toward the viewer) axes.
func (v View3) basis() (u, w, n math32.Vector3) {
	sy, cy := math32.Sincos(v.Yaw)
	sp, cp := math32.Sincos(v.Pitch)
	u = math32.Vec3(cy, sy, 0)
	w = math32.Vec3(-sy*cp, cy*cp, sp)
	n = math32.Vec3(sy*sp, -cy*sp, cp)
	return
}

// voxel returns the model-space size of one voxel.
func (v View3) voxel() float32 {
	return 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
}

// Model returns the model position of the center of a voxel;
// d counts from the back (0) to the front (Depth-1).
func (v View3) Model(px, py, d int) math32.Vector3 {
	u, w, n := v.basis()
	k := v.voxel()
	a := (float32(px) + 0.5 - float32(v.Width)/2) * k
	b := (float32(v.Height)/2 - float32(py) - 0.5) * k
	c := (float32(d) + 0.5 - float32(v.Depth)/2) * k
	return v.Center.Add(u.MulScalar(a)).Add(w.MulScalar(b)).Add(n.MulScalar(c))
}
