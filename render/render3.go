// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"image/color"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/world"
	"github.com/anthonynsimon/bild/blur"
)

// Mode3 is a 3D rendering mode.
type Mode3 int32

const (
	// Heightmap draws depth as grayscale.
	Heightmap Mode3 = iota

	// Shaded draws denoised normals lit with ambient occlusion.
	Shaded
)

func (m Mode3) String() string {
	if m == Shaded {
		return "shaded"
	}
	return "heightmap"
}

// Frame is a rendered 3D depth buffer.
type Frame struct {
	Width, Height, Depth int

	// Hits is the depth of the surface at each pixel, counted in
	// voxels from the back, or -1 where nothing was hit.
	Hits []int32

	// Normal is the view-space surface normal at each hit.
	Normal []math32.Vector3

	// Color is the surface color at each hit, or nil.
	Color []color.RGBA
}

func newFrame(w, h, d int, normals, colored bool) *Frame {
	f := &Frame{Width: w, Height: h, Depth: d, Hits: make([]int32, w*h)}
	for i := range f.Hits {
		f.Hits[i] = -1
	}
	if normals {
		f.Normal = make([]math32.Vector3, w*h)
	}
	if colored {
		f.Color = make([]color.RGBA, w*h)
	}
	return f
}

// boxInterval returns the model-space intervals of a box of voxels.
func (v View3) boxInterval(r image.Rectangle, d0, d1 int) (ix, iy, iz implicit.Interval) {
	u, w, n := v.basis()
	k := v.voxel()
	a := scaled(-float32(v.Width)/2*k, k, implicit.Iv(float32(r.Min.X), float32(r.Max.X)))
	b := scaled(float32(v.Height)/2*k, -k, implicit.Iv(float32(r.Min.Y), float32(r.Max.Y)))
	c := scaled(-float32(v.Depth)/2*k, k, implicit.Iv(float32(d0), float32(d1)))
	axis := func(c0, cu, cw, cn float32) implicit.Interval {
		return add(add(scaled(c0, cu, a), scaled(0, cw, b)), scaled(0, cn, c))
	}
	ix = axis(v.Center.X, u.X, w.X, n.X)
	iy = axis(v.Center.Y, u.Y, w.Y, n.Y)
	iz = axis(v.Center.Z, u.Z, w.Z, n.Z)
	return
}

// renderDepth renders the depth buffer of one shape, marching each
// column from the front in slabs of tile depth and skipping slabs
// that are proven to be outside.
func renderDepth(c *Cancel, sh shape, v View3, normals bool, o Options) (*Frame, error) {
	f := newFrame(v.Width, v.Height, v.Depth, normals, sh.color != nil)
	u, w, n := v.basis()
	ts := o.tileSize()
	err := o.forTiles(c, v.Width, v.Height, func(r image.Rectangle) error {
		ev := newEvaluators(sh.tape)
		ce := sh.color.evaluator()
		remaining := r.Dx() * r.Dy()
		for d1 := v.Depth; d1 > 0 && remaining > 0; d1 -= ts {
			if c.IsCancelled() {
				return ErrCancelled
			}
			d0 := max(0, d1-ts)
			iv := ev.interval.Eval(v.boxInterval(r, d0, d1))
			if !iv.HasNaN() && iv.Lo > 0 {
				continue
			}
			for py := r.Min.Y; py < r.Max.Y; py++ {
				for px := r.Min.X; px < r.Max.X; px++ {
					i := py*v.Width + px
					if f.Hits[i] >= 0 {
						continue
					}
					for d := d1 - 1; d >= d0; d-- {
						p := v.Model(px, py, d)
						if (!iv.HasNaN() && iv.Hi < 0) || ev.point.Eval(p.X, p.Y, p.Z) < 0 {
							f.Hits[i] = int32(d)
							remaining--
							if normals {
								g := ev.grad.Eval(p.X, p.Y, p.Z)
								f.Normal[i] = viewNormal(g, u, w, n)
							}
							if ce != nil {
								f.Color[i] = ce.eval(p.X, p.Y, p.Z)
							}
							break
						}
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// viewNormal converts a model-space gradient to a unit view-space normal.
func viewNormal(g implicit.Grad, u, w, n math32.Vector3) math32.Vector3 {
	m := math32.Vec3(g.DX, g.DY, g.DZ)
	vn := math32.Vec3(m.Dot(u), m.Dot(w), m.Dot(n))
	l := vn.Length()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return math32.Vec3(0, 0, 1)
	}
	return vn.DivScalar(l)
}

// merge keeps the front-most hit of every frame.
func merge(fs []*Frame) *Frame {
	out := fs[0]
	for _, f := range fs[1:] {
		for i, d := range f.Hits {
			if d > out.Hits[i] {
				out.Hits[i] = d
				if out.Normal != nil {
					out.Normal[i] = f.Normal[i]
				}
				if f.Color != nil {
					if out.Color == nil {
						out.Color = make([]color.RGBA, len(out.Hits))
						for j := range out.Color {
							out.Color[j] = albedo
						}
					}
					out.Color[i] = f.Color[i]
				} else if out.Color != nil {
					out.Color[i] = albedo
				}
			}
		}
	}
	return out
}

// Frames renders the depth buffer of every drawable in a scene
// and merges them.
func Frames(c *Cancel, s *world.Scene, v View3, normals bool, o Options) (*Frame, error) {
	var fs []*Frame
	for _, sh := range compile(s) {
		f, err := renderDepth(c, sh, v, normals, o)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return merge(fs), nil
}

// Render3 renders a scene in 3D.
func Render3(c *Cancel, s *world.Scene, v View3, mode Mode3, o Options) (*image.RGBA, error) {
	if v.Width <= 0 || v.Height <= 0 || v.Depth <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(0, v.Width), max(0, v.Height))), nil
	}
	f, err := Frames(c, s, v, mode == Shaded, o)
	if err != nil {
		return nil, err
	}
	if mode == Heightmap {
		return heightmap(f), nil
	}
	f.denoise()
	ao := f.ssao()
	if err := c.Err(); err != nil {
		return nil, err
	}
	return f.shade(ao), nil
}

func heightmap(f *Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, d := range f.Hits {
		if d < 0 {
			continue
		}
		g := uint8(255 * (int(d) + 1) / f.Depth)
		img.SetRGBA(i%f.Width, i/f.Width, color.RGBA{g, g, g, 255})
	}
	return img
}

// denoise replaces every normal by the average of the normals of
// its 3x3 neighborhood at a similar depth.
func (f *Frame) denoise() {
	out := make([]math32.Vector3, len(f.Normal))
	for y := range f.Height {
		for x := range f.Width {
			i := y*f.Width + x
			d := f.Hits[i]
			if d < 0 {
				continue
			}
			var sum math32.Vector3
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= f.Width || ny >= f.Height {
						continue
					}
					j := ny*f.Width + nx
					if f.Hits[j] < 0 || abs32(f.Hits[j]-d) > 2 {
						continue
					}
					sum = sum.Add(f.Normal[j])
				}
			}
			if l := sum.Length(); l > 0 {
				out[i] = sum.DivScalar(l)
			} else {
				out[i] = f.Normal[i]
			}
		}
	}
	f.Normal = out
}

func abs32(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}

var ssaoDirs = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// ssao returns the screen-space ambient occlusion of the depth
// buffer, blurred to hide the sampling pattern.
func (f *Frame) ssao() *image.RGBA {
	g := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	radius := max(2, min(f.Width, f.Height)/64)
	for y := range f.Height {
		for x := range f.Width {
			i := y*f.Width + x
			d := f.Hits[i]
			if d < 0 {
				g.Pix[i] = 255
				continue
			}
			occluded, total := 0, 0
			for _, r := range []int{radius, 2 * radius, 4 * radius} {
				for _, dir := range ssaoDirs {
					nx, ny := x+dir[0]*r, y+dir[1]*r
					if nx < 0 || ny < 0 || nx >= f.Width || ny >= f.Height {
						continue
					}
					total++
					if f.Hits[ny*f.Width+nx] > d+int32(r/2) {
						occluded++
					}
				}
			}
			ao := float32(1)
			if total > 0 {
				ao = 1 - 0.7*float32(occluded)/float32(total)
			}
			g.Pix[i] = uint8(255 * ao)
		}
	}
	return blur.Gaussian(g, float64(radius))
}

var light = math32.Vec3(-0.3, 0.5, 1).Normal()

func (f *Frame) shade(ao *image.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, d := range f.Hits {
		if d < 0 {
			continue
		}
		x, y := i%f.Width, i/f.Width
		a := float32(ao.RGBAAt(x, y).R) / 255
		diffuse := max(0, f.Normal[i].Dot(light))
		base := albedo
		if f.Color != nil {
			base = f.Color[i]
			if base.A == 0 {
				continue
			}
		}
		img.SetRGBA(x, y, scaleRGB(base, (0.25+0.75*diffuse)*a))
	}
	return img
}
