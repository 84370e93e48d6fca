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
)

// Mode2 is a 2D rendering mode.
type Mode2 int32

const (
	// Bitfield draws the inside of each shape in its color.
	Bitfield Mode2 = iota

	// SdfApprox draws the distance field, filling tiles
	// that are entirely inside or outside without evaluating
	// every pixel.
	SdfApprox

	// SdfExact draws the distance field, evaluating every pixel.
	SdfExact

	// Debug draws the tile culling status of every pixel.
	Debug
)

func (m Mode2) String() string {
	switch m {
	case Bitfield:
		return "bitfield"
	case SdfApprox:
		return "sdf-approx"
	case SdfExact:
		return "sdf-exact"
	case Debug:
		return "debug"
	}
	return "unknown"
}

// Status is the culling status of a pixel.
type Status uint8

const (
	// Evaluated pixels were evaluated individually.
	Evaluated Status = iota

	// FilledInside pixels are in a tile proven to be inside.
	FilledInside

	// FilledOutside pixels are in a tile proven to be outside.
	FilledOutside
)

// Field is a rendered 2D distance field for one shape.
type Field struct {
	Width, Height int

	// Dist is the signed distance at each pixel, row-major.
	Dist []float32

	// Color is the color at each inside pixel, or nil for an
	// uncolored shape.
	Color []color.RGBA

	Status []Status
}

func newField(w, h int, colored bool) *Field {
	f := &Field{Width: w, Height: h, Dist: make([]float32, w*h), Status: make([]Status, w*h)}
	if colored {
		f.Color = make([]color.RGBA, w*h)
	}
	return f
}

// tileInterval returns the model-space intervals of a tile.
func (v View2) tileInterval(r image.Rectangle) (x, y implicit.Interval) {
	k := 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
	x = scaled(v.Center.X-float32(v.Width)/2*k, k, implicit.Iv(float32(r.Min.X), float32(r.Max.X)))
	y = scaled(v.Center.Y+float32(v.Height)/2*k, -k, implicit.Iv(float32(r.Min.Y), float32(r.Max.Y)))
	return
}

// renderField renders the distance field of one shape.
func renderField(c *Cancel, sh shape, v View2, exact bool, o Options) (*Field, error) {
	f := newField(v.Width, v.Height, sh.color != nil)
	k := 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
	err := o.forTiles(c, v.Width, v.Height, func(r image.Rectangle) error {
		ev := newEvaluators(sh.tape)
		ce := sh.color.evaluator()
		ix, iy := v.tileInterval(r)
		iv := ev.interval.Eval(ix, iy, implicit.Iv(0, 0))
		fill := !exact && !iv.HasNaN() && (iv.Hi < 0 || iv.Lo > 0)
		for py := r.Min.Y; py < r.Max.Y; py++ {
			my := v.Center.Y + (float32(v.Height)/2-float32(py)-0.5)*k
			for px := r.Min.X; px < r.Max.X; px++ {
				mx := v.Center.X + (float32(px)+0.5-float32(v.Width)/2)*k
				i := py*v.Width + px
				var d float32
				switch {
				case fill && iv.Hi < 0:
					d = iv.Hi
					f.Status[i] = FilledInside
				case fill:
					d = iv.Lo
					f.Status[i] = FilledOutside
				default:
					d = ev.point.Eval(mx, my, 0)
				}
				f.Dist[i] = d
				if ce != nil && d < 0 {
					f.Color[i] = ce.eval(mx, my, 0)
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

// Fields renders the distance field of every drawable in a scene.
func Fields(c *Cancel, s *world.Scene, v View2, exact bool, o Options) ([]*Field, error) {
	var fs []*Field
	for _, sh := range compile(s) {
		f, err := renderField(c, sh, v, exact, o)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// Composite draws fields back to front: at each pixel the last
// field that is inside with a visible color wins, and pixels
// inside no field are transparent black.
func Composite(fs []*Field, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range w * h {
		var c color.RGBA
		for _, f := range fs {
			if f.Dist[i] >= 0 {
				continue
			}
			fc := defaultColor
			if f.Color != nil {
				fc = f.Color[i]
			}
			if fc.A != 0 {
				c = fc
			}
		}
		img.SetRGBA(i%w, i/w, c)
	}
	return img
}

// Render2 renders a scene in 2D.
func Render2(c *Cancel, s *world.Scene, v View2, mode Mode2, o Options) (*image.RGBA, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(0, v.Width), max(0, v.Height))), nil
	}
	fs, err := Fields(c, s, v, mode == SdfExact, o)
	if err != nil {
		return nil, err
	}
	if mode == Bitfield {
		return Composite(fs, v.Width, v.Height), nil
	}
	pixel := 2 * v.Scale / float32(max(1, min(v.Width, v.Height)))
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	for i := range v.Width * v.Height {
		d := math32.Inf(1)
		st := FilledOutside
		for _, f := range fs {
			if f.Dist[i] < d {
				d, st = f.Dist[i], f.Status[i]
			}
		}
		var col color.RGBA
		if mode == Debug {
			col = debugColor(d, st)
		} else {
			col = sdfColor(d, pixel)
		}
		img.SetRGBA(i%v.Width, i/v.Width, col)
	}
	return img, nil
}

// sdfColor shades a signed distance with contour bands
// and a bright edge line.
func sdfColor(d, pixel float32) color.RGBA {
	if math32.IsNaN(d) {
		return color.RGBA{255, 0, 255, 255}
	}
	if math32.Abs(d) < pixel {
		return color.RGBA{255, 255, 255, 255}
	}
	base := outsideColor
	if d < 0 {
		base = insideColor
	}
	a := math32.Abs(d)
	k := (1 - 0.6*math32.Exp(-4*a)) * (0.8 + 0.2*math32.Cos(a*math32.Pi*20))
	return scaleRGB(base, k)
}

func debugColor(d float32, st Status) color.RGBA {
	switch st {
	case FilledInside:
		return color.RGBA{0, 96, 0, 255}
	case FilledOutside:
		return color.RGBA{96, 0, 0, 255}
	}
	if d < 0 {
		return color.RGBA{0, 255, 0, 255}
	}
	return color.RGBA{255, 64, 64, 255}
}
