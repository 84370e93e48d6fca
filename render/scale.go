// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"

	"golang.org/x/image/draw"
)

// LevelSize returns the image size at a render level:
// level L renders at size / 2^L, and at least 1 pixel.
func LevelSize(w, h, level int) (int, int) {
	return max(1, w>>level), max(1, h>>level)
}

// Upscale returns the image scaled to the given size with
// nearest-neighbor sampling, so that coarse levels stay crisp.
// The image is returned as is if it already has that size.
func Upscale(img *image.RGBA, w, h int) *image.RGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
