// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"bytes"
	"fmt"
	"io"

	"cogentcore.org/core/math32"
	"github.com/hschendel/stl"
)

// STLHeader is written into the 80 byte header of binary STL files.
const STLHeader = "halfspace binary STL"

func vec3(v math32.Vector3) stl.Vec3 {
	return stl.Vec3{v.X, v.Y, v.Z}
}

// Solid returns the mesh as an STL solid with normals computed
// from the winding of each triangle.
func (m *Mesh) Solid() *stl.Solid {
	header := make([]byte, 80)
	copy(header, STLHeader)
	s := &stl.Solid{BinaryHeader: header, Triangles: make([]stl.Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		s.Triangles[i] = stl.Triangle{
			Normal:   vec3(t.Normal()),
			Vertices: [3]stl.Vec3{vec3(t[0]), vec3(t[1]), vec3(t[2])},
		}
	}
	return s
}

// WriteSTL writes the mesh as binary STL.
func WriteSTL(w io.Writer, m *Mesh) error {
	return m.Solid().WriteAll(w)
}

// ReadSTL reads an STL file, binary or ASCII.
func ReadSTL(r io.Reader) (*Mesh, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s, err := stl.ReadAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("reading STL: %w", err)
	}
	m := &Mesh{Triangles: make([]Triangle, len(s.Triangles))}
	for i, t := range s.Triangles {
		for j, v := range t.Vertices {
			m.Triangles[i][j] = math32.Vec3(v[0], v[1], v[2])
		}
	}
	return m, nil
}
