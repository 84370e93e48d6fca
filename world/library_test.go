// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"strings"
	"testing"

	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/implicit/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(t *testing.T, name string) ShapeDefinition {
	t.Helper()
	for _, d := range Library() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no shape %s", name)
	return ShapeDefinition{}
}

func TestLibrary(t *testing.T) {
	lib := Library()
	require.Len(t, lib, len(shapes.All)+3)
	assert.Equal(t, "Script", lib[0].Name)
	assert.Equal(t, "Value", lib[1].Name)
	assert.Equal(t, "Circle", lib[2].Name)
	assert.Equal(t, "Export (mesh)", lib[len(lib)-1].Name)

	c := definition(t, "Circle")
	assert.True(t, strings.HasPrefix(c.Script, "// auto-generated script for Circle\n"))
	assert.Contains(t, c.Script, "// radius of the circle\nlet radius = input(\"radius\");\n")
	assert.Contains(t, c.Script, "let out = circle(#{ center: center, radius: radius });\n")
	assert.True(t, strings.HasSuffix(c.Script, `output("out", out);`))
	assert.Equal(t, []ShapeInput{
		{Name: "center", Type: Vec2Input, Text: "[0, 0]"},
		{Name: "radius", Type: ScalarInput, Text: "1"},
	}, c.Inputs)

	r := definition(t, "Reflect")
	assert.Equal(t, PlaneInput, r.Inputs[1].Type)
	assert.Equal(t, `plane("yz")`, r.Inputs[1].Text)
	assert.Equal(t, "[]", definition(t, "Union").Inputs[0].Text)
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "Circle", shapeTitle("Circle"))
	assert.Equal(t, "Scale (uniform)", shapeTitle("ScaleUniform"))
	assert.Equal(t, "Rotate (Z)", shapeTitle("RotateZ"))
	assert.Equal(t, "Rotate (Z)", definition(t, "RotateZ").Title)

	d := definition(t, "Export (mesh)")
	assert.Equal(t, "export_mesh", d.BlockName())
	d = definition(t, "ScaleUniform")
	assert.Equal(t, "scale_uniform", d.BlockName())
}

func TestLibraryTemplatesEvaluate(t *testing.T) {
	w := New()
	for _, d := range Library() {
		w.NewBlockFrom(d)
	}
	rebuilt(w)
	for _, i := range w.Order {
		b := w.Blocks[i]
		if b.Name == "script" {
			assert.NoError(t, b.Data.Error)
			continue
		}
		// every template evaluates once its tree inputs are filled in
		if b.Data.Error != nil {
			for k, v := range b.Inputs {
				if v == "" {
					w.SetInput(i, k, "x")
				}
			}
		}
	}
	rebuilt(w)
	for _, i := range w.Order {
		b := w.Blocks[i]
		assert.NoError(t, b.Data.Error, b.Name)
	}
}

func TestNewBlockFrom(t *testing.T) {
	w := New()
	c := w.NewBlockFrom(definition(t, "Circle"))
	rebuilt(w)
	assert.Equal(t, "circle", w.Blocks[c].Name)
	require.NotNil(t, w.Blocks[c].View())

	m := w.NewBlockFrom(definition(t, "Move"))
	assert.Equal(t, "move", w.Blocks[m].Name)
	assert.Equal(t, "circle", w.Blocks[m].Inputs["shape"])
	w.SetInput(m, "offset", "[1, 0, 0]")
	rebuilt(w)
	require.NoError(t, w.Blocks[m].Data.Error)
	tr := w.Blocks[m].Data.IoValue("out").Value.(*implicit.Node)
	assert.Equal(t, float32(-1), tr.Eval(1, 0, 0))

	// two tree inputs are never pre-populated
	d := w.NewBlockFrom(definition(t, "Difference"))
	assert.Equal(t, "", w.Blocks[d].Inputs["shape"])

	c2 := w.NewBlockFrom(definition(t, "Circle"))
	assert.Equal(t, "circle_000", w.Blocks[c2].Name)
}

func TestShapeConstructors(t *testing.T) {
	e := evaluator().Engine()
	v, err := e.Eval(NewScope(), `circle(#{ radius: 2 })`)
	require.NoError(t, err)
	assert.Equal(t, float32(-2), v.(*implicit.Node).Eval(0, 0, 0))

	v, err = e.Eval(NewScope(), `union(#{ input: [circle(#{}), move(#{ shape: circle(#{}), offset: [3, 0, 0] })] })`)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), v.(*implicit.Node).Eval(3, 0, 0))

	v, err = e.Eval(NewScope(), `reflect(#{ shape: x - 1, plane: "yz" })`)
	require.NoError(t, err)
	assert.Equal(t, float32(-2), v.(*implicit.Node).Eval(1, 0, 0))

	_, err = e.Eval(NewScope(), `circle(#{ radius: 1, bogus: 2 })`)
	assert.ErrorContains(t, err, "bogus")
	_, err = e.Eval(NewScope(), `move(#{ offset: [1, 0, 0] })`)
	assert.ErrorContains(t, err, "missing parameter 'shape'")
	_, err = e.Eval(NewScope(), `box(#{ upper: [1, 2] })`)
	assert.ErrorContains(t, err, "3-vector")
}
