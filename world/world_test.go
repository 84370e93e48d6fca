// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"errors"
	"testing"

	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluator() *Evaluator {
	return NewEvaluator(config.New())
}

func rebuilt(w *World) *World {
	evaluator().RebuildWorld(w)
	return w
}

func TestChainedOutputs(t *testing.T) {
	w := New()
	w.NewBlock("a", `output("x", 2);`)
	b := w.NewBlock("b", `let v = a.x; output("y", v + 3);`)
	rebuilt(w)

	d := w.Blocks[b].Data
	require.NoError(t, d.Error)
	y := d.IoValue("y")
	require.NotNil(t, y)
	assert.Equal(t, Output, y.Kind)
	assert.Equal(t, int64(5), y.Value)
	assert.Equal(t, Float, y.Typed().Kind)
	assert.Equal(t, 5.0, y.Typed().Float)
	assert.Equal(t, "5", y.Text)
	assert.Equal(t, 1, y.Line)
}

func TestDuplicateName(t *testing.T) {
	w := New()
	a := w.NewBlock("foo", "")
	b := w.NewBlock("bar", "")
	w.Rename(b, "foo")
	rebuilt(w)

	assert.NoError(t, w.Blocks[a].Data.Error)
	var ne *NameError
	require.True(t, errors.As(w.Blocks[b].Data.Error, &ne))
	assert.Equal(t, DuplicateName, ne.Kind)
}

func TestInvalidName(t *testing.T) {
	w := New()
	a := w.NewBlock("not a name", "")
	b := w.NewBlock("b", `throw("nope")`)
	w.Rename(b, "1b")
	rebuilt(w)

	var ne *NameError
	require.True(t, errors.As(w.Blocks[a].Data.Error, &ne))
	assert.Equal(t, InvalidIdentifier, ne.Kind)

	// evaluation errors take precedence over name errors
	var ee *EvalError
	require.True(t, errors.As(w.Blocks[b].Data.Error, &ee))
	assert.Contains(t, ee.Message, "nope")
}

func TestInputPruning(t *testing.T) {
	w := New()
	i := w.NewBlock("a", `let a = input("a"); output("out", a);`)
	w.SetInput(i, "a", "1")
	w.SetInput(i, "b", "2")
	rebuilt(w)

	require.NoError(t, w.Blocks[i].Data.Error)
	assert.Equal(t, map[string]string{"a": "1"}, w.Blocks[i].Inputs)
	assert.Equal(t, int64(1), w.Blocks[i].Data.IoValue("a").Value)
}

func TestInputsKeptOnFailure(t *testing.T) {
	w := New()
	i := w.NewBlock("a", `let a = input("a"); let c = input("c"); throw("fail")`)
	w.SetInput(i, "a", "1")
	w.SetInput(i, "b", "2")
	rebuilt(w)

	require.Error(t, w.Blocks[i].Data.Error)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "0"}, w.Blocks[i].Inputs)

	w.SetScript(i, `let a = input("a"`)
	rebuilt(w)
	require.Error(t, w.Blocks[i].Data.Error)
	assert.Len(t, w.Blocks[i].Inputs, 3)
}

func TestCompileError(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `output("x", 1); let = ;`)
	b := w.NewBlock("b", `output("y", a.x);`)
	rebuilt(w)

	da := w.Blocks[a].Data
	var ee *EvalError
	require.True(t, errors.As(da.Error, &ee))
	assert.Equal(t, 1, ee.Line)
	assert.Empty(t, da.IoValues)
	assert.Nil(t, da.View)

	// a contributes nothing to the scope
	assert.Error(t, w.Blocks[b].Data.Error)
}

func TestFailedBlockPublishesNothing(t *testing.T) {
	w := New()
	w.NewBlock("a", `output("x", 1); throw("no")`)
	b := w.NewBlock("b", `output("y", a.x);`)
	rebuilt(w)
	assert.Error(t, w.Blocks[b].Data.Error)
}

func TestInputExpressions(t *testing.T) {
	w := New()
	w.NewBlock("a", `output("r", 2);`)
	b := w.NewBlock("b", `let r = input("r"); output("d", r * 2);`)
	w.SetInput(b, "r", "a.r + 1")
	c := w.NewBlock("c", `let q = input("q"); output("q2", q);`)
	w.SetInput(c, "q", "1 +")
	rebuilt(w)

	db := w.Blocks[b].Data
	require.NoError(t, db.Error)
	assert.Equal(t, int64(6), db.IoValue("d").Value)

	dc := w.Blocks[c].Data
	require.Error(t, dc.Error)
	assert.Contains(t, dc.Error.Error(), "error in input expression")
	q := dc.IoValue("q")
	require.NotNil(t, q)
	assert.False(t, q.IsOk())
	assert.NotEmpty(t, q.Err)
}

func TestObjectMapOfOutputsAndInputs(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `let k = input("k"); output("x", 1); output("y", 2);`)
	w.SetInput(a, "k", "7")
	b := w.NewBlock("b", `output("s", a.x + a.y + a.k);`)
	rebuilt(w)
	require.NoError(t, w.Blocks[b].Data.Error)
	assert.Equal(t, int64(10), w.Blocks[b].Data.IoValue("s").Value)
}

func TestAutoView(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `output("c", sqrt(x * x + y * y) - 1);`)
	b := w.NewBlock("b", `output("t", a + 1); view(a);`)
	c := w.NewBlock("c", `output("n", 1);`)
	rebuilt(w)

	va := w.Blocks[a].View()
	require.NotNil(t, va)
	require.Len(t, va.Shapes, 1)
	assert.Equal(t, float32(-1), va.Shapes[0].Tree.Eval(0, 0, 0))

	// explicit view wins over the single tree output
	vb := w.Blocks[b].View()
	require.NotNil(t, vb)
	assert.Equal(t, float32(-1), vb.Shapes[0].Tree.Eval(0, 0, 0))

	assert.Nil(t, w.Blocks[c].View())
}

func TestMultipleViews(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `view(x); view(y);`)
	rebuilt(w)
	require.Error(t, w.Blocks[a].Data.Error)
	assert.Contains(t, w.Blocks[a].Data.Error.Error(), "multiple views")
}

func TestDuplicateIo(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `output("x", 1); output("x", 2);`)
	b := w.NewBlock("b", `output("not valid", 1);`)
	rebuilt(w)
	assert.Contains(t, w.Blocks[a].Data.Error.Error(), "already exists")
	assert.Contains(t, w.Blocks[b].Data.Error.Error(), "forbidden")
}

func TestPrintDebug(t *testing.T) {
	w := New()
	a := w.NewBlock("a", "print(\"hello\");\nprint(1, 2);\ndebug(\"here\");")
	rebuilt(w)
	d := w.Blocks[a].Data
	require.NoError(t, d.Error)
	assert.Equal(t, "hello\n1 2", d.Stdout)
	assert.Equal(t, []string{"here"}, d.Debug[3])
}

func TestExportRequests(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `export_mesh(sqrt(x*x + y*y + z*z) - 1, [-1, -1, -1], vec3(1, 1, 1), 0.1);`)
	b := w.NewBlock("b", `export_image(draw(x), [0, 0], [1, 2], 10); export_image(x, [0, 0], [1, 1], 1);`)
	rebuilt(w)

	ea := w.Blocks[a].Data.Export
	require.NotNil(t, ea)
	assert.Equal(t, MeshExport, ea.Kind)
	assert.Equal(t, float32(-1), ea.Lower.Z)
	assert.Equal(t, float32(0.1), ea.Feature)

	db := w.Blocks[b].Data
	assert.Contains(t, db.Error.Error(), "multiple exports")
	require.NotNil(t, db.Export)
	assert.Equal(t, float32(2), db.Export.Upper.Y)
}

func TestUniqueNames(t *testing.T) {
	w := New()
	a := w.NewBlock("box", "")
	b := w.NewBlock("box", "")
	c := w.NewBlock("box", "")
	assert.Equal(t, "box", w.Blocks[a].Name)
	assert.Equal(t, "box_000", w.Blocks[b].Name)
	assert.Equal(t, "box_001", w.Blocks[c].Name)
	assert.Equal(t, BlockIndex(3), w.NextIndex)

	assert.True(t, w.Remove(b))
	assert.False(t, w.Remove(b))
	d := w.NewBlock("x", "")
	assert.Equal(t, BlockIndex(3), d)
	assert.Equal(t, []BlockIndex{a, c, d}, w.Order)
	assert.Len(t, w.Blocks, 3)

	w.Move(2, 0)
	assert.Equal(t, []BlockIndex{d, a, c}, w.Order)
}

func TestStateRoundTrip(t *testing.T) {
	w := New()
	i := w.NewBlock("a", `let q = input("q"); output("o", q);`)
	w.SetInput(i, "q", "3")
	ws := w.State()
	assert.True(t, w.Equal(ws))

	c := ws.Clone()
	assert.True(t, c.Equal(ws))
	c.Blocks[i].Inputs["q"] = "4"
	assert.False(t, c.Equal(ws))
	assert.Equal(t, "3", ws.Blocks[i].Inputs["q"])

	w2 := evaluator().Rebuild(ws)
	assert.True(t, w2.Equal(ws))
	assert.Equal(t, int64(3), w2.Blocks[i].Data.IoValue("o").Value)
}

func TestImportData(t *testing.T) {
	w := New()
	i := w.NewBlock("a", "let p = input(\"p\");\noutput(\"a\", 1);\noutput(\"b\", 2);")
	rebuilt(w)

	w.SetScript(i, "output(\"a\", 3);\noutput(\"c\", 4);\nthrow(\"x\");")
	o := evaluator().Rebuild(w.State())
	w.SetInput(i, "p", "edited")
	w.ImportData(o)

	d := w.Blocks[i].Data
	require.Error(t, d.Error)
	names := []string{}
	for _, v := range d.IoValues {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"p", "a", "c", "b"}, names)
	assert.Equal(t, int64(3), d.IoValue("a").Value)
	assert.Equal(t, FailedText, d.IoValue("b").Text)
	assert.Equal(t, "edited", w.Blocks[i].Inputs["p"])

	// success replaces everything and prunes inputs
	w.SetScript(i, `output("z", 1);`)
	o = evaluator().Rebuild(w.State())
	w.ImportData(o)
	require.NoError(t, w.Blocks[i].Data.Error)
	assert.Len(t, w.Blocks[i].Data.IoValues, 1)
	assert.Empty(t, w.Blocks[i].Inputs)
}

func TestColors(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `view(draw_rgb(x, 1, 0.5, 0));`)
	b := w.NewBlock("b", `view(draw_rgb(x, 2, 0, 0));`)
	c := w.NewBlock("c", `view(scene([draw_hsl(x, 7, 1, 0.5), draw(y), y]));`)
	d := w.NewBlock("d", `view(draw_hsl(x, x, 1, 0.5));`)
	rebuilt(w)

	require.NoError(t, w.Blocks[a].Data.Error)
	assert.Equal(t, RGB, w.Blocks[a].View().Shapes[0].Color.Model)
	assert.Error(t, w.Blocks[b].Data.Error)

	vc := w.Blocks[c].View()
	require.NotNil(t, vc)
	require.Len(t, vc.Shapes, 3)
	h, ok := vc.Shapes[0].Color.Channels[0].Constant()
	require.True(t, ok)
	assert.InDelta(t, 7-2*3.14159265, h, 1e-4)

	hd := w.Blocks[d].View().Shapes[0].Color.Channels[0]
	assert.Equal(t, implicit.OpMod, hd.Op())
}

func TestSceneFromIdempotent(t *testing.T) {
	s := SceneOf(implicit.X())
	s2, err := SceneFrom(s)
	require.NoError(t, err)
	assert.Same(t, s, s2)

	_, err = SceneFrom(script.NewArray())
	assert.ErrorIs(t, err, ErrEmptyScene)
	_, err = SceneFrom("text")
	assert.Error(t, err)
}

func TestTreeOperators(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `let t = -(x * 2 + 1) / 2 % 10; output("t", max(t, abs(y)) - min(1, z));`)
	rebuilt(w)
	require.NoError(t, w.Blocks[a].Data.Error)
	tr, ok := w.Blocks[a].Data.IoValue("t").Value.(*implicit.Node)
	require.True(t, ok)
	// t(1, 0, 0) = mod(-1.5, 10) = 8.5
	assert.InDelta(t, 8.5-1, tr.Eval(1, 0, 5), 1e-5)
	assert.Equal(t, "Tree(..)", w.Blocks[a].Data.IoValue("t").Text)
}

func TestBlocksDoNotShareValues(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `output("v", [1, 2]); output("w", 3);`)
	w.NewBlock("b", `a.v[0] = 100; a.w = 42; output("z", 0);`)
	c := w.NewBlock("c", `let src = input("src"); output("v0", src.v[0]); output("w", a.w);`)
	w.SetInput(c, "src", "a")
	rebuilt(w)

	for _, b := range w.Blocks {
		require.NoError(t, b.Data.Error, b.Name)
	}
	dc := w.Blocks[c].Data
	assert.Equal(t, int64(1), dc.IoValue("v0").Value)
	assert.Equal(t, int64(3), dc.IoValue("w").Value)

	v := w.Blocks[a].Data.IoValue("v")
	assert.Equal(t, script.NewArray(int64(1), int64(2)), v.Value)
	assert.Equal(t, "vec2(1, 2)", v.Text)
}

func TestOutputTextMatchesValue(t *testing.T) {
	w := New()
	a := w.NewBlock("a", `let v = [1, 2]; output("v", v); v[0] = 99;`)
	rebuilt(w)

	v := w.Blocks[a].Data.IoValue("v")
	require.NotNil(t, v)
	assert.Equal(t, script.NewArray(int64(1), int64(2)), v.Value)
	assert.Equal(t, "vec2(1, 2)", v.Text)
}
