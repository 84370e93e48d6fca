// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"bytes"
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	w := world.New()
	a := w.NewBlock("a", "output(\"x\", input(\"n\"));")
	w.SetInput(a, "n", "2")
	b := w.NewBlock("b", "view(circle(#{ radius: a.x }));")
	c := view.New3D(render.Shaded)
	c.Center = math32.Vec3(1, 2, 3)
	c.Pitch = 0.5
	name := "circles"
	return New(w.State(),
		map[world.BlockIndex]ViewState{
			b: NewViewState(view.New2D(render.SdfExact), 640, 480),
			a: NewViewState(c, 320, 200),
		},
		Dock{Panes: [][]Tab{{{Index: a, Mode: ScriptTab}, {Index: b, Mode: ScriptTab}}, {{Index: b, Mode: ViewTab}, {Index: a, Mode: ViewTab}}}},
		Meta{Name: &name})
}

func TestRoundTrip(t *testing.T) {
	d := testDocument()
	r, err := ReadBytes(d.Bytes())
	require.NoError(t, err)
	assert.True(t, d.World.Equal(r.World))
	assert.Equal(t, d.Views, r.Views)
	assert.Equal(t, d.Dock, r.Dock)
	assert.Equal(t, d.Meta, r.Meta)
	assert.Equal(t, Tag, r.Tag)
	assert.Equal(t, Major, r.Major)
	assert.Equal(t, Minor, r.Minor)

	// writing is deterministic
	assert.Equal(t, string(d.Bytes()), string(r.Bytes()))
}

func TestViewStateCanvas(t *testing.T) {
	c := view.New3D(render.Heightmap)
	c.Center = math32.Vec3(1, 2, 3)
	c.Yaw = 1
	got, w, h := NewViewState(c, 30, 20).Canvas()
	assert.Equal(t, c, got)
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)

	for _, m := range []render.Mode2{render.Bitfield, render.SdfApprox, render.SdfExact, render.Debug} {
		got, _, _ := NewViewState(view.New2D(m), 1, 1).Canvas()
		assert.Equal(t, view.New2D(m), got)
	}
}

func TestBadTag(t *testing.T) {
	_, err := ReadBytes([]byte(`{"tag": "fidget", "major": 2, "minor": 0}`))
	var bt *BadTagError
	require.ErrorAs(t, err, &bt)
	assert.Equal(t, "halfspace", bt.Expected)
	assert.Equal(t, "fidget", bt.Actual)
}

func TestNotUTF8(t *testing.T) {
	_, err := ReadBytes([]byte("{\"tag\": \"half\xffspace\"}"))
	var nu *NotUTF8Error
	require.ErrorAs(t, err, &nu)
	assert.Equal(t, 13, nu.Offset)
}

func TestParseError(t *testing.T) {
	_, err := ReadBytes([]byte(`{"tag": "halfspace", `))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	// unknown fields in the current version are parse errors
	_, err = ReadBytes([]byte(`{"tag": "halfspace", "major": 2, "minor": 0,
		"world": {"next_index": 0, "order": [], "blocks": {}, "extra": 1}}`))
	assert.ErrorAs(t, err, &pe)

	// so are inconsistent worlds
	_, err = ReadBytes([]byte(`{"tag": "halfspace", "major": 2, "minor": 0,
		"world": {"next_index": 5, "order": [1], "blocks": {}}}`))
	assert.ErrorAs(t, err, &pe)
}

func TestVersionGate(t *testing.T) {
	payloads := []string{
		`"world": {"next_index": 0, "order": [], "blocks": {}}`,
		`"world": "garbage", "views": [1, 2, 3]`,
		`"dock": {"something": "else"}`,
	}
	for _, major := range []string{"3", "4", "100"} {
		for _, p := range payloads {
			_, err := ReadBytes([]byte(`{"tag": "halfspace", "major": ` + major + `, "minor": 0, ` + p + `}`))
			var tn *TooNewError
			assert.ErrorAs(t, err, &tn, "major %s with %s", major, p)
		}
	}
	for _, major := range []string{"1", "2"} {
		_, err := ReadBytes([]byte(`{"tag": "halfspace", "major": ` + major + `, "minor": 0, ` + payloads[0] + `}`))
		assert.NoError(t, err)
	}
	_, err := ReadBytes([]byte(`{"tag": "halfspace", "major": 0, "minor": 0}`))
	var bm *BadMajorVersionError
	assert.ErrorAs(t, err, &bm)
}

// TestTooNewMinor checks that a newer minor version using an unknown
// variant reports the version rather than a parse error.
func TestTooNewMinor(t *testing.T) {
	doc := `{"tag": "halfspace", "major": 1, "minor": 99,
		"world": {"next_index": 1, "order": [0], "blocks": {"0": {"name": "a", "script": "", "inputs": {}}}},
		"views": {"0": {"View4": {"mode": "Hologram"}}},
		"dock": {"panes": []}}`
	_, err := ReadBytes([]byte(doc))
	var tn *TooNewError
	require.ErrorAs(t, err, &tn)
	assert.Equal(t, TooNewError{ExpectedMajor: 1, ExpectedMinor: 2, ActualMajor: 1, ActualMinor: 99}, *tn)
	var pe *ParseError
	assert.False(t, errors.As(err, &pe))

	doc = `{"tag": "halfspace", "major": 2, "minor": 2,
		"world": {"next_index": 1, "order": [0], "blocks": {"0": {"name": "a", "script": "", "inputs": {}}}},
		"views": {"0": {"View2": {"mode": "Hologram", "center": [0, 0], "scale": 1}}}}`
	_, err = ReadBytes([]byte(doc))
	require.ErrorAs(t, err, &tn)
	assert.Equal(t, TooNewError{ExpectedMajor: 2, ExpectedMinor: 1, ActualMajor: 2, ActualMinor: 2}, *tn)

	// a newer minor version that only uses known variants loads
	doc = `{"tag": "halfspace", "major": 2, "minor": 7,
		"world": {"next_index": 0, "order": [], "blocks": {}}}`
	_, err = ReadBytes([]byte(doc))
	assert.NoError(t, err)
}

const v1Document = `{
  "tag": "halfspace",
  "major": 1,
  "minor": 2,
  "world": {
    "next_index": 3,
    "order": [2, 0],
    "blocks": {
      "0": {"name": "shape", "script": "let r = input(\"r\");", "inputs": {"r": "0.5"}},
      "2": {"name": "other", "script": "", "inputs": {}}
    }
  },
  "views": {
    "0": {"View2": {"mode": "Sdf", "center": [0.5, 0], "scale": 2, "width": 100, "height": 80}},
    "2": {"View3": {"mode": "Shaded", "center": [0, 0, 1], "scale": 1, "pitch": 0.1, "yaw": 0.2, "width": 10, "height": 20, "depth": 20}}
  },
  "dock": {"panes": [[{"index": 0, "mode": "Script"}, {"index": 0, "mode": "View"}]]}
}`

func TestMigrateV1(t *testing.T) {
	d, err := ReadBytes([]byte(v1Document))
	require.NoError(t, err)
	assert.Equal(t, Major, d.Major)
	assert.Equal(t, world.BlockIndex(3), d.World.NextIndex)
	assert.Equal(t, []world.BlockIndex{2, 0}, d.World.Order)
	assert.Equal(t, world.BlockState{Name: "shape", Script: "let r = input(\"r\");", Inputs: map[string]string{"r": "0.5"}}, d.World.Blocks[0])

	v2 := d.Views[0].View2
	require.NotNil(t, v2)
	assert.Equal(t, ModeSdf, v2.Mode)
	assert.Equal(t, [2]float32{0.5, 0}, v2.Center)
	assert.Equal(t, uint32(100), v2.Width)
	c, _, _ := d.Views[0].Canvas()
	assert.Equal(t, render.SdfApprox, c.Mode2)

	v3 := d.Views[2].View3
	require.NotNil(t, v3)
	assert.Equal(t, View3State{Mode: ModeShaded, Center: [3]float32{0, 0, 1}, Scale: 1, Pitch: 0.1, Yaw: 0.2, Width: 10, Height: 20, Depth: 20}, *v3)
	assert.Equal(t, []Tab{{Index: 0, Mode: ScriptTab}, {Index: 0, Mode: ViewTab}}, d.Dock.Tabs())

	// the migrated document round trips at the current version
	r, err := Read(bytes.NewReader(d.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, d.Views, r.Views)
	assert.True(t, d.World.Equal(r.World))
}

func TestBadDock(t *testing.T) {
	doc := `{"tag": "halfspace", "major": 2, "minor": 0,
		"world": {"next_index": 1, "order": [0], "blocks": {"0": {"Script": {"name": "a", "script": "", "inputs": {}}}}},
		"views": {"0": {"View2": {"mode": "Bitfield", "center": [0, 0], "scale": 1, "width": 1, "height": 1}}},
		"dock": {"tree": "opaque"}}`
	d, err := ReadBytes([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, d.Views)
	assert.Empty(t, d.Dock.Panes)
	assert.Len(t, d.World.Order, 1)
}

func TestSaveOpen(t *testing.T) {
	d := testDocument()
	fn := t.TempDir() + "/test" + Extension
	require.NoError(t, d.Save(fn))
	r, err := Open(fn)
	require.NoError(t, err)
	assert.True(t, d.World.Equal(r.World))
}
