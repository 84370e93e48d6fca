// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
)

// Current version. Minor versions may only add variants and
// optional fields. Minor 1 added [ModeSdfExact].
const (
	Major = 2
	Minor = 1
)

// Meta is optional information about a document.
type Meta struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ViewMode2 is a 2D view mode.
type ViewMode2 string

const (
	ModeBitfield ViewMode2 = "Bitfield"
	ModeSdf      ViewMode2 = "Sdf"
	ModeSdfExact ViewMode2 = "SdfExact"
	ModeDebug    ViewMode2 = "Debug"
)

// UnmarshalText rejects unknown modes.
func (m *ViewMode2) UnmarshalText(b []byte) error {
	switch v := ViewMode2(b); v {
	case ModeBitfield, ModeSdf, ModeSdfExact, ModeDebug:
		*m = v
		return nil
	}
	return fmt.Errorf("unknown 2D view mode %q", b)
}

// ViewMode3 is a 3D view mode.
type ViewMode3 string

const (
	ModeHeightmap ViewMode3 = "Heightmap"
	ModeShaded    ViewMode3 = "Shaded"
)

// UnmarshalText rejects unknown modes.
func (m *ViewMode3) UnmarshalText(b []byte) error {
	switch v := ViewMode3(b); v {
	case ModeHeightmap, ModeShaded:
		*m = v
		return nil
	}
	return fmt.Errorf("unknown 3D view mode %q", b)
}

// View2State is a saved 2D view.
type View2State struct {
	Mode   ViewMode2  `json:"mode"`
	Center [2]float32 `json:"center"`
	Scale  float32    `json:"scale"`
	Width  uint32     `json:"width"`
	Height uint32     `json:"height"`
}

// View3State is a saved 3D view.
type View3State struct {
	Mode   ViewMode3  `json:"mode"`
	Center [3]float32 `json:"center"`
	Scale  float32    `json:"scale"`
	Pitch  float32    `json:"pitch"`
	Yaw    float32    `json:"yaw"`
	Width  uint32     `json:"width"`
	Height uint32     `json:"height"`
	Depth  uint32     `json:"depth"`
}

// ViewState is a saved view: exactly one of the variants is set.
type ViewState struct {
	View2 *View2State `json:"View2,omitempty"`
	View3 *View3State `json:"View3,omitempty"`
}

var (
	mode2ToRender = map[ViewMode2]render.Mode2{
		ModeBitfield: render.Bitfield, ModeSdf: render.SdfApprox,
		ModeSdfExact: render.SdfExact, ModeDebug: render.Debug,
	}
	mode3ToRender = map[ViewMode3]render.Mode3{
		ModeHeightmap: render.Heightmap, ModeShaded: render.Shaded,
	}
)

// NewViewState saves a view canvas displayed at the given size.
func NewViewState(c view.Canvas, w, h int) ViewState {
	if c.Kind == view.Canvas3D {
		mode := ModeHeightmap
		if c.Mode3 == render.Shaded {
			mode = ModeShaded
		}
		return ViewState{View3: &View3State{
			Mode: mode, Center: [3]float32{c.Center.X, c.Center.Y, c.Center.Z},
			Scale: c.Scale, Pitch: c.Pitch, Yaw: c.Yaw,
			Width: uint32(w), Height: uint32(h), Depth: uint32(max(w, h)),
		}}
	}
	mode := ModeBitfield
	for m, r := range mode2ToRender {
		if r == c.Mode2 {
			mode = m
		}
	}
	return ViewState{View2: &View2State{
		Mode: mode, Center: [2]float32{c.Center.X, c.Center.Y},
		Scale: c.Scale, Width: uint32(w), Height: uint32(h),
	}}
}

// Canvas returns the canvas of a saved view and the size it was
// displayed at.
func (v ViewState) Canvas() (c view.Canvas, w, h int) {
	if v3 := v.View3; v3 != nil {
		c = view.New3D(mode3ToRender[v3.Mode])
		c.Center = math32.Vec3(v3.Center[0], v3.Center[1], v3.Center[2])
		c.Scale, c.Pitch, c.Yaw = v3.Scale, v3.Pitch, v3.Yaw
		return c, int(v3.Width), int(v3.Height)
	}
	v2 := v.View2
	if v2 == nil {
		return view.New2D(render.Bitfield), 0, 0
	}
	c = view.New2D(mode2ToRender[v2.Mode])
	c.Center = math32.Vec3(v2.Center[0], v2.Center[1], 0)
	c.Scale = v2.Scale
	return c, int(v2.Width), int(v2.Height)
}

// TabMode is what a dock tab shows for its block.
type TabMode string

const (
	ScriptTab TabMode = "Script"
	ViewTab   TabMode = "View"
)

// UnmarshalText rejects unknown modes.
func (m *TabMode) UnmarshalText(b []byte) error {
	switch v := TabMode(b); v {
	case ScriptTab, ViewTab:
		*m = v
		return nil
	}
	return fmt.Errorf("unknown tab mode %q", b)
}

// Tab is a dock tab.
type Tab struct {
	Index world.BlockIndex `json:"index"`
	Mode  TabMode          `json:"mode"`
}

// Dock is the pane layout: groups of tabs shown side by side.
// It is the only authority for which views are open.
type Dock struct {
	Panes [][]Tab `json:"panes"`
}

// Tabs returns all tabs in pane order.
func (d *Dock) Tabs() []Tab {
	var ts []Tab
	for _, p := range d.Panes {
		ts = append(ts, p...)
	}
	return ts
}

// scriptState is the only block variant of version 2.
type scriptState struct {
	Name   string            `json:"name"`
	Script string            `json:"script"`
	Inputs map[string]string `json:"inputs"`
}

type blockStateV2 struct {
	Script *scriptState `json:"Script,omitempty"`
}

type worldStateV2 struct {
	NextIndex world.BlockIndex                  `json:"next_index"`
	Order     []world.BlockIndex                `json:"order"`
	Blocks    map[world.BlockIndex]blockStateV2 `json:"blocks"`
}

func toV2(ws *world.WorldState) *worldStateV2 {
	o := &worldStateV2{NextIndex: ws.NextIndex, Order: ws.Order, Blocks: map[world.BlockIndex]blockStateV2{}}
	if o.Order == nil {
		o.Order = []world.BlockIndex{}
	}
	for i, b := range ws.Blocks {
		o.Blocks[i] = blockStateV2{Script: &scriptState{Name: b.Name, Script: b.Script, Inputs: b.Inputs}}
	}
	return o
}

func (ws *worldStateV2) world() (*world.WorldState, error) {
	o := &world.WorldState{NextIndex: ws.NextIndex, Order: ws.Order, Blocks: map[world.BlockIndex]world.BlockState{}}
	for i, b := range ws.Blocks {
		if b.Script == nil {
			return nil, fmt.Errorf("block %d has no variant", i)
		}
		o.Blocks[i] = world.BlockState{Name: b.Script.Name, Script: b.Script.Script, Inputs: b.Script.Inputs}
	}
	if len(o.Order) != len(o.Blocks) {
		return nil, fmt.Errorf("order has %d blocks but there are %d", len(o.Order), len(o.Blocks))
	}
	seen := map[world.BlockIndex]bool{}
	for _, i := range o.Order {
		if seen[i] {
			return nil, fmt.Errorf("block %d is in the order twice", i)
		}
		seen[i] = true
		if _, ok := o.Blocks[i]; !ok {
			return nil, fmt.Errorf("block %d is in the order but missing", i)
		}
		if i >= o.NextIndex {
			return nil, fmt.Errorf("block %d is not below next_index %d", i, o.NextIndex)
		}
	}
	return o, nil
}
