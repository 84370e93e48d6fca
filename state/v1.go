// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"

	"cogentcore.org/halfspace/world"
)

// Version 1 schema, read only for migration.
const (
	MajorV1 = 1
	MinorV1 = 2
)

type viewMode2V1 string

func (m *viewMode2V1) UnmarshalText(b []byte) error {
	switch v := viewMode2V1(b); v {
	case "Sdf", "Bitfield", "Debug":
		*m = v
		return nil
	}
	return fmt.Errorf("unknown 2D view mode %q", b)
}

type view2StateV1 struct {
	Mode   viewMode2V1 `json:"mode"`
	Center [2]float32  `json:"center"`
	Scale  float32     `json:"scale"`
	Width  uint32      `json:"width"`
	Height uint32      `json:"height"`
}

type viewStateV1 struct {
	View2 *view2StateV1 `json:"View2,omitempty"`

	// 3D views did not change in version 2.
	View3 *View3State `json:"View3,omitempty"`
}

type worldStateV1 struct {
	NextIndex world.BlockIndex                      `json:"next_index"`
	Order     []world.BlockIndex                    `json:"order"`
	Blocks    map[world.BlockIndex]world.BlockState `json:"blocks"`
}

// documentV1 is the payload of a version 1 document.
type documentV1 struct {
	meta  Meta
	world worldStateV1
	views map[world.BlockIndex]viewStateV1
	dock  Dock
}

// migrateV1 converts every version 1 variant to version 2.
func migrateV1(d *documentV1) (*payload, error) {
	bs := map[world.BlockIndex]blockStateV2{}
	for i, b := range d.world.Blocks {
		bs[i] = blockStateV2{Script: &scriptState{Name: b.Name, Script: b.Script, Inputs: b.Inputs}}
	}
	p := &payload{
		meta:  d.meta,
		world: worldStateV2{NextIndex: d.world.NextIndex, Order: d.world.Order, Blocks: bs},
		dock:  d.dock,
	}
	if d.views != nil {
		p.views = map[world.BlockIndex]ViewState{}
	}
	for i, v := range d.views {
		switch {
		case v.View2 != nil:
			p.views[i] = ViewState{View2: &View2State{
				Mode: ViewMode2(v.View2.Mode), Center: v.View2.Center, Scale: v.View2.Scale,
				Width: v.View2.Width, Height: v.View2.Height,
			}}
		case v.View3 != nil:
			v3 := *v.View3
			p.views[i] = ViewState{View3: &v3}
		default:
			return nil, fmt.Errorf("view %d has no variant", i)
		}
	}
	return p, nil
}
