// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"slices"

	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
)

// DefaultSize is the size of views that have none yet.
const DefaultSize = 512

// View is an open block view with its display size.
type View struct {
	*view.View
	Width  int
	Height int
}

func (a *App) newView(c view.Canvas, w, h int) *View {
	if w <= 0 || h <= 0 {
		w, h = DefaultSize, DefaultSize
	}
	return &View{View: view.New(c, a.Settings), Width: w, Height: h}
}

// OpenView opens a view of a block, adding a view tab to the last
// pane. It returns the existing view if the block already has one,
// or nil if the block does not exist.
func (a *App) OpenView(i world.BlockIndex, c view.Canvas, w, h int) *View {
	if a.World.Block(i) == nil {
		return nil
	}
	if v := a.Views[i]; v != nil {
		return v
	}
	v := a.newView(c, w, h)
	a.Views[i] = v
	tab := state.Tab{Index: i, Mode: state.ViewTab}
	if len(a.Dock.Panes) == 0 {
		a.Dock.Panes = append(a.Dock.Panes, nil)
	}
	last := len(a.Dock.Panes) - 1
	a.Dock.Panes[last] = append(a.Dock.Panes[last], tab)
	return v
}

// CloseView closes the view of a block and its tab.
func (a *App) CloseView(i world.BlockIndex) {
	if v := a.Views[i]; v != nil {
		v.Close()
		delete(a.Views, i)
	}
	a.retainTabs(func(t state.Tab) bool { return t.Index != i || t.Mode != state.ViewTab })
}

// Resize sets the display size of a view.
func (a *App) Resize(i world.BlockIndex, w, h int) {
	if v := a.Views[i]; v != nil {
		v.Width, v.Height = w, h
	}
}

// SetCanvas replaces the canvas of a view, after a pan, zoom or
// mode change.
func (a *App) SetCanvas(i world.BlockIndex, c view.Canvas) {
	if v := a.Views[i]; v != nil {
		v.Canvas = c
	}
}

func (a *App) retainTabs(keep func(t state.Tab) bool) {
	for p := range a.Dock.Panes {
		a.Dock.Panes[p] = slices.DeleteFunc(a.Dock.Panes[p], func(t state.Tab) bool { return !keep(t) })
	}
	a.Dock.Panes = slices.DeleteFunc(a.Dock.Panes, func(p []state.Tab) bool { return len(p) == 0 })
}

// prune closes the views and tabs of blocks that no longer exist.
func (a *App) prune() {
	for i, v := range a.Views {
		if a.World.Block(i) == nil {
			v.Close()
			delete(a.Views, i)
		}
	}
	a.retainTabs(func(t state.Tab) bool { return a.World.Block(t.Index) != nil })
}

func (a *App) viewStates() map[world.BlockIndex]state.ViewState {
	vs := make(map[world.BlockIndex]state.ViewState, len(a.Views))
	for i, v := range a.Views {
		vs[i] = state.NewViewState(v.Canvas, v.Width, v.Height)
	}
	return vs
}
