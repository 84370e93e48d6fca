// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app is the headless application loop of the editor. An
// [App] owns the world, its views, the undo history and the modal
// state; all mutation happens on the goroutine that calls its
// methods, while rebuilds, renders, loads and exports run on worker
// goroutines and report back through a [bus.Receiver].
package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"cogentcore.org/halfspace/bus"
	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/logx"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/undo"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
)

// ScriptStates is the state of the background world rebuild.
type ScriptStates int32

const (
	// Done is when no rebuild is running.
	Done ScriptStates = iota

	// Running is when a rebuild is running.
	Running
)

// App is a headless editor session.
type App struct {

	// World is the document being edited.
	World *world.World

	// Views are the open block views.
	Views map[world.BlockIndex]*View

	// Dock is the tab layout, saved with the document.
	Dock state.Dock

	// Meta is the document metadata.
	Meta state.Meta

	// File is the path used for loading and saving, if any.
	File string

	// Modal is the active modal, or nil.
	Modal *Modal

	// Undo is the undo history of the world.
	Undo *undo.Mgr

	// Settings are the session settings.
	Settings *config.Settings

	// Now returns the current time; it defaults to [time.Now].
	Now func() time.Time

	eval *world.Evaluator
	ctx  *implicit.Context
	rx   *bus.Receiver

	script  ScriptStates
	changed bool
	rebuild uint64

	// busy counts worker goroutines that have not yet posted.
	busy atomic.Int64
}

// New returns an app with an empty world.
func New(s *config.Settings) *App {
	a := &App{
		World:    world.New(),
		Views:    map[world.BlockIndex]*View{},
		Settings: s,
		Now:      time.Now,
		eval:     world.NewEvaluator(s),
		ctx:      implicit.NewContext(),
		rx:       bus.NewReceiver(),
	}
	a.Undo = undo.New(a.World.State(), s.UndoDebounce(), a.Now())
	return a
}

// Wake returns a channel that receives a value whenever worker
// results may be waiting.
func (a *App) Wake() <-chan struct{} { return a.rx.Wake() }

// Generation returns the current message generation.
func (a *App) Generation() uint64 { return a.rx.Generation() }

// ScriptState returns whether a rebuild is running.
func (a *App) ScriptState() ScriptStates { return a.script }

func (a *App) options() render.Options {
	return render.Options{TileSize: a.Settings.TileSize, Workers: a.Settings.Workers}
}

// goWork runs f on a worker goroutine, counting it as busy until
// it returns.
func (a *App) goWork(f func()) {
	a.busy.Add(1)
	go func() {
		defer a.busy.Add(-1)
		f()
	}()
}

// StartWorldRebuild evaluates a snapshot of the world on a worker.
// While a rebuild is running, further requests are coalesced into
// a single rebuild started when it completes.
func (a *App) StartWorldRebuild() {
	if a.script == Running {
		a.changed = true
		return
	}
	a.rebuild++
	n := a.rebuild
	ws := a.World.State()
	tx := a.rx.GenSender()
	ev := a.eval
	a.goWork(func() {
		tx.Send(bus.RebuildWorld{Rebuild: n, World: ev.Rebuild(ws)})
	})
	a.script = Running
	a.changed = false
}

// Edit applies f to the world and starts a rebuild.
func (a *App) Edit(f func(w *world.World)) {
	f(a.World)
	a.StartWorldRebuild()
}

// HandleMessages applies all waiting worker results, returning
// how many were handled.
func (a *App) HandleMessages() int {
	n := 0
	for {
		m, ok := a.rx.TryRecv()
		if !ok {
			return n
		}
		a.handleMessage(m)
		n++
	}
}

func (a *App) handleMessage(m bus.Message) {
	switch m := m.(type) {
	case bus.RebuildWorld:
		if m.Rebuild != a.rebuild || a.script != Running {
			slog.Warn("ignoring stale rebuild", "rebuild", m.Rebuild)
			return
		}
		a.World.ImportData(m.World)
		a.script = Done
		if a.changed {
			a.StartWorldRebuild()
		}
	case bus.RenderView:
		if v := a.Views[m.Result.Block]; v != nil {
			v.Complete(m.Result)
		}
	case bus.Loaded:
		if !a.Modal.Is(WaitForLoad) {
			slog.Warn("received Loaded with unexpected modal", "modal", a.Modal)
			return
		}
		a.Modal = nil
		a.LoadFromState(m.Document)
		a.File = m.Path
	case bus.CancelLoad:
		if !a.Modal.Is(WaitForLoad) {
			slog.Warn("received CancelLoad with unexpected modal", "modal", a.Modal)
			return
		}
		a.Modal = nil
	case bus.LoadFailed:
		if !a.Modal.Is(WaitForLoad) {
			slog.Warn("received LoadFailed with unexpected modal", "modal", a.Modal)
			return
		}
		a.Modal = NewError("Load failed", m.Err)
	case bus.ExportComplete:
		a.exportComplete(m)
	default:
		slog.Error("unknown message", "type", m)
	}
}

// Tick records undo history and schedules rendering. dragging is
// whether the user is in the middle of a drag, during which no undo
// states are recorded; the first tick after a drag checkpoints.
func (a *App) Tick(dragging, released bool) {
	now := a.Now()
	switch {
	case released:
		a.Undo.Checkpoint(a.World.State(), now)
	case !dragging:
		a.Undo.FeedState(a.World.State(), now)
	}
	a.updateViews()
}

func (a *App) updateViews() {
	tx := a.rx.GenSender()
	o := a.options()
	spawn := func(j *view.Job) {
		a.goWork(func() {
			r, err := j.Run(o)
			if err != nil {
				slog.Log(context.Background(), logx.Trace, "render stopped", "block", j.Block, "level", j.Level, "err", err)
				return
			}
			tx.Send(bus.RenderView{Result: r})
		})
	}
	for i, v := range a.Views {
		b := a.World.Block(i)
		if b == nil || b.Data == nil || b.Data.View == nil {
			continue
		}
		s := view.NewRenderSettings(a.ctx, v.Canvas, v.Width, v.Height, b.Data.View)
		v.Update(i, b.Data.View, s, spawn)
	}
}

// Settle runs the loop until no worker is running and no message
// is waiting, or until ctx is done.
func (a *App) Settle(ctx context.Context) error {
	for {
		idle := a.busy.Load() == 0
		n := a.HandleMessages()
		a.Tick(false, false)
		if idle && n == 0 && a.busy.Load() == 0 {
			return nil
		}
		select {
		case <-a.rx.Wake():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RestoreWorldState replaces the world, pruning views and tabs of
// blocks that no longer exist, and starts a rebuild.
func (a *App) RestoreWorldState(ws *world.WorldState) {
	a.World = world.FromState(ws)
	a.prune()
	a.StartWorldRebuild()
}

// UndoEdit restores the previous world state. It is ignored while a
// modal is active and returns false if there is nothing to undo.
func (a *App) UndoEdit() bool {
	if a.Modal != nil {
		slog.Warn("ignoring undo while modal is active")
		return false
	}
	ws := a.Undo.Undo(a.World.State())
	if ws == nil {
		slog.Warn("no undo available")
		return false
	}
	slog.Debug("got undo state")
	a.RestoreWorldState(ws)
	return true
}

// RedoEdit restores the next world state. It is ignored while a
// modal is active and returns false if there is nothing to redo.
func (a *App) RedoEdit() bool {
	if a.Modal != nil {
		slog.Warn("ignoring redo while modal is active")
		return false
	}
	ws := a.Undo.Redo(a.World.State())
	if ws == nil {
		slog.Warn("no redo available")
		return false
	}
	slog.Debug("got redo state")
	a.RestoreWorldState(ws)
	return true
}

// Close cancels all renders and any export in progress.
func (a *App) Close() {
	for _, v := range a.Views {
		v.Close()
	}
	if a.Modal.Is(ExportInProgress) {
		a.Modal.Cancel.Cancel()
	}
}
