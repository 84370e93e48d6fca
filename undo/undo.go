// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package undo provides an undo manager for world states, with
// debounced checkpoints and tracking of the saved state.
package undo

import (
	"log/slog"
	"sync"
	"time"

	"cogentcore.org/halfspace/world"
)

// DefaultDebounce is the time the state must be stable before a new
// change creates an undo point.
var DefaultDebounce = 200 * time.Millisecond

// Rec is one undo record.
type Rec struct {
	State *world.WorldState

	// Saved is whether the state was saved to a file.
	Saved bool
}

// Mgr is the undo manager. The undo stack always has at least one
// record once [Mgr.Reset] has been called; its top is the last
// checkpoint.
type Mgr struct {
	Undos []Rec
	Redos []Rec

	// Debounce is the minimum time between a change and the
	// previous one for [Mgr.FeedState] to create an undo point.
	Debounce time.Duration

	// LastChanged is the time of the last change seen.
	LastChanged time.Time

	// Mu protects the stacks.
	Mu sync.Mutex
}

// New returns a manager starting from the given state.
func New(ws *world.WorldState, debounce time.Duration, now time.Time) *Mgr {
	um := &Mgr{Debounce: debounce}
	um.Reset(ws, false, now)
	return um
}

// Reset clears the history, starting from the given state.
func (um *Mgr) Reset(ws *world.WorldState, saved bool, now time.Time) {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	um.Undos = []Rec{{State: ws.Clone(), Saved: saved}}
	um.Redos = nil
	um.LastChanged = now
}

func (um *Mgr) top() *Rec {
	return &um.Undos[len(um.Undos)-1]
}

func (um *Mgr) push(ws *world.WorldState, saved bool) {
	um.Undos = append(um.Undos, Rec{State: ws.Clone(), Saved: saved})
	um.Redos = nil
}

// FeedState is called with the current state on every frame in which
// no drag is active. A change made after the state was stable for
// the debounce time creates an undo point.
func (um *Mgr) FeedState(ws *world.WorldState, now time.Time) {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	if len(um.Undos) == 0 {
		um.Undos = []Rec{{State: ws.Clone()}}
		um.LastChanged = now
		return
	}
	if ws.Equal(um.top().State) {
		return
	}
	if now.Sub(um.LastChanged) > um.debounce() {
		slog.Debug("creating undo point due to changes")
		um.push(ws, false)
	}
	um.LastChanged = now
}

func (um *Mgr) debounce() time.Duration {
	if um.Debounce <= 0 {
		return DefaultDebounce
	}
	return um.Debounce
}

// Checkpoint creates an undo point if the state changed, without
// waiting for the debounce time. It is used when a drag ends.
func (um *Mgr) Checkpoint(ws *world.WorldState, now time.Time) {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	if len(um.Undos) == 0 || !ws.Equal(um.top().State) {
		slog.Debug("creating undo point due to checkpoint")
		um.push(ws, false)
	}
	um.LastChanged = now
}

// HasUndo returns whether [Mgr.Undo] would return a state.
func (um *Mgr) HasUndo(current *world.WorldState) bool {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	return um.hasUndo(current)
}

func (um *Mgr) hasUndo(current *world.WorldState) bool {
	switch len(um.Undos) {
	case 0:
		return false
	case 1:
		return !current.Equal(um.top().State)
	}
	return true
}

// HasRedo returns whether [Mgr.Redo] would return a state.
func (um *Mgr) HasRedo(current *world.WorldState) bool {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	return len(um.Redos) > 0 && len(um.Undos) > 0 && current.Equal(um.top().State)
}

// Undo returns the state to restore, moving the current state onto
// the redo stack, or nil if there is nothing to undo.
func (um *Mgr) Undo(current *world.WorldState) *world.WorldState {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	if !um.hasUndo(current) {
		return nil
	}
	top := *um.top()
	if current.Equal(top.State) {
		um.Undos = um.Undos[:len(um.Undos)-1]
		um.Redos = append(um.Redos, top)
	} else {
		um.Redos = append(um.Redos, Rec{State: current.Clone()})
	}
	return um.top().State.Clone()
}

// Redo returns the state to restore, or nil if there is nothing to
// redo. A current state that differs from the last undo point
// invalidates the redo stack.
func (um *Mgr) Redo(current *world.WorldState) *world.WorldState {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	if len(um.Undos) > 0 && !current.Equal(um.top().State) {
		um.Redos = nil
		return nil
	}
	if len(um.Redos) == 0 {
		return nil
	}
	r := um.Redos[len(um.Redos)-1]
	um.Redos = um.Redos[:len(um.Redos)-1]
	um.Undos = append(um.Undos, r)
	return r.State.Clone()
}

// MarkSaved records that the given state was saved.
func (um *Mgr) MarkSaved(ws *world.WorldState) {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	if len(um.Undos) > 0 && ws.Equal(um.top().State) {
		slog.Debug("marking previous undo point as saved")
		um.top().Saved = true
		return
	}
	slog.Debug("pushing a new saved undo point")
	um.push(ws, true)
}

// IsSaved returns whether the current state is the saved one.
func (um *Mgr) IsSaved(current *world.WorldState) bool {
	um.Mu.Lock()
	defer um.Mu.Unlock()
	return len(um.Undos) > 0 && um.top().Saved && current.Equal(um.top().State)
}
