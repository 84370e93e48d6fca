// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package undo

import (
	"testing"
	"time"

	"cogentcore.org/halfspace/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func states() (s0, s1, s2 *world.WorldState) {
	w := world.New()
	s0 = w.State()
	i := w.NewBlock("a", "output(\"x\", 1);")
	s1 = w.State()
	w.SetScript(i, "output(\"x\", 2);")
	s2 = w.State()
	return
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s0, s1, _ := states()
	um := New(s0, 200*time.Millisecond, t0)

	um.FeedState(s1, t0.Add(10*time.Millisecond))
	u := um.Undo(s1)
	require.NotNil(t, u)
	assert.True(t, u.Equal(s0))

	r := um.Redo(u)
	require.NotNil(t, r)
	assert.True(t, r.Equal(s1))
}

func TestUndoAfterDebounce(t *testing.T) {
	s0, s1, s2 := states()
	um := New(s0, 200*time.Millisecond, t0)

	// the first change after a quiet period creates an undo point
	um.FeedState(s1, t0.Add(time.Second))
	assert.Len(t, um.Undos, 2)

	// rapid changes do not
	um.FeedState(s2, t0.Add(time.Second+50*time.Millisecond))
	assert.Len(t, um.Undos, 2)

	u := um.Undo(s2)
	assert.True(t, u.Equal(s1))
	u = um.Undo(u)
	assert.True(t, u.Equal(s0))
	assert.False(t, um.HasUndo(u))
	assert.Nil(t, um.Undo(u))

	assert.True(t, um.HasRedo(u))
	r := um.Redo(u)
	assert.True(t, r.Equal(s1))
	r = um.Redo(r)
	assert.True(t, r.Equal(s2))
	assert.False(t, um.HasRedo(r))
	assert.Nil(t, um.Redo(r))
}

func TestUndoEmpty(t *testing.T) {
	s0, _, _ := states()
	um := New(s0, 0, t0)
	assert.False(t, um.HasUndo(s0))
	assert.Nil(t, um.Undo(s0))
	assert.Len(t, um.Undos, 1)
	assert.Empty(t, um.Redos)
}

func TestCheckpoint(t *testing.T) {
	s0, s1, s2 := states()
	um := New(s0, time.Hour, t0)
	um.Checkpoint(s1, t0)
	um.Checkpoint(s1, t0)
	assert.Len(t, um.Undos, 2)

	// a new change invalidates redo
	u := um.Undo(s1)
	assert.True(t, u.Equal(s0))
	um.Checkpoint(s2, t0)
	assert.False(t, um.HasRedo(s2))
	assert.Nil(t, um.Redo(s2))
}

func TestRedoInvalidatedByEdit(t *testing.T) {
	s0, s1, s2 := states()
	um := New(s0, 0, t0)
	um.Checkpoint(s1, t0)
	u := um.Undo(s1)
	require.True(t, u.Equal(s0))
	assert.Nil(t, um.Redo(s2))
	assert.Empty(t, um.Redos)
}

func TestSaved(t *testing.T) {
	s0, s1, s2 := states()
	um := New(s0, 0, t0)
	assert.False(t, um.IsSaved(s0))
	um.MarkSaved(s0)
	assert.True(t, um.IsSaved(s0))
	assert.Len(t, um.Undos, 1)

	assert.False(t, um.IsSaved(s1))
	um.MarkSaved(s2)
	assert.Len(t, um.Undos, 2)
	assert.True(t, um.IsSaved(s2))

	u := um.Undo(s2)
	assert.True(t, um.IsSaved(u))

	um.Reset(s1, true, t0)
	assert.True(t, um.IsSaved(s1))
	assert.Len(t, um.Undos, 1)
}

func TestStatesAreCopied(t *testing.T) {
	w := world.New()
	i := w.NewBlock("a", "")
	ws := w.State()
	um := New(ws, 0, t0)
	ws.Blocks[i] = world.BlockState{Name: "changed"}
	assert.Equal(t, "a", um.Undos[0].State.Blocks[i].Name)
}
