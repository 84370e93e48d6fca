// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cogentcore.org/halfspace/bus"
	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/export"
	"cogentcore.org/halfspace/localstore"
	"cogentcore.org/halfspace/mesh"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newApp(t *testing.T) (*App, *clock) {
	c := &clock{t: time.Unix(1000, 0)}
	a := New(config.New())
	a.Now = c.now
	a.Undo.Reset(a.World.State(), false, c.now())
	t.Cleanup(a.Close)
	return a, c
}

func settle(t *testing.T, a *App) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, a.Settle(ctx))
}

func TestRebuild(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) {
		i = w.NewBlock("a", `output("x", 1 + 2);`)
	})
	assert.Equal(t, Running, a.ScriptState())
	settle(t, a)
	assert.Equal(t, Done, a.ScriptState())

	d := a.World.Blocks[i].Data
	require.NotNil(t, d)
	require.NoError(t, d.Error)
	assert.Equal(t, int64(3), d.IoValue("x").Value)
}

func TestRebuildCoalescing(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) {
		i = w.NewBlock("a", `output("x", 1);`)
	})
	a.Edit(func(w *world.World) { w.SetScript(i, `output("x", 2);`) })
	a.Edit(func(w *world.World) { w.SetScript(i, `output("x", 3);`) })
	assert.True(t, a.changed)
	assert.Equal(t, uint64(1), a.rebuild)

	settle(t, a)
	assert.Equal(t, uint64(2), a.rebuild)
	assert.Equal(t, int64(3), a.World.Blocks[i].Data.IoValue("x").Value)
}

func TestLoadOrphansRebuild(t *testing.T) {
	a, _ := newApp(t)
	a.Edit(func(w *world.World) { w.NewBlock("old", `output("x", 1);`) })
	gen := a.Generation()

	ws := world.New()
	j := ws.NewBlock("new", `output("y", 2);`)
	a.LoadFromState(state.New(ws.State(), nil, state.Dock{}, state.Meta{}))
	assert.Equal(t, gen+1, a.Generation())

	settle(t, a)
	_, ok := a.World.ByName("old")
	assert.False(t, ok)
	assert.Equal(t, int64(2), a.World.Blocks[j].Data.IoValue("y").Value)
}

func TestStaleRenderDropped(t *testing.T) {
	a, _ := newApp(t)
	tx := a.rx.GenSender()
	a.rx.IncrementGen()
	tx.Send(bus.RenderView{Result: &view.Result{Block: 0}})
	assert.Equal(t, 0, a.HandleMessages())
}

func TestViewRenders(t *testing.T) {
	a, _ := newApp(t)
	require.True(t, a.LoadExample("circle"))
	require.Contains(t, a.Views, world.BlockIndex(1))
	a.Resize(1, 64, 48)
	settle(t, a)

	v := a.Views[1]
	require.NotNil(t, v.Image)
	assert.Equal(t, 0, v.ImageLevel)
	assert.Equal(t, -1, v.Pending)
	assert.Equal(t, 64, v.Image.Bounds().Dx())
	assert.Equal(t, 48, v.Image.Bounds().Dy())
}

func TestOpenCloseView(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) {
		i = w.NewBlock("c", `output("s", circle(#{ radius: 1 }));`)
	})
	assert.Nil(t, a.OpenView(99, view.New2D(render.Bitfield), 32, 32))
	v := a.OpenView(i, view.New2D(render.Bitfield), 32, 32)
	require.NotNil(t, v)
	assert.Same(t, v, a.OpenView(i, view.New2D(render.SdfApprox), 32, 32))
	assert.Equal(t, []state.Tab{{Index: i, Mode: state.ViewTab}}, a.Dock.Tabs())
	settle(t, a)
	assert.NotNil(t, v.Image)

	a.CloseView(i)
	assert.Empty(t, a.Views)
	assert.Empty(t, a.Dock.Tabs())
}

func TestUndoRedo(t *testing.T) {
	a, c := newApp(t)
	c.advance(time.Second)
	var i world.BlockIndex
	a.Edit(func(w *world.World) { i = w.NewBlock("a", `output("x", 1);`) })
	a.OpenView(i, view.New2D(render.Bitfield), 16, 16)
	a.Tick(false, false)
	settle(t, a)

	require.True(t, a.UndoEdit())
	assert.True(t, a.World.IsEmpty())
	assert.Empty(t, a.Views, "views of removed blocks are pruned")
	assert.Empty(t, a.Dock.Tabs())
	settle(t, a)

	require.True(t, a.RedoEdit())
	assert.Len(t, a.World.Order, 1)
	settle(t, a)
	assert.False(t, a.RedoEdit())
}

func TestUndoIgnoredDuringDrag(t *testing.T) {
	a, c := newApp(t)
	c.advance(time.Second)
	a.Edit(func(w *world.World) { w.NewBlock("a", "") })
	a.Tick(true, false)
	assert.Len(t, a.Undo.Undos, 1)
	a.Tick(false, true)
	assert.Len(t, a.Undo.Undos, 2)
}

func TestUndoBlockedByModal(t *testing.T) {
	a, c := newApp(t)
	c.advance(time.Second)
	a.Edit(func(w *world.World) { w.NewBlock("a", "") })
	a.Tick(false, false)
	a.Modal = &Modal{Kind: WaitForLoad}
	assert.False(t, a.UndoEdit())
	assert.Len(t, a.World.Order, 1)
}

func TestExportCancelled(t *testing.T) {
	a, _ := newApp(t)
	c := render.NewCancel()
	a.Modal = &Modal{Kind: ExportInProgress, Cancel: c}
	a.CancelExport()
	assert.True(t, c.IsCancelled())

	a.rx.Sender().Send(bus.ExportComplete{Err: &export.Error{Kind: export.Cancelled}})
	a.HandleMessages()
	assert.Nil(t, a.Modal, "cancellation closes the modal silently")
}

func TestExportFailed(t *testing.T) {
	a, _ := newApp(t)
	a.Modal = &Modal{Kind: ExportInProgress, Cancel: render.NewCancel()}
	a.rx.Sender().Send(bus.ExportComplete{Err: &export.Error{Kind: export.InvalidBounds}})
	a.HandleMessages()
	require.True(t, a.Modal.Is(ErrorModal))
	assert.Equal(t, "Export failed", a.Modal.Title)
	a.CloseModal()
	assert.Nil(t, a.Modal)
}

func TestExportMesh(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) {
		i = w.NewBlock("e", `export_mesh(sphere(#{ radius: 0.5 }), [-1, -1, -1], [1, 1, 1], 0.1);`)
	})
	settle(t, a)
	path := filepath.Join(t.TempDir(), "out.stl")
	require.NoError(t, a.StartExport(i, path))
	assert.ErrorIs(t, a.StartExport(i, path), ErrModalActive)
	settle(t, a)
	assert.Nil(t, a.Modal)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	m, err := mesh.ReadSTL(f)
	require.NoError(t, err)
	assert.NotEmpty(t, m.Triangles)
}

func TestExportCancelledWhileRunning(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) {
		i = w.NewBlock("e", `export_mesh(sphere(#{ radius: 0.5 }), [-1, -1, -1], [1, 1, 1], 0.002);`)
	})
	settle(t, a)
	path := filepath.Join(t.TempDir(), "out.stl")
	require.NoError(t, a.StartExport(i, path))
	a.CancelExport()
	settle(t, a)
	assert.Nil(t, a.Modal)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestExportMissing(t *testing.T) {
	a, _ := newApp(t)
	var i world.BlockIndex
	a.Edit(func(w *world.World) { i = w.NewBlock("e", "") })
	settle(t, a)
	assert.Error(t, a.StartExport(i, "x.stl"))
	assert.Nil(t, a.Modal)
}

func TestSaveLoad(t *testing.T) {
	a, _ := newApp(t)
	require.True(t, a.LoadExample("blend"))
	for i := range a.Views {
		a.Resize(i, 32, 32)
	}
	settle(t, a)
	assert.False(t, a.IsSaved())

	path := filepath.Join(t.TempDir(), "doc")
	require.NoError(t, a.SaveAs(path))
	assert.Equal(t, path+state.Extension, a.File)
	assert.True(t, a.IsSaved())

	b, _ := newApp(t)
	require.NoError(t, b.LoadFile(a.File))
	assert.True(t, b.IsSaved())
	assert.True(t, b.World.Equal(a.World.State()))
	assert.Equal(t, a.Dock, b.Dock)
	assert.Len(t, b.Views, len(a.Views))
}

func TestOpenFile(t *testing.T) {
	a, _ := newApp(t)
	path := filepath.Join(t.TempDir(), "doc.half")
	ws := world.New()
	ws.NewBlock("a", `output("x", 1);`)
	require.NoError(t, state.New(ws.State(), nil, state.Dock{}, state.Meta{}).Save(path))

	require.NoError(t, a.OpenFile(path))
	assert.True(t, a.Modal.Is(WaitForLoad))
	assert.ErrorIs(t, a.OpenFile(path), ErrModalActive)
	settle(t, a)
	assert.Nil(t, a.Modal)
	assert.Equal(t, path, a.File)
	assert.Len(t, a.World.Order, 1)
}

func TestOpenFileFailed(t *testing.T) {
	a, _ := newApp(t)
	require.NoError(t, a.OpenFile(filepath.Join(t.TempDir(), "missing.half")))
	settle(t, a)
	require.True(t, a.Modal.Is(ErrorModal))
	assert.Equal(t, "Load failed", a.Modal.Title)
}

func TestCancelOpen(t *testing.T) {
	a, _ := newApp(t)
	a.Modal = &Modal{Kind: WaitForLoad}
	a.CancelOpen()
	a.HandleMessages()
	assert.Nil(t, a.Modal)
}

func TestLocalStore(t *testing.T) {
	s, err := localstore.NewMemStore()
	require.NoError(t, err)
	a, _ := newApp(t)
	require.True(t, a.LoadExample("circle"))
	settle(t, a)
	assert.Error(t, a.SaveLocal(s, "not valid", false))

	require.NoError(t, a.SaveLocal(s, "mine", false))
	assert.True(t, a.IsSaved())
	assert.Error(t, a.SaveLocal(s, "mine", false))
	require.NoError(t, a.SaveLocal(s, "", true))

	b, _ := newApp(t)
	require.NoError(t, b.LoadLocal(s, "mine"))
	assert.Equal(t, "mine", *b.Meta.Name)
	assert.True(t, b.World.Equal(a.World.State()))
	assert.True(t, b.IsSaved())
}

func TestNewFile(t *testing.T) {
	a, _ := newApp(t)
	require.True(t, a.LoadExample("colors"))
	a.File = "x.half"
	a.NewFile()
	assert.Empty(t, a.File)
	assert.True(t, a.World.IsEmpty())
	assert.Empty(t, a.Views)
	assert.False(t, a.LoadExample("nope"))
}

func TestLoadMissingFile(t *testing.T) {
	a, _ := newApp(t)
	require.True(t, a.LoadExample("circle"))
	path := filepath.Join(t.TempDir(), "new.half")
	require.NoError(t, a.LoadFile(path))
	settle(t, a)
	assert.Equal(t, path, a.File)
	assert.True(t, a.World.IsEmpty())
	assert.Empty(t, a.Views)

	a.Edit(func(w *world.World) { w.NewBlock("a", `output("x", 1);`) })
	settle(t, a)
	require.NoError(t, a.Save())
	d, err := state.Open(path)
	require.NoError(t, err)
	assert.True(t, world.FromState(d.World).Equal(a.World.State()))

	assert.Error(t, a.LoadFile(t.TempDir()))
	assert.Equal(t, path, a.File)
}
