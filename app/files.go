// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"cogentcore.org/halfspace/bus"
	"cogentcore.org/halfspace/examples"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/localstore"
	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/world"
)

// ErrModalActive is returned by actions attempted while a modal
// is active.
var ErrModalActive = errors.New("app: a modal is active")

// Document returns the current session as a document.
func (a *App) Document() *state.Document {
	dock := state.Dock{}
	for _, p := range a.Dock.Panes {
		dock.Panes = append(dock.Panes, append([]state.Tab(nil), p...))
	}
	return state.New(a.World.State(), a.viewStates(), dock, a.Meta)
}

// LoadFromState replaces the session with a document. Results of
// work started before the load are orphaned, the undo history is
// reset and a rebuild is started.
func (a *App) LoadFromState(d *state.Document) {
	for _, v := range a.Views {
		v.Close()
	}
	a.rx.IncrementGen()
	a.World = world.FromState(d.World)
	a.Dock = d.Dock
	a.Meta = d.Meta
	a.Views = map[world.BlockIndex]*View{}
	for i, vs := range d.Views {
		c, w, h := vs.Canvas()
		a.Views[i] = a.newView(c, w, h)
	}
	a.prune()
	a.ctx = implicit.NewContext()
	a.Undo.Reset(a.World.State(), false, a.Now())

	// the rebuild in flight, if any, belongs to the old generation
	a.script = Done
	a.StartWorldRebuild()
}

// NewFile replaces the session with an empty document.
func (a *App) NewFile() {
	a.File = ""
	a.LoadFromState(state.New(world.New().State(), nil, state.Dock{}, state.Meta{}))
}

// LoadExample loads a bundled example, returning false if there is
// none with that name.
func (a *App) LoadExample(name string) bool {
	d, err := examples.Load(name)
	if err != nil {
		slog.Warn("could not load example", "name", name, "err", err)
		return false
	}
	a.File = ""
	a.LoadFromState(d)
	return true
}

// LoadFile reads a document and loads it. If the file does not
// exist, an empty document is started instead, with path as
// [App.File] so that saving creates it.
func (a *App) LoadFile(path string) error {
	d, err := state.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("starting new document", "path", path)
		a.NewFile()
		a.File = path
		return nil
	}
	if err != nil {
		return err
	}
	a.LoadFromState(d)
	a.File = path
	a.Undo.MarkSaved(a.World.State())
	return nil
}

// OpenFile reads a document on a worker; the app waits in a modal
// until the result arrives.
func (a *App) OpenFile(path string) error {
	if a.Modal != nil {
		return ErrModalActive
	}
	a.Modal = &Modal{Kind: WaitForLoad}
	tx := a.rx.Sender()
	a.goWork(func() {
		d, err := state.Open(path)
		if err != nil {
			tx.Send(bus.LoadFailed{Path: path, Err: err})
			return
		}
		tx.Send(bus.Loaded{Path: path, Document: d})
	})
	return nil
}

// CancelOpen reports that the user gave up choosing a document.
func (a *App) CancelOpen() {
	a.rx.Sender().Send(bus.CancelLoad{})
}

// Save writes the document to [App.File].
func (a *App) Save() error {
	if a.File == "" {
		return errors.New("app: no file name")
	}
	return a.SaveAs(a.File)
}

// SaveAs writes the document to a file, which becomes [App.File].
func (a *App) SaveAs(path string) error {
	if a.Modal != nil {
		return ErrModalActive
	}
	if filepath.Ext(path) == "" {
		path += state.Extension
	}
	d := a.Document()
	if err := d.Save(path); err != nil {
		return err
	}
	a.File = path
	a.Undo.MarkSaved(d.World)
	return nil
}

// IsSaved returns whether the world matches the last saved state.
func (a *App) IsSaved() bool {
	return a.Undo.IsSaved(a.World.State())
}

// storeName returns the store name of the document, from its
// metadata name if it has one.
func (a *App) storeName(name string) (string, error) {
	if name == "" && a.Meta.Name != nil {
		name = *a.Meta.Name
	}
	if name == "" {
		return "", errors.New("app: no document name")
	}
	if !strings.HasSuffix(name, localstore.Extension) {
		name += localstore.Extension
	}
	return name, localstore.ValidName(name)
}

// SaveLocal writes the document to a local store under name, or
// under its metadata name if name is empty. It refuses to overwrite
// a different document unless overwrite is set.
func (a *App) SaveLocal(s localstore.Store, name string, overwrite bool) error {
	if a.Modal != nil {
		return ErrModalActive
	}
	name, err := a.storeName(name)
	if err != nil {
		return err
	}
	if !overwrite {
		ok, err := s.Exists(name)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("app: %q already exists", name)
		}
	}
	base := strings.TrimSuffix(name, localstore.Extension)
	a.Meta.Name = &base
	d := a.Document()
	if err := s.Write(name, d.Bytes()); err != nil {
		return err
	}
	a.Undo.MarkSaved(d.World)
	return nil
}

// LoadLocal reads a document from a local store and loads it.
func (a *App) LoadLocal(s localstore.Store, name string) error {
	if a.Modal != nil {
		return ErrModalActive
	}
	if !strings.HasSuffix(name, localstore.Extension) {
		name += localstore.Extension
	}
	b, err := s.Read(name)
	if err != nil {
		return err
	}
	d, err := state.ReadBytes(b)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	a.File = ""
	a.LoadFromState(d)
	base := strings.TrimSuffix(name, localstore.Extension)
	a.Meta.Name = &base
	a.Undo.MarkSaved(a.World.State())
	return nil
}
