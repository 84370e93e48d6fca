// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"cogentcore.org/halfspace/bus"
	"cogentcore.org/halfspace/export"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/world"
)

// StartExport runs the export requested by a block on a worker,
// writing the result to path. The app shows an [ExportInProgress]
// modal until the export completes or is cancelled.
func (a *App) StartExport(i world.BlockIndex, path string) error {
	if a.Modal != nil {
		return ErrModalActive
	}
	b := a.World.Block(i)
	if b == nil {
		return fmt.Errorf("app: no block %d", i)
	}
	if b.Data == nil || b.Data.Export == nil {
		return fmt.Errorf("app: block %q has no export", b.Name)
	}
	req := b.Data.Export
	c := render.NewCancel()
	a.Modal = &Modal{Kind: ExportInProgress, Path: path, Cancel: c}
	tx := a.rx.Sender()
	o := a.options()
	a.goWork(func() {
		var buf bytes.Buffer
		err := export.Request(&buf, c, req, o)
		if err == nil {
			err = os.WriteFile(path, buf.Bytes(), 0666)
		}
		tx.Send(bus.ExportComplete{Path: path, Err: err})
	})
	return nil
}

// CancelExport cancels the export in progress. The modal closes when
// the worker observes the cancellation.
func (a *App) CancelExport() {
	if a.Modal.Is(ExportInProgress) {
		a.Modal.Cancel.Cancel()
	}
}

func (a *App) exportComplete(m bus.ExportComplete) {
	if !a.Modal.Is(ExportInProgress) {
		slog.Warn("received ExportComplete with unexpected modal", "modal", a.Modal)
		return
	}
	switch {
	case m.Err == nil:
		slog.Info("exported", "path", m.Path)
		a.Modal = nil
	case export.IsCancelled(m.Err):
		slog.Debug("export cancelled", "path", m.Path)
		a.Modal = nil
	default:
		a.Modal = NewError("Export failed", m.Err)
	}
}
