// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bus

import (
	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
)

// RebuildWorld carries a rebuilt world. Rebuild is the counter of
// the rebuild that produced it.
type RebuildWorld struct {
	Rebuild uint64
	World   *world.World
}

// RenderView carries a finished render.
type RenderView struct {
	Result *view.Result
}

// Loaded carries a document read from Path.
type Loaded struct {
	Path     string
	Document *state.Document
}

// LoadFailed reports a document that could not be read.
type LoadFailed struct {
	Path string
	Err  error
}

// CancelLoad reports that the user cancelled choosing a document.
type CancelLoad struct{}

// ExportComplete reports the end of an export; Err is nil on success.
type ExportComplete struct {
	Path string
	Err  error
}
