// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"cogentcore.org/core/math32"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/script"
)

// BlockIndex identifies a block. Indexes are minted monotonically
// by the [World] and never reused.
type BlockIndex uint64

// Block is a named script with persistent input expressions and
// transient evaluation data.
type Block struct {
	Name   string
	Script string

	// Inputs maps input names to expression text.
	Inputs map[string]string

	// Data is the result of the last evaluation, or nil.
	Data *BlockData
}

// IsValid returns whether the block has been evaluated without error.
func (b *Block) IsValid() bool {
	return b.Data != nil && b.Data.Error == nil
}

// View returns the scene published by the block, or nil.
func (b *Block) View() *Scene {
	if b.Data == nil {
		return nil
	}
	return b.Data.View
}

// BlockData is transient evaluation data for a block.
// It is rebuilt from persistent state and never saved.
type BlockData struct {
	// Stdout is the output of print calls, joined by newlines.
	Stdout string

	// Debug maps source lines to debug messages.
	Debug map[int][]string

	// Error is a [*NameError] or an [*EvalError], or nil.
	Error error

	// IoValues are the inputs and outputs in the order declared.
	IoValues []IoValue

	View   *Scene
	Export *ExportRequest
}

// IoValue returns the IO value with the given name, or nil.
func (d *BlockData) IoValue(name string) *IoValue {
	for i := range d.IoValues {
		if d.IoValues[i].Name == name {
			return &d.IoValues[i]
		}
	}
	return nil
}

// IoKinds are the kinds of [IoValue].
type IoKinds int32

const (
	Input IoKinds = iota
	Output
)

// IoValue is an input or output of a block.
type IoValue struct {
	Name string
	Kind IoKinds

	// Line is the source line of the input or output call.
	Line int

	// Value is the script value: the result of an input
	// expression or the output value.
	Value script.Value

	// Err is the input expression error message, if any.
	Err string

	// Text is the display text of an output.
	Text string
}

// IsOk returns whether the value is an output or a successful input.
func (v *IoValue) IsOk() bool {
	return v.Kind == Output || v.Err == ""
}

// Typed returns the typed interpretation of the value.
func (v *IoValue) Typed() Value {
	return FromScript(v.Value)
}

// NameErrors are the kinds of [NameError].
type NameErrors int32

const (
	InvalidIdentifier NameErrors = iota
	DuplicateName
)

// NameError is a problem with a block name.
type NameError struct {
	Kind NameErrors
	Name string
}

func (e *NameError) Error() string {
	if e.Kind == DuplicateName {
		return fmt.Sprintf("duplicate name %q", e.Name)
	}
	return fmt.Sprintf("invalid identifier %q", e.Name)
}

// EvalError is a script compile or runtime error.
type EvalError struct {
	// Line is the 1-based source line, or 0 if unknown.
	Line    int
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// evalError converts a script error to an [EvalError].
func evalError(err error) *EvalError {
	var pe *script.ParseError
	if errors.As(err, &pe) {
		return &EvalError{Line: pe.Line, Message: pe.Msg}
	}
	var ee *script.EvalError
	if errors.As(err, &ee) {
		return &EvalError{Line: ee.Line, Message: ee.Msg}
	}
	return &EvalError{Message: err.Error()}
}

// ExportKinds are the kinds of [ExportRequest].
type ExportKinds int32

const (
	MeshExport ExportKinds = iota
	ImageExport
)

// ExportRequest is a request from a script to export a mesh
// or an image.
type ExportRequest struct {
	Kind ExportKinds

	// Tree is the shape for a mesh export.
	Tree *implicit.Node

	// Scene is the scene for an image export.
	Scene *Scene

	// Lower and Upper bound the export region; image exports
	// use only X and Y.
	Lower, Upper math32.Vector3

	// Feature is the minimum feature size of a mesh export.
	Feature float32

	// Resolution is the pixels per unit of an image export.
	Resolution float32
}

// BlockState is the persistent state of a block.
type BlockState struct {
	Name   string            `json:"name"`
	Script string            `json:"script"`
	Inputs map[string]string `json:"inputs"`
}

// WorldState is the persistent state of a [World].
type WorldState struct {
	NextIndex BlockIndex                `json:"next_index"`
	Order     []BlockIndex              `json:"order"`
	Blocks    map[BlockIndex]BlockState `json:"blocks"`
}

// Equal returns whether the two states are the same.
func (ws *WorldState) Equal(o *WorldState) bool {
	if ws.NextIndex != o.NextIndex || len(ws.Order) != len(o.Order) {
		return false
	}
	for i := range ws.Order {
		if ws.Order[i] != o.Order[i] {
			return false
		}
	}
	return maps.EqualFunc(ws.Blocks, o.Blocks, func(a, b BlockState) bool {
		return a.Name == b.Name && a.Script == b.Script && maps.Equal(a.Inputs, b.Inputs)
	})
}

// String returns a one-line summary of the state for logging.
func (ws *WorldState) String() string {
	names := make([]string, len(ws.Order))
	for i, bi := range ws.Order {
		names[i] = ws.Blocks[bi].Name
	}
	return fmt.Sprintf("world(%d blocks: %s)", len(ws.Order), strings.Join(names, ", "))
}
