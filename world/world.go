// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package world implements a document of chained script blocks and
// the evaluator that rebuilds it. Blocks are evaluated in order; the
// outputs of each block are published under its name, so that the
// input expressions of later blocks can refer to them.
package world

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/slicesx"
	"cogentcore.org/halfspace/implicit"
	"github.com/jinzhu/copier"
)

// World is an ordered list of blocks with transient evaluation data.
type World struct {
	// NextIndex is the next [BlockIndex] to be minted.
	NextIndex BlockIndex

	// Order is the evaluation order of blocks.
	Order []BlockIndex

	// Blocks has every block in Order.
	Blocks map[BlockIndex]*Block
}

// New returns a new empty [World].
func New() *World {
	return &World{Blocks: map[BlockIndex]*Block{}}
}

// FromState returns a new [World] with the given persistent state
// and no evaluation data. The state is copied.
func FromState(ws *WorldState) *World {
	st := ws.Clone()
	w := &World{NextIndex: st.NextIndex, Order: st.Order, Blocks: make(map[BlockIndex]*Block, len(st.Blocks))}
	for i, b := range st.Blocks {
		inputs := b.Inputs
		if inputs == nil {
			inputs = map[string]string{}
		}
		w.Blocks[i] = &Block{Name: b.Name, Script: b.Script, Inputs: inputs}
	}
	return w
}

// State returns a deep copy of the persistent state of the world.
func (w *World) State() *WorldState {
	ws := &WorldState{NextIndex: w.NextIndex, Order: slices.Clone(w.Order), Blocks: make(map[BlockIndex]BlockState, len(w.Blocks))}
	for i, b := range w.Blocks {
		ws.Blocks[i] = BlockState{Name: b.Name, Script: b.Script, Inputs: maps.Clone(b.Inputs)}
	}
	return ws
}

// Clone returns a deep copy of the state, safe to hand to
// another goroutine.
func (ws *WorldState) Clone() *WorldState {
	c := &WorldState{}
	errors.Log(copier.CopyWithOption(c, ws, copier.Option{DeepCopy: true}))
	return c
}

// Equal returns whether the persistent state of the world
// equals the given state.
func (w *World) Equal(ws *WorldState) bool {
	return w.State().Equal(ws)
}

// IsEmpty returns whether the world has no blocks.
func (w *World) IsEmpty() bool {
	return len(w.Order) == 0
}

// Block returns the block with the given index, or nil.
func (w *World) Block(i BlockIndex) *Block {
	return w.Blocks[i]
}

// ByName returns the index of the first block with the given name.
func (w *World) ByName(name string) (BlockIndex, bool) {
	for _, i := range w.Order {
		if w.Blocks[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// uniqueName returns the given name if unused, or else the
// first unused name with a numeric suffix, like box_000.
func (w *World) uniqueName(s string) string {
	names := map[string]bool{}
	for _, b := range w.Blocks {
		names[b.Name] = true
	}
	if !names[s] {
		return s
	}
	for i := 0; ; i++ {
		n := fmt.Sprintf("%s_%03d", s, i)
		if !names[n] {
			return n
		}
	}
}

func (w *World) mint() BlockIndex {
	i := w.NextIndex
	w.NextIndex++
	return i
}

// NewBlock appends a new block with a name based on the given one
// and returns its index.
func (w *World) NewBlock(name, script string) BlockIndex {
	i := w.mint()
	w.Blocks[i] = &Block{Name: w.uniqueName(name), Script: script, Inputs: map[string]string{}}
	w.Order = append(w.Order, i)
	return i
}

// NewBlockFrom appends a new block built from a library entry.
// If the entry has exactly one empty tree input and the last block
// exposes a tree through exactly one output or exactly one input,
// that input is pre-populated with the name of the last block.
func (w *World) NewBlockFrom(def ShapeDefinition) BlockIndex {
	last := w.lastTreeBlock()
	i := w.mint()
	b := &Block{Name: w.uniqueName(def.BlockName()), Script: def.Script, Inputs: map[string]string{}}
	var treeInputs []string
	for _, in := range def.Inputs {
		b.Inputs[in.Name] = in.Text
		if (in.Type == TreeInput || in.Type == TreeListInput) && in.Text == "" {
			treeInputs = append(treeInputs, in.Name)
		}
	}
	if len(treeInputs) == 1 && last != "" {
		b.Inputs[treeInputs[0]] = last
	}
	w.Blocks[i] = b
	w.Order = append(w.Order, i)
	return i
}

// lastTreeBlock returns the name of the last block if it exposes
// a single tree, or "".
func (w *World) lastTreeBlock() string {
	if len(w.Order) == 0 {
		return ""
	}
	b := w.Blocks[w.Order[len(w.Order)-1]]
	if b.Data == nil {
		return ""
	}
	outputs, inputs := 0, 0
	hasTree := false
	for _, v := range b.Data.IoValues {
		if v.Kind == Output {
			outputs++
		} else {
			inputs++
			if v.Err != "" {
				continue
			}
		}
		if _, ok := v.Value.(*implicit.Node); ok {
			hasTree = true
		}
	}
	if hasTree && ((outputs == 1) != (inputs == 1)) {
		return b.Name
	}
	return ""
}

// Remove removes the block with the given index. It returns
// whether the block existed.
func (w *World) Remove(i BlockIndex) bool {
	return w.Retain(func(j BlockIndex) bool { return j != i })
}

// Retain keeps only the blocks for which keep returns true.
// It returns whether anything changed.
func (w *World) Retain(keep func(i BlockIndex) bool) bool {
	n := len(w.Order)
	maps.DeleteFunc(w.Blocks, func(i BlockIndex, _ *Block) bool { return !keep(i) })
	w.Order = slices.DeleteFunc(w.Order, func(i BlockIndex) bool { return !keep(i) })
	return len(w.Order) != n
}

// Move moves the block at position from to position to.
func (w *World) Move(from, to int) {
	if from == to || from < 0 || to < 0 || from >= len(w.Order) || to >= len(w.Order) {
		return
	}
	w.Order = slicesx.Move(w.Order, from, to)
}

// Rename sets the name of a block. Name validity is checked by
// the evaluator, so that an invalid name is reported on the block.
func (w *World) Rename(i BlockIndex, name string) {
	if b := w.Blocks[i]; b != nil {
		b.Name = name
	}
}

// SetScript sets the script of a block.
func (w *World) SetScript(i BlockIndex, script string) {
	if b := w.Blocks[i]; b != nil {
		b.Script = script
	}
}

// SetInput sets the expression text of a block input.
func (w *World) SetInput(i BlockIndex, name, text string) {
	if b := w.Blocks[i]; b != nil {
		b.Inputs[name] = text
	}
}

// ImportData merges the evaluation data of a world rebuilt from a
// snapshot of this one, which may have been edited in the meantime.
//
// A block that evaluated successfully takes the new data; its inputs
// are reduced to the new set without overwriting text edited since the
// snapshot. A failed block keeps its previous outputs so that the
// display does not jitter: outputs that vanished are marked as failed,
// and new values are merged in by source line.
func (w *World) ImportData(o *World) {
	for i, b := range w.Blocks {
		ob := o.Blocks[i]
		if ob == nil || ob.Data == nil {
			continue
		}
		nd := ob.Data
		switch {
		case nd.Error == nil:
			b.Data = nd
			maps.DeleteFunc(b.Inputs, func(k, _ string) bool {
				_, ok := ob.Inputs[k]
				return !ok
			})
		case b.Data != nil:
			pd := b.Data
			pd.Stdout = nd.Stdout
			pd.Debug = nd.Debug
			pd.Error = nd.Error
			pd.View = nd.View
			pd.Export = nd.Export
			pd.IoValues = mergeIoValues(pd.IoValues, nd.IoValues)
		default:
			b.Data = nd
		}
		for k, v := range ob.Inputs {
			if _, ok := b.Inputs[k]; !ok {
				b.Inputs[k] = v
			}
		}
	}
}

// FailedText is the display text of outputs that vanished
// after a failed evaluation.
const FailedText = "[evaluation failed]"

func mergeIoValues(old, nv []IoValue) []IoValue {
	byName := map[string]IoValue{}
	for _, v := range nv {
		byName[v.Name] = v
	}
	for i := range old {
		if n, ok := byName[old[i].Name]; ok {
			old[i] = n
			delete(byName, old[i].Name)
		} else if old[i].Kind == Output {
			old[i].Value = nil
			old[i].Text = FailedText
		}
	}
	var rest []IoValue
	for _, v := range nv {
		if _, ok := byName[v.Name]; ok {
			rest = append(rest, v)
		}
	}
	slices.SortStableFunc(rest, func(a, b IoValue) int { return cmp.Compare(a.Line, b.Line) })
	out := make([]IoValue, 0, len(old)+len(rest))
	for len(old) > 0 || len(rest) > 0 {
		if len(rest) == 0 || (len(old) > 0 && old[0].Line < rest[0].Line) {
			out = append(out, old[0])
			old = old[1:]
		} else {
			out = append(out, rest[0])
			rest = rest[1:]
		}
	}
	return out
}

// LogSummary logs the evaluation status of every block at debug level.
func (w *World) LogSummary() {
	for _, i := range w.Order {
		b := w.Blocks[i]
		if b.Data == nil {
			slog.Debug("block not evaluated", "block", b.Name)
			continue
		}
		slog.Debug("block evaluated", "block", b.Name, "values", len(b.Data.IoValues), "view", b.Data.View != nil, "error", b.Data.Error)
	}
}
