// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/implicit"
	"cogentcore.org/halfspace/logx"
	"cogentcore.org/halfspace/script"
)

// Evaluator rebuilds worlds. It holds a script engine with the
// geometry library registered; each block runs on a clone of it.
// An Evaluator may be shared by concurrent rebuilds.
type Evaluator struct {
	engine *script.Engine
}

// NewEvaluator returns an [Evaluator] with the script limits
// of the given settings.
func NewEvaluator(s *config.Settings) *Evaluator {
	e := script.NewEngine()
	e.MaxOperations = s.MaxOperations
	e.MaxExprDepth = s.MaxExprDepth
	e.MaxCallDepth = s.MaxCallDepth
	RegisterGeometry(e)
	return &Evaluator{engine: e}
}

// Engine returns a copy of the engine used for evaluation,
// without the per-block host functions.
func (ev *Evaluator) Engine() *script.Engine {
	return ev.engine.Clone()
}

// Rebuild returns a new world built from the given state,
// with every block evaluated.
func (ev *Evaluator) Rebuild(ws *WorldState) *World {
	w := FromState(ws)
	ev.RebuildWorld(w)
	return w
}

// NewScope returns the initial input scope, with the
// coordinate axes bound to x, y and z.
func NewScope() *script.Scope {
	s := script.NewScope()
	s.PushConstant("x", implicit.X())
	s.PushConstant("y", implicit.Y())
	s.PushConstant("z", implicit.Z())
	return s
}

// RebuildWorld evaluates every block of the world in order,
// replacing its data. Each block sees the outputs of the blocks
// before it; a block that fails publishes nothing.
func (ev *Evaluator) RebuildWorld(w *World) {
	scope := NewScope()
	names := map[string]BlockIndex{}
	for _, i := range w.Order {
		ev.rebuildBlock(i, w.Blocks[i], scope, names)
	}
	slog.Log(context.Background(), logx.Trace, "world rebuilt", "blocks", len(w.Order))
}

// blockEval is the state shared with the host functions
// of a single block evaluation.
type blockEval struct {
	mu sync.Mutex

	engine *script.Engine
	scope  *script.Scope

	names     map[string]bool
	values    []IoValue
	view      *Scene
	export    *ExportRequest
	stdout    []string
	debug     map[int][]string
	inputs    map[string]string
	newInputs map[string]bool
}

func (ev *Evaluator) rebuildBlock(i BlockIndex, b *Block, scope *script.Scope, names map[string]BlockIndex) {
	data := &BlockData{Debug: map[int][]string{}}
	b.Data = data
	if b.Inputs == nil {
		b.Inputs = map[string]string{}
	}

	ast, err := ev.engine.Compile(b.Script)
	if err != nil {
		data.Error = evalError(err)
		return
	}

	be := &blockEval{
		engine:    ev.engine,
		scope:     scope,
		names:     map[string]bool{},
		debug:     data.Debug,
		inputs:    b.Inputs,
		newInputs: map[string]bool{},
	}
	e := ev.engine.Clone()
	be.bind(e)
	err = e.Run(scope.Clone(), ast)

	data.Stdout = strings.Join(be.stdout, "\n")
	data.IoValues = be.values
	data.View = be.view
	data.Export = be.export
	if err != nil {
		data.Error = evalError(err)
	} else {
		for k := range b.Inputs {
			if !be.newInputs[k] {
				delete(b.Inputs, k)
			}
		}
	}

	if !script.IsIdentifier(b.Name) {
		if data.Error == nil {
			data.Error = &NameError{Kind: InvalidIdentifier, Name: b.Name}
		}
		return
	}
	if _, ok := names[b.Name]; ok {
		if data.Error == nil {
			data.Error = &NameError{Kind: DuplicateName, Name: b.Name}
		}
		return
	}
	names[b.Name] = i
	if data.Error != nil {
		return
	}
	publish(b, scope, be.viewCalled())
}

func (be *blockEval) viewCalled() bool {
	return be.view != nil
}

// publish binds the outputs of a successfully evaluated block
// into the scope under the block name.
func publish(b *Block, scope *script.Scope, viewCalled bool) {
	data := b.Data
	var outputs []IoValue
	for _, v := range data.IoValues {
		if v.Kind == Output {
			outputs = append(outputs, v)
		}
	}
	if len(outputs) == 1 {
		if t, ok := outputs[0].Value.(*implicit.Node); ok {
			scope.Push(b.Name, t)
			if !viewCalled {
				data.View = SceneOf(t)
			}
			return
		}
	}
	m := script.NewMap()
	for _, v := range outputs {
		m.Set(v.Name, script.Clone(v.Value))
	}
	for _, v := range data.IoValues {
		if v.Kind == Input && v.Err == "" {
			m.Set(v.Name, script.Clone(v.Value))
		}
	}
	scope.Push(b.Name, m)
}

// insertName registers an input or output name.
func (be *blockEval) insertName(c *script.Call, name string) error {
	if !script.IsIdentifier(name) {
		return c.Errorf("forbidden variable name '%s'", name)
	}
	if be.names[name] {
		return c.Errorf("io '%s' already exists", name)
	}
	be.names[name] = true
	return nil
}

func (be *blockEval) input(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	if err := script.ArgCount(c, args, 1); err != nil {
		return nil, err
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, c.Errorf("input name must be a string, found %s", script.TypeName(args[0]))
	}
	if err := be.insertName(c, name); err != nil {
		return nil, err
	}
	text, ok := be.inputs[name]
	if !ok {
		text = "0"
		be.inputs[name] = text
	}
	be.newInputs[name] = true
	v, err := be.engine.Eval(be.scope.Clone(), text)
	iv := IoValue{Name: name, Kind: Input, Line: c.Line, Value: script.Clone(v)}
	if err != nil {
		iv.Value = nil
		iv.Err = evalError(err).Message
	}
	be.values = append(be.values, iv)
	if err != nil {
		return nil, c.Errorf("error in input expression")
	}
	return script.Clone(v), nil
}

func (be *blockEval) output(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	if err := script.ArgCount(c, args, 2); err != nil {
		return nil, err
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, c.Errorf("output name must be a string, found %s", script.TypeName(args[0]))
	}
	if err := be.insertName(c, name); err != nil {
		return nil, err
	}
	v := script.Clone(args[1])
	be.values = append(be.values, IoValue{Name: name, Kind: Output, Line: c.Line, Value: v, Text: Text(v)})
	return nil, nil
}

func (be *blockEval) setView(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	if err := script.ArgCount(c, args, 1); err != nil {
		return nil, err
	}
	if be.view != nil {
		return nil, c.Errorf("cannot have multiple views in a single block")
	}
	s, err := SceneFrom(args[0])
	if err != nil {
		return nil, c.Errorf("%v", err)
	}
	be.view = s
	return nil, nil
}

func (be *blockEval) print(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	be.stdout = append(be.stdout, joinArgs(args))
	return nil, nil
}

func (be *blockEval) debugMsg(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	be.debug[c.Line] = append(be.debug[c.Line], joinArgs(args))
	return nil, nil
}

func joinArgs(args []script.Value) string {
	s := make([]string, len(args))
	for i, a := range args {
		s[i] = script.Format(a)
	}
	return strings.Join(s, " ")
}

func (be *blockEval) setExport(c *script.Call, r *ExportRequest) error {
	if be.export != nil {
		return c.Errorf("cannot have multiple exports in a single block")
	}
	be.export = r
	return nil
}

func (be *blockEval) exportMesh(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	if err := script.ArgCount(c, args, 4); err != nil {
		return nil, err
	}
	t, err := treeArg(c, args, 0)
	if err != nil {
		return nil, err
	}
	lo, err := Vector3(args[1])
	if err != nil {
		return nil, c.Errorf("lower: %v", err)
	}
	hi, err := Vector3(args[2])
	if err != nil {
		return nil, c.Errorf("upper: %v", err)
	}
	f, err := script.Float(c, args, 3)
	if err != nil {
		return nil, err
	}
	return nil, be.setExport(c, &ExportRequest{Kind: MeshExport, Tree: t, Lower: lo, Upper: hi, Feature: float32(f)})
}

func (be *blockEval) exportImage(c *script.Call, args []script.Value) (script.Value, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	if err := script.ArgCount(c, args, 4); err != nil {
		return nil, err
	}
	s, err := SceneFrom(args[0])
	if err != nil {
		return nil, c.Errorf("%v", err)
	}
	lo, err := Vector2(args[1])
	if err != nil {
		return nil, c.Errorf("lower: %v", err)
	}
	hi, err := Vector2(args[2])
	if err != nil {
		return nil, c.Errorf("upper: %v", err)
	}
	r, err := script.Float(c, args, 3)
	if err != nil {
		return nil, err
	}
	req := &ExportRequest{Kind: ImageExport, Scene: s, Resolution: float32(r)}
	req.Lower.X, req.Lower.Y = lo.X, lo.Y
	req.Upper.X, req.Upper.Y = hi.X, hi.Y
	return nil, be.setExport(c, req)
}

// bind registers the per-block host functions.
func (be *blockEval) bind(e *script.Engine) {
	e.Register("input", be.input)
	e.Register("output", be.output)
	e.Register("view", be.setView)
	e.Register("print", be.print)
	e.Register("debug", be.debugMsg)
	e.Register("export_mesh", be.exportMesh)
	e.Register("export_image", be.exportImage)
}

// Summary returns a short human-readable status of a block.
func (b *Block) Summary() string {
	switch {
	case b.Data == nil:
		return "not evaluated"
	case b.Data.Error != nil:
		return fmt.Sprintf("error: %v", b.Data.Error)
	case b.Data.View != nil:
		return fmt.Sprintf("ok, %d values, view", len(b.Data.IoValues))
	}
	return fmt.Sprintf("ok, %d values", len(b.Data.IoValues))
}
