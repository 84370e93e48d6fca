// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package view schedules progressive background rendering of block
// scenes. Each [View] renders first at a coarse level, then refines
// one level at a time, and adapts its coarsest level so that
// interactive frames stay near a target time.
package view

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/logx"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/world"
)

// Task is an in-flight render. Dropping it cancels the render.
type Task struct {
	Settings *RenderSettings
	Level    int
	Cancel   *render.Cancel

	done atomic.Bool
}

// Done returns whether the render has finished, successfully or not.
func (t *Task) Done() bool { return t.done.Load() }

// Drop cancels the render.
func (t *Task) Drop() { t.Cancel.Cancel() }

// Job is the work of one render, run on a worker goroutine with its
// own snapshot of the scene.
type Job struct {
	Block      world.BlockIndex
	Generation uint64
	Level      int
	Settings   *RenderSettings
	Scene      *world.Scene
	Cancel     *render.Cancel

	task *Task
}

// Result is a finished render.
type Result struct {
	Block      world.BlockIndex
	Generation uint64
	Level      int
	Image      *image.RGBA
	Elapsed    time.Duration
}

// Run renders the job at its level, marking the task done when it
// returns. The error is [render.ErrCancelled] if the task was dropped.
func (j *Job) Run(o render.Options) (*Result, error) {
	if j.task != nil {
		defer j.task.done.Store(true)
	}
	start := time.Now()
	s := j.Settings
	w, h := render.LevelSize(s.Width, s.Height, j.Level)
	var img *image.RGBA
	var err error
	switch s.Canvas.Kind {
	case Canvas3D:
		img, err = render.Render3(j.Cancel, j.Scene, s.Canvas.View3(w, h), s.Canvas.Mode3, o)
	default:
		img, err = render.Render2(j.Cancel, j.Scene, s.Canvas.View2(w, h), s.Canvas.Mode2, o)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Block: j.Block, Generation: j.Generation, Level: j.Level, Image: img, Elapsed: time.Since(start)}, nil
}

// SpawnFunc starts a render job on a worker.
type SpawnFunc func(j *Job)

// View is the render state of a block view.
type View struct {
	Canvas Canvas

	// Image is the last completed render, scaled to full size,
	// and ImageLevel is the level it was rendered at.
	Image      *image.RGBA
	ImageLevel int

	// StartLevel is the coarsest level, adapted to the frame time.
	StartLevel int

	// Pending is the next finer level to render, or -1.
	Pending int

	Task       *Task
	Generation uint64

	// Target is the frame time target and MaxLevel bounds StartLevel.
	Target   time.Duration
	MaxLevel int
}

// New returns a view of the given canvas scheduled per the settings.
func New(c Canvas, s *config.Settings) *View {
	return &View{Canvas: c, Pending: -1, Target: s.TargetFrame(), MaxLevel: s.MaxLevel}
}

// Update schedules rendering for the given settings. A running
// task is dropped when the settings changed, unless it is still
// working on the coarsest level, which keeps dragging responsive.
func (v *View) Update(block world.BlockIndex, scene *world.Scene, s *RenderSettings, spawn SpawnFunc) {
	if v.Task != nil && !v.Task.Settings.Equal(s) && (v.Task.Done() || v.Task.Level != v.StartLevel) {
		v.Task.Drop()
		v.Task = nil
		v.Pending = -1
	}
	switch {
	case v.Task == nil:
		v.spawn(block, scene, s, v.StartLevel, spawn)
	case v.Pending >= 0:
		level := v.Pending
		v.Pending = -1
		v.spawn(block, scene, s, level, spawn)
	}
}

func (v *View) spawn(block world.BlockIndex, scene *world.Scene, s *RenderSettings, level int, spawn SpawnFunc) {
	if v.Task != nil {
		v.Task.Drop()
	}
	v.Generation++
	t := &Task{Settings: s, Level: level, Cancel: render.NewCancel()}
	v.Task = t
	slog.Log(context.Background(), logx.Trace, "spawning render", "block", block, "level", level, "generation", v.Generation)
	spawn(&Job{Block: block, Generation: v.Generation, Level: level, Settings: s, Scene: scene, Cancel: t.Cancel, task: t})
}

// Complete applies a finished render, returning false if it is stale.
func (v *View) Complete(r *Result) bool {
	if r.Generation != v.Generation || v.Task == nil {
		return false
	}
	v.Task.done.Store(true)
	v.Image = render.Upscale(r.Image, v.Task.Settings.Width, v.Task.Settings.Height)
	v.ImageLevel = r.Level
	if r.Level == v.StartLevel {
		switch {
		case r.Elapsed > v.Target:
			v.StartLevel = min(v.StartLevel+1, v.MaxLevel)
		case r.Elapsed < v.Target*3/4:
			v.StartLevel = max(v.StartLevel-1, 0)
		}
	}
	if r.Level > 0 {
		v.Pending = r.Level - 1
	}
	return true
}

// Close drops any running task.
func (v *View) Close() {
	if v.Task != nil {
		v.Task.Drop()
		v.Task = nil
	}
}
