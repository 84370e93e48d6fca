// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/png"
	"os"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/halfspace/app"
	"cogentcore.org/halfspace/render"
	"cogentcore.org/halfspace/state"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
	"github.com/spf13/cobra"
)

// findBlock returns the block with the given name, or if name is
// empty the first block for which ok returns true.
func findBlock(a *app.App, name string, ok func(b *world.Block) bool) (world.BlockIndex, error) {
	if name != "" {
		i, found := a.World.ByName(name)
		if !found {
			var names []string
			for _, j := range a.World.Order {
				names = append(names, a.World.Blocks[j].Name)
			}
			if s := suggest(name, names); s != "" {
				return 0, fmt.Errorf("no block named %q; did you mean %q?", name, s)
			}
			return 0, fmt.Errorf("no block named %q", name)
		}
		return i, nil
	}
	for _, i := range a.World.Order {
		if ok(a.World.Blocks[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable block")
}

func newExportCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run the export requested by a block script",
	}
	for _, kind := range []world.ExportKinds{world.MeshExport, world.ImageExport} {
		var block, out string
		name, ext := "mesh", ".stl"
		if kind == world.ImageExport {
			name, ext = "image", ".png"
		}
		sub := &cobra.Command{
			Use:   name + " [file]",
			Short: fmt.Sprintf("Write the %s requested by a block to a %s file", name, ext),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if out == "" {
					out = "out" + ext
				}
				return Export(cmd, o, args, kind, block, out)
			},
		}
		sub.Flags().StringVarP(&block, "block", "b", "", "name of the block; default is the first with an export")
		sub.Flags().StringVarP(&out, "output", "o", "", "output file; default is out"+ext)
		cmd.AddCommand(sub)
	}
	return cmd
}

// Export runs the export of the given kind requested by a block,
// writing it to out.
func Export(cmd *cobra.Command, o *Options, args []string, kind world.ExportKinds, block, out string) error {
	a, _, err := o.open(cmd.Context(), args)
	if err != nil {
		return err
	}
	defer a.Close()
	i, err := findBlock(a, block, func(b *world.Block) bool {
		return b.Data != nil && b.Data.Export != nil && b.Data.Export.Kind == kind
	})
	if err != nil {
		return err
	}
	b := a.World.Blocks[i]
	if b.Data != nil && b.Data.Error != nil {
		return fmt.Errorf("block %q: %w", b.Name, b.Data.Error)
	}
	if b.Data == nil || b.Data.Export == nil || b.Data.Export.Kind != kind {
		return fmt.Errorf("block %q does not request this export", b.Name)
	}
	if err := a.StartExport(i, out); err != nil {
		return err
	}
	if err := o.settle(cmd.Context(), a); err != nil {
		a.CancelExport()
		return err
	}
	if a.Modal.Is(app.ErrorModal) {
		return fmt.Errorf("%s: %s", a.Modal.Title, a.Modal.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

func newRenderCmd(o *Options) *cobra.Command {
	var block, out, mode string
	width, height := 512, 512
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the view of a block to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Render(cmd, o, args, block, out, mode, width, height)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&block, "block", "b", "", "name of the block; default is the first with a view")
	f.StringVarP(&out, "output", "o", "view.png", "output file")
	f.StringVarP(&mode, "mode", "m", "", "view mode: Bitfield, Sdf, SdfExact, Debug, Heightmap or Shaded; default is the saved view")
	f.IntVar(&width, "width", width, "image width")
	f.IntVar(&height, "height", height, "image height")
	return cmd
}

// canvasForMode returns a canvas for a saved view mode name.
func canvasForMode(mode string) (view.Canvas, error) {
	var m2 state.ViewMode2
	if err := m2.UnmarshalText([]byte(mode)); err == nil {
		vs := state.ViewState{View2: &state.View2State{Mode: m2, Scale: 1}}
		c, _, _ := vs.Canvas()
		return c, nil
	}
	var m3 state.ViewMode3
	if err := m3.UnmarshalText([]byte(mode)); err != nil {
		return view.Canvas{}, fmt.Errorf("unknown view mode %q", mode)
	}
	c := view.New3D(render.Heightmap)
	if m3 == state.ModeShaded {
		c.Mode3 = render.Shaded
	}
	return c, nil
}

// Render renders the view of a block at full resolution and writes
// it as a PNG file. The saved view of the block is used unless a
// mode is given.
func Render(cmd *cobra.Command, o *Options, args []string, block, out, mode string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	a, saved, err := o.open(cmd.Context(), args)
	if err != nil {
		return err
	}
	defer a.Close()
	i, err := findBlock(a, block, func(b *world.Block) bool { return b.View() != nil })
	if err != nil {
		return err
	}
	if a.World.Blocks[i].View() == nil {
		return fmt.Errorf("block %q has no view", a.World.Blocks[i].Name)
	}
	c, ok := saved[i]
	if !ok {
		c = view.New2D(render.Bitfield)
	}
	if mode != "" {
		if c, err = canvasForMode(mode); err != nil {
			return err
		}
	}
	v := a.OpenView(i, c, width, height)
	if err := o.settle(cmd.Context(), a); err != nil {
		return err
	}
	if v.Image == nil || v.ImageLevel != 0 {
		return fmt.Errorf("render of block %q did not complete", a.World.Blocks[i].Name)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, v.Image); err != nil {
		errors.Log(f.Close())
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}
