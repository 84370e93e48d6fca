// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"cogentcore.org/halfspace/app"
	"cogentcore.org/halfspace/world"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Report is the evaluation result of a document.
type Report struct {
	Name   string        `yaml:"name,omitempty"`
	Blocks []BlockReport `yaml:"blocks"`
}

// BlockReport is the evaluation result of a block.
type BlockReport struct {
	Index  world.BlockIndex `yaml:"index"`
	Name   string           `yaml:"name"`
	Status string           `yaml:"status"`
	Error  string           `yaml:"error,omitempty"`
	Inputs []ValueReport    `yaml:"inputs,omitempty"`

	Outputs []ValueReport `yaml:"outputs,omitempty"`
	Stdout  []string      `yaml:"stdout,omitempty"`
	View    int           `yaml:"view,omitempty"`
	Export  string        `yaml:"export,omitempty"`
}

// ValueReport is an input or output of a block.
type ValueReport struct {
	Name  string `yaml:"name"`
	Line  int    `yaml:"line"`
	Text  string `yaml:"text,omitempty"`
	Value string `yaml:"value,omitempty"`
	Error string `yaml:"error,omitempty"`
}

// NewReport returns the report of the evaluated world of an app.
func NewReport(a *app.App) *Report {
	r := &Report{}
	if a.Meta.Name != nil {
		r.Name = *a.Meta.Name
	}
	for _, i := range a.World.Order {
		r.Blocks = append(r.Blocks, newBlockReport(i, a.World.Blocks[i]))
	}
	return r
}

func newBlockReport(i world.BlockIndex, b *world.Block) BlockReport {
	br := BlockReport{Index: i, Name: b.Name, Status: "ok"}
	d := b.Data
	switch {
	case d == nil:
		br.Status = "not evaluated"
		return br
	case d.Error != nil:
		br.Status = "error"
		br.Error = d.Error.Error()
	}
	for _, v := range d.IoValues {
		vr := ValueReport{Name: v.Name, Line: v.Line, Error: v.Err}
		if v.Kind == world.Input {
			vr.Text = b.Inputs[v.Name]
			if v.Err == "" {
				vr.Value = world.Text(v.Value)
			}
			br.Inputs = append(br.Inputs, vr)
			continue
		}
		vr.Value = v.Text
		br.Outputs = append(br.Outputs, vr)
	}
	if d.Stdout != "" {
		br.Stdout = strings.Split(d.Stdout, "\n")
	}
	if d.View != nil {
		br.View = len(d.View.Shapes)
	}
	if e := d.Export; e != nil {
		switch e.Kind {
		case world.MeshExport:
			br.Export = "mesh"
		case world.ImageExport:
			br.Export = "image"
		}
	}
	return br
}

// Failed returns the names of the blocks with errors.
func (r *Report) Failed() []string {
	var fs []string
	for _, b := range r.Blocks {
		if b.Error != "" {
			fs = append(fs, b.Name)
		}
	}
	return fs
}

// WriteText writes the report in a human-readable form.
func WriteText(w io.Writer, r *Report) error {
	var sb strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&sb, "%s\n", r.Name)
	}
	for _, b := range r.Blocks {
		fmt.Fprintf(&sb, "[%d] %s: %s\n", b.Index, b.Name, b.Status)
		if b.Error != "" {
			fmt.Fprintf(&sb, "    %s\n", b.Error)
		}
		for _, v := range b.Inputs {
			if v.Error != "" {
				fmt.Fprintf(&sb, "    in  %s = %s (error: %s)\n", v.Name, v.Text, v.Error)
				continue
			}
			fmt.Fprintf(&sb, "    in  %s = %s\n", v.Name, v.Value)
		}
		for _, v := range b.Outputs {
			fmt.Fprintf(&sb, "    out %s = %s\n", v.Name, v.Value)
		}
		for _, s := range b.Stdout {
			fmt.Fprintf(&sb, "    > %s\n", s)
		}
		if b.View > 0 {
			fmt.Fprintf(&sb, "    view with %d shapes\n", b.View)
		}
		if b.Export != "" {
			fmt.Fprintf(&sb, "    %s export\n", b.Export)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteYAML writes the report as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	if err := e.Encode(r); err != nil {
		return err
	}
	return e.Close()
}

var formats = []string{"text", "yaml"}

func newEvalCmd(o *Options) *cobra.Command {
	format := "text"
	strict := false
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a document and print its blocks as text or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(formats, format) {
				return fmt.Errorf("unknown format %q; expected one of %v", format, formats)
			}
			return Eval(cmd, o, args, format, strict)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", format, "report format: text or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail if any block has an error")
	return cmd
}

// Eval evaluates a document and writes its report in the given
// format. With strict set, blocks with errors make it fail.
func Eval(cmd *cobra.Command, o *Options, args []string, format string, strict bool) error {
	a, _, err := o.open(cmd.Context(), args)
	if err != nil {
		return err
	}
	defer a.Close()
	r := NewReport(a)
	if format == "yaml" {
		err = WriteYAML(cmd.OutOrStdout(), r)
	} else {
		err = WriteText(cmd.OutOrStdout(), r)
	}
	if err != nil {
		return err
	}
	if f := r.Failed(); strict && len(f) > 0 {
		return fmt.Errorf("blocks with errors: %s", strings.Join(f, ", "))
	}
	return nil
}
