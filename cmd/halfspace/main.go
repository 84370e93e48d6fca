// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command halfspace evaluates, renders and exports halfspace
// documents without a GUI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"cogentcore.org/halfspace/app"
	"cogentcore.org/halfspace/config"
	"cogentcore.org/halfspace/examples"
	"cogentcore.org/halfspace/logx"
	"cogentcore.org/halfspace/view"
	"cogentcore.org/halfspace/world"
	"github.com/spf13/cobra"
)

// Options are the flags shared by all commands.
type Options struct {

	// Verbose shows trace messages, including render scheduling.
	Verbose bool

	// Debug shows debug messages.
	Debug bool

	// Example is the name of a bundled example to load instead
	// of a file.
	Example string

	// Config is the path of a TOML settings file.
	Config string

	// Watch reloads the document whenever the file changes.
	Watch bool

	// Timeout bounds the time spent waiting for workers.
	Timeout time.Duration

	settings *config.Settings
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// NewRootCmd returns the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	o := &Options{}
	root := &cobra.Command{
		Use:   "halfspace [file]",
		Short: "Evaluate a halfspace document and print a block report",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, o, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "show trace messages")
	f.BoolVar(&o.Debug, "debug", false, "show debug messages")
	f.StringVar(&o.Example, "example", "", "load a bundled example by name")
	f.StringVar(&o.Config, "config", "", "read settings from a TOML file")
	f.DurationVar(&o.Timeout, "timeout", 5*time.Minute, "maximum time to wait for evaluation, rendering and export")
	root.Flags().BoolVar(&o.Watch, "watch", false, "reload and report whenever the file changes")

	root.AddCommand(newEvalCmd(o), newExportCmd(o), newRenderCmd(o), newStoreCmd(o))
	return root
}

func (o *Options) setup() error {
	logx.UserLevel = logx.LevelFromFlags(o.Verbose, o.Debug, false)
	logx.SetDefaultLogger()
	if o.Config == "" {
		o.settings = config.New()
		return nil
	}
	s, err := config.Open(o.Config)
	if err != nil {
		return err
	}
	o.settings = s
	return nil
}

// open returns an app with the document named by the arguments or
// the example flag loaded and evaluated. The saved views are closed,
// so that nothing is rendered until a view is opened; their canvases
// are returned.
func (o *Options) open(ctx context.Context, args []string) (*app.App, map[world.BlockIndex]view.Canvas, error) {
	a := app.New(o.settings)
	switch {
	case o.Example != "" && len(args) > 0:
		return nil, nil, errors.New("--example cannot be used with a file argument")
	case o.Example != "":
		if !a.LoadExample(o.Example) {
			return nil, nil, unknownExample(o.Example)
		}
	case len(args) > 0:
		if err := a.LoadFile(args[0]); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, errors.New("no document: give a file or --example")
	}
	cs := closeViews(a)
	if err := o.settle(ctx, a); err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, cs, nil
}

func closeViews(a *app.App) map[world.BlockIndex]view.Canvas {
	cs := map[world.BlockIndex]view.Canvas{}
	for i, v := range a.Views {
		cs[i] = v.Canvas
		a.CloseView(i)
	}
	return cs
}

func (o *Options) settle(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	return a.Settle(ctx)
}

func unknownExample(name string) error {
	if s := suggest(name, examples.Names()); s != "" {
		return fmt.Errorf("unknown example %q; did you mean %q?", name, s)
	}
	return fmt.Errorf("unknown example %q", name)
}

// Run loads and evaluates a document and prints its block report,
// repeating on every change of the file when watching.
func Run(cmd *cobra.Command, o *Options, args []string) error {
	a, _, err := o.open(cmd.Context(), args)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := WriteText(cmd.OutOrStdout(), NewReport(a)); err != nil {
		return err
	}
	if !o.Watch {
		return nil
	}
	if len(args) == 0 {
		return errors.New("--watch needs a file argument")
	}
	return Watch(cmd.Context(), args[0], func() error {
		if err := a.LoadFile(args[0]); err != nil {
			slog.Error("reload failed", "err", err)
			return nil
		}
		closeViews(a)
		if err := o.settle(cmd.Context(), a); err != nil {
			return err
		}
		return WriteText(cmd.OutOrStdout(), NewReport(a))
	})
}
