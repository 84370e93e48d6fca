// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the tunable settings shared by the
// evaluator, render scheduler, undo engine and local storage.
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"cogentcore.org/core/cli"
	"github.com/pelletier/go-toml/v2"
)

// Settings are the tunable parameters of a halfspace session.
// Zero values are replaced by the `default:` tag values in [New].
type Settings struct {

	// TargetFrameMS is the render frame-time target in milliseconds;
	// views coarsen their starting level when a render takes longer.
	TargetFrameMS int `default:"33"`

	// MaxLevel is the coarsest render level; level L renders at size / 2^L.
	MaxLevel int `default:"10"`

	// UndoDebounceMS is the minimum quiet time in milliseconds between
	// two undo checkpoints recorded while the user is typing.
	UndoDebounceMS int `default:"200"`

	// MaxOperations is the script progress limit, in evaluation steps.
	MaxOperations int `default:"50000"`

	// MaxExprDepth is the maximum nesting depth of a script expression.
	MaxExprDepth int `default:"64"`

	// MaxCallDepth is the maximum script function recursion depth.
	MaxCallDepth int `default:"32"`

	// TileSize is the edge length in pixels of a render tile;
	// cancellation is checked between tiles.
	TileSize int `default:"64"`

	// Workers is the number of goroutines used for rendering and
	// meshing; 0 means GOMAXPROCS.
	Workers int `default:"0"`

	// StoreDir is the directory of the local document store;
	// an empty string selects an in-memory store.
	StoreDir string

	// StoreKind selects the local store backend: fs or sqlite.
	StoreKind string `default:"fs"`

	// StoreTrash moves documents deleted from a directory store to
	// the system trash instead of removing them.
	StoreTrash bool `default:"true"`
}

// New returns [Settings] with all default values applied.
func New() *Settings {
	s := &Settings{}
	cli.SetFromDefaults(s)
	return s
}

// TargetFrame returns [Settings.TargetFrameMS] as a duration.
func (s *Settings) TargetFrame() time.Duration {
	return time.Duration(s.TargetFrameMS) * time.Millisecond
}

// UndoDebounce returns [Settings.UndoDebounceMS] as a duration.
func (s *Settings) UndoDebounce() time.Duration {
	return time.Duration(s.UndoDebounceMS) * time.Millisecond
}

// NumWorkers returns the effective number of worker goroutines.
func (s *Settings) NumWorkers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	switch {
	case s.TargetFrameMS <= 0:
		return fmt.Errorf("config: TargetFrameMS must be positive, got %d", s.TargetFrameMS)
	case s.MaxLevel < 0 || s.MaxLevel > 16:
		return fmt.Errorf("config: MaxLevel must be in [0, 16], got %d", s.MaxLevel)
	case s.MaxOperations < 50000:
		return fmt.Errorf("config: MaxOperations must be at least 50000, got %d", s.MaxOperations)
	case s.MaxExprDepth <= 0 || s.MaxCallDepth <= 0:
		return fmt.Errorf("config: MaxExprDepth and MaxCallDepth must be positive")
	case s.TileSize < 8:
		return fmt.Errorf("config: TileSize must be at least 8, got %d", s.TileSize)
	case s.StoreKind != "fs" && s.StoreKind != "sqlite":
		return fmt.Errorf("config: unknown StoreKind %q", s.StoreKind)
	}
	return nil
}

// Read decodes TOML settings from the given reader on top of the
// existing values. Unknown keys are an error.
func (s *Settings) Read(r io.Reader) error {
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(s); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return s.Validate()
}

// Open returns the default settings overridden by the TOML file
// at the given path.
func Open(path string) (*Settings, error) {
	s := New()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := s.Read(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Write encodes the settings as TOML to the given writer.
func (s *Settings) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}
