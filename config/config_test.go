// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := New()
	assert.Equal(t, 33*time.Millisecond, s.TargetFrame())
	assert.Equal(t, 200*time.Millisecond, s.UndoDebounce())
	assert.Equal(t, 10, s.MaxLevel)
	assert.Equal(t, 50000, s.MaxOperations)
	assert.Equal(t, "fs", s.StoreKind)
	assert.True(t, s.StoreTrash)
	assert.Greater(t, s.NumWorkers(), 0)
	assert.NoError(t, s.Validate())
}

func TestReadOverrides(t *testing.T) {
	s := New()
	err := s.Read(strings.NewReader("MaxLevel = 6\nStoreKind = \"sqlite\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, s.MaxLevel)
	assert.Equal(t, "sqlite", s.StoreKind)
	assert.Equal(t, 33, s.TargetFrameMS)
}

func TestReadRejectsUnknown(t *testing.T) {
	s := New()
	assert.Error(t, s.Read(strings.NewReader("Bogus = 1\n")))
}

func TestReadValidates(t *testing.T) {
	s := New()
	assert.Error(t, s.Read(strings.NewReader("MaxOperations = 10\n")))
}

func TestOpenWriteRoundTrip(t *testing.T) {
	s := New()
	s.TileSize = 32
	var b bytes.Buffer
	require.NoError(t, s.Write(&b))

	path := filepath.Join(t.TempDir(), "halfspace.toml")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	o, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, s, o)
}
