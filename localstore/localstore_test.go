// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"cogentcore.org/halfspace/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	for _, n := range []string{"a.half", "my-file_2.half", "x.y.half"} {
		assert.NoError(t, ValidName(n), n)
	}
	for _, n := range []string{"", ".half", "a.txt", "a b.half", "../a.half", "dir/a.half", "é.half"} {
		var ne *NameError
		assert.ErrorAs(t, ValidName(n), &ne, n)
	}
}

func testStore(t *testing.T, s Store) {
	defer s.Close()
	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Write("b.half", []byte("second")))
	require.NoError(t, s.Write("a.half", []byte("first")))
	require.NoError(t, s.Write("b.half", []byte("replaced")))
	assert.Error(t, s.Write("bad name.half", nil))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.half", "b.half"}, names)

	b, err := s.Read("b.half")
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(b))

	ok, err := s.Exists("a.half")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete("a.half"))
	ok, err = s.Exists("a.half")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.Read("a.half")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("a.half"), ErrNotFound)
}

func TestMemStore(t *testing.T) {
	s, err := NewMemStore()
	require.NoError(t, err)
	testStore(t, s)
}

func TestDirStore(t *testing.T) {
	s, err := NewDirStore(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)
	testStore(t, s)
}

func TestTrashDirStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	s, err := NewTrashDirStore(dir)
	require.NoError(t, err)
	require.NotNil(t, s.Trash)

	trash := t.TempDir()
	var trashed []string
	s.Trash = func(paths ...string) error {
		for _, p := range paths {
			trashed = append(trashed, p)
			if err := os.Rename(p, filepath.Join(trash, filepath.Base(p))); err != nil {
				return err
			}
		}
		return nil
	}
	require.NoError(t, s.Write("a.half", []byte("{}")))
	require.NoError(t, s.Delete("a.half"))
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(abs, "a.half")}, trashed)
	ok, err := s.Exists("a.half")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(trash, "a.half"))
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Delete("a.half"), ErrNotFound)
	assert.Len(t, trashed, 1)

	m, err := NewMemStore()
	require.NoError(t, err)
	m.Trash = s.Trash
	require.NoError(t, m.Write("b.half", []byte("{}")))
	require.NoError(t, m.Delete("b.half"))
	assert.Len(t, trashed, 1)
}

func TestSQLStore(t *testing.T) {
	s, err := NewSQLStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	cfg := config.New()
	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, s)
	s.Close()

	cfg.StoreKind = "sqlite"
	cfg.StoreDir = t.TempDir()
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Write("x.half", []byte("{}")))
	s.Close()

	// the database persists
	s, err = Open(cfg)
	require.NoError(t, err)
	ok, err := s.Exists("x.half")
	require.NoError(t, err)
	assert.True(t, ok)
	s.Close()

	cfg.StoreKind = "fs"
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.(*FSStore).Trash)
	s.Close()
	cfg.StoreTrash = false
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.(*FSStore).Trash)
	s.Close()

	cfg.StoreKind = "cloud"
	_, err = Open(cfg)
	assert.Error(t, err)
}
