// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package localstore

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/Bios-Marcel/wastebasket/v2"
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	hpos "github.com/hack-pad/hackpadfs/os"
)

// FSStore stores documents as files in the root of a file system.
type FSStore struct {

	// Trash, if set, is used by Delete to move the files of a
	// directory store away instead of removing them.
	Trash func(paths ...string) error

	mu sync.Mutex
	fs hackpadfs.FS

	// dir is the OS directory of a directory store.
	dir string
}

// NewFSStore returns a store over the given file system.
func NewFSStore(fsys hackpadfs.FS) *FSStore {
	return &FSStore{fs: fsys}
}

// NewMemStore returns a store over a new in-memory file system.
func NewMemStore() (*FSStore, error) {
	m, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return NewFSStore(m), nil
}

// NewDirStore returns a store over a directory, creating it if needed.
func NewDirStore(dir string) (*FSStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	ofs := hpos.NewFS()
	p, err := ofs.FromOSPath(abs)
	if err != nil {
		return nil, err
	}
	sub, err := ofs.Sub(p)
	if err != nil {
		return nil, err
	}
	s := NewFSStore(sub)
	s.dir = abs
	return s, nil
}

// NewTrashDirStore returns a directory store whose deleted
// documents go to the system trash.
func NewTrashDirStore(dir string) (*FSStore, error) {
	s, err := NewDirStore(dir)
	if err != nil {
		return nil, err
	}
	s.Trash = wastebasket.Trash
	return s, nil
}

func (s *FSStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	des, err := hackpadfs.ReadDir(s.fs, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, de := range des {
		if de.IsDir() || ValidName(de.Name()) != nil {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}

func (s *FSStore) Read(name string) ([]byte, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := hackpadfs.ReadFile(s.fs, name)
	if errors.Is(err, hackpadfs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *FSStore) Write(name string, data []byte) error {
	if err := ValidName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return hackpadfs.WriteFullFile(s.fs, name, data, 0o644)
}

func (s *FSStore) Delete(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Trash != nil && s.dir != "" {
		if _, err := hackpadfs.Stat(s.fs, name); err != nil {
			if errors.Is(err, hackpadfs.ErrNotExist) {
				return ErrNotFound
			}
			return err
		}
		return s.Trash(filepath.Join(s.dir, name))
	}
	err := hackpadfs.Remove(s.fs, name)
	if errors.Is(err, hackpadfs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *FSStore) Exists(name string) (bool, error) {
	if err := ValidName(name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := hackpadfs.Stat(s.fs, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, hackpadfs.ErrNotExist):
		return false, nil
	}
	return false, err
}

func (s *FSStore) Close() error { return nil }
