// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package localstore is a flat key-value store of documents keyed
// by file name, backed by a file system or a SQLite database.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cogentcore.org/halfspace/config"
)

// Extension is the required extension of stored names.
const Extension = ".half"

// DatabaseName is the file name of the SQLite store in its directory.
const DatabaseName = "halfspace.db"

// ErrNotFound is returned when reading or deleting a missing name.
var ErrNotFound = errors.New("localstore: not found")

// Store is a flat store of documents.
type Store interface {
	// List returns the stored names in sorted order.
	List() ([]string, error)

	// Read returns the document stored under the name.
	Read(name string) ([]byte, error)

	// Write stores the document under the name, replacing any
	// previous one.
	Write(name string, data []byte) error

	// Delete removes the document stored under the name.
	Delete(name string) error

	// Exists returns whether a document is stored under the name.
	Exists(name string) (bool, error)

	// Close releases resources.
	Close() error
}

var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// NameError is returned for invalid names.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("localstore: invalid name %q: names must match [A-Za-z0-9._-]+ and end in %s", e.Name, Extension)
}

// ValidName returns a [NameError] if the name cannot be stored.
func ValidName(name string) error {
	if !nameRegexp.MatchString(name) || !strings.HasSuffix(name, Extension) || len(name) == len(Extension) {
		return &NameError{Name: name}
	}
	return nil
}

// Open opens the store described by the settings: the directory or
// database at StoreDir, or an in-memory store if it is empty.
// With StoreTrash, documents deleted from a directory go to the
// system trash.
func Open(s *config.Settings) (Store, error) {
	switch s.StoreKind {
	case "sqlite":
		if s.StoreDir == "" {
			return NewSQLStore(":memory:")
		}
		if err := os.MkdirAll(s.StoreDir, 0o755); err != nil {
			return nil, err
		}
		return NewSQLStore(filepath.Join(s.StoreDir, DatabaseName))
	case "fs", "":
		if s.StoreDir == "" {
			return NewMemStore()
		}
		if s.StoreTrash {
			return NewTrashDirStore(s.StoreDir)
		}
		return NewDirStore(s.StoreDir)
	}
	return nil, fmt.Errorf("localstore: unknown store kind %q", s.StoreKind)
}
