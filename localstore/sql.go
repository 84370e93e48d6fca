// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package localstore

import (
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLStore stores documents in a SQLite database.
type SQLStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLStore opens the database at path, creating the table
// if needed. The path ":memory:" opens an in-memory database.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// an in-memory database exists per connection
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM documents ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLStore) Read(name string) ([]byte, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var data []byte
	err := s.db.QueryRow("SELECT data FROM documents WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *SQLStore) Write(name string, data []byte) error {
	if err := ValidName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO documents (name, data) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data
	`, name, data)
	return err
}

func (s *SQLStore) Delete(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Exists(name string) (bool, error) {
	if err := ValidName(name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents WHERE name = ?", name).Scan(&n)
	return n > 0, err
}

func (s *SQLStore) Close() error { return s.db.Close() }
