// Copyright 2024 The CXQUERY Authors
//   This file is part of CXQUERY.
//
//  CXQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXQUERY.  If not, see <https://www.gnu.org/licenses/>.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"cxquery/merror"

	"github.com/czcorpus/cnc-gokit/fs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "sqlite3"
	dsnParams  = "?_foreign_keys=on&_busy_timeout=5000"
)

var (
	ErrStoreExists = errors.New("store already exists")
)

// DBExecutor allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreatePolicy specifies what happens when a store is being
// created at a location already containing one.
type CreatePolicy int

const (

	// CreateFail returns ErrStoreExists
	CreateFail CreatePolicy = iota

	// CreateIgnore keeps the existing store and just opens it
	CreateIgnore

	// CreateReplace removes the existing store and creates a new one
	CreateReplace
)

func (cp CreatePolicy) String() string {
	switch cp {
	case CreateFail:
		return "fail"
	case CreateIgnore:
		return "ignore"
	case CreateReplace:
		return "replace"
	}
	return fmt.Sprintf("CreatePolicy(%d)", int(cp))
}

// ParseCreatePolicy converts a textual policy identifier. An empty value
// resolves to CreateFail.
func ParseCreatePolicy(v string) (CreatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "fail":
		return CreateFail, nil
	case "ignore":
		return CreateIgnore, nil
	case "replace":
		return CreateReplace, nil
	}
	return CreateFail, fmt.Errorf("unknown create policy `%s`", v)
}

// Store is a project's relational storage containing tasks,
// patterns, sentences, tokens and positions.
type Store struct {
	db   *sql.DB
	path string
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection. It is safe to call
// Close on an already closed store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return merror.StoreError{Path: s.path, Err: err}
	}
	return nil
}

// IsOpen tells whether the store holds a live connection
func (s *Store) IsOpen() bool {
	return s.db != nil
}

func (s *Store) executor() (DBExecutor, error) {
	if s.db == nil {
		return nil, merror.StoreError{Path: s.path, Err: errors.New("store is closed")}
	}
	return s.db, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path+dsnParams)
	if err != nil {
		return nil, merror.StoreError{Path: path, Err: err}
	}
	// SQLite allows a single writer anyway and keeping
	// one connection makes transactions visibility predictable
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, merror.StoreError{Path: path, Err: err}
	}
	return db, nil
}

// isPopulated tells whether there is a non-empty file at the path
func isPopulated(path string) (bool, error) {
	isFile, err := fs.IsFile(path)
	if err != nil {
		return false, err
	}
	if !isFile {
		return false, nil
	}
	size, err := fs.FileSize(path)
	if err != nil {
		return false, err
	}
	return size > 0, nil
}

func removeDBFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Create creates a new store at the path. In case the location already
// contains a store, the policy decides whether to fail, to keep and open
// the existing store or to destroy it and start over.
func Create(ctx context.Context, path string, policy CreatePolicy) (*Store, error) {
	populated, err := isPopulated(path)
	if err != nil {
		return nil, merror.StoreError{Path: path, Err: err}
	}
	if populated {
		switch policy {
		case CreateFail:
			return nil, fmt.Errorf("%w: %s", ErrStoreExists, path)
		case CreateIgnore:
			log.Debug().Str("path", path).Msg("store already exists, keeping it")
			return Open(ctx, path)
		case CreateReplace:
			log.Warn().Str("path", path).Msg("replacing existing store")
			if err := removeDBFiles(path); err != nil {
				return nil, merror.StoreError{Path: path, Err: err}
			}
		default:
			return nil, fmt.Errorf("unsupported create policy %s", policy)
		}
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, merror.StoreError{Path: path, Err: fmt.Errorf("failed to initialize schema: %w", err)}
	}
	log.Info().Str("path", path).Msg("created new store")
	return &Store{db: db, path: path}, nil
}

// Open opens an existing store. A missing file or a database without
// the expected tables is reported as merror.StoreError.
func Open(ctx context.Context, path string) (*Store, error) {
	isFile, err := fs.IsFile(path)
	if err != nil {
		return nil, merror.StoreError{Path: path, Err: err}
	}
	if !isFile {
		return nil, merror.StoreError{Path: path, Err: os.ErrNotExist}
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	numTables, err := countSchemaTables(ctx, db)
	if err != nil {
		db.Close()
		return nil, merror.StoreError{Path: path, Err: err}
	}
	if numTables != len(schemaTables) {
		db.Close()
		return nil, merror.StoreError{
			Path: path,
			Err:  fmt.Errorf("not a pattern store (found %d of %d tables)", numTables, len(schemaTables)),
		}
	}
	return &Store{db: db, path: path}, nil
}
