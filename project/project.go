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

// Package project manages project directories and the store
// of the currently selected project. A project is a directory
// containing a corpus file and a store created from it.
package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cxquery/corpus"
	"cxquery/merror"
	"cxquery/store"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	CorpusFileName = "corpus.json"
	StoreFileName  = "db.sqlite3"

	MinNameLength = 3
)

type Info struct {
	Name      string `json:"name"`
	HasCorpus bool   `json:"hasCorpus"`
	HasStore  bool   `json:"hasStore"`
}

type CreateOptions struct {
	Policy store.CreatePolicy
	Ingest corpus.IngestOptions
}

// Registry provides access to projects within a root directory.
// It holds at most one open store; switching to a different project
// always closes the previous store first.
type Registry struct {
	rootDir string

	mu          sync.Mutex
	current     *store.Store
	currentName string
}

func (r *Registry) RootDir() string {
	return r.rootDir
}

func (r *Registry) projectDir(name string) string {
	return filepath.Join(r.rootDir, name)
}

// StorePath returns the path of the project's store file
func (r *Registry) StorePath(name string) string {
	return filepath.Join(r.projectDir(name), StoreFileName)
}

// CorpusPath returns the path of the project's corpus file
func (r *Registry) CorpusPath(name string) string {
	return filepath.Join(r.projectDir(name), CorpusFileName)
}

// ValidateName checks a project name. The name must be at least
// MinNameLength characters long (surrounding whitespace does not count)
// and it must not refer outside the root directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinNameLength {
		return merror.InputError{
			Msg: fmt.Sprintf("project name must be at least %d characters long", MinNameLength)}
	}
	if strings.ContainsAny(name, `/\`) || name == ".." || strings.HasPrefix(name, ".") {
		return merror.InputError{Msg: fmt.Sprintf("invalid project name `%s`", name)}
	}
	return nil
}

func (r *Registry) info(name string) (Info, error) {
	ans := Info{Name: name}
	var err error
	ans.HasCorpus, err = fs.IsFile(r.CorpusPath(name))
	if err != nil {
		return ans, err
	}
	ans.HasStore, err = fs.IsFile(r.StorePath(name))
	return ans, err
}

// Exists tells whether there is a project directory of the name
func (r *Registry) Exists(name string) (bool, error) {
	if ValidateName(name) != nil {
		return false, nil
	}
	return fs.IsDir(r.projectDir(name))
}

// List returns all the projects sorted by their names
func (r *Registry) List() ([]Info, error) {
	entries, err := os.ReadDir(r.rootDir)
	if err != nil {
		return []Info{}, fmt.Errorf("failed to list projects: %w", err)
	}
	ans := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || ValidateName(entry.Name()) != nil {
			continue
		}
		item, err := r.info(entry.Name())
		if err != nil {
			return []Info{}, fmt.Errorf("failed to list projects: %w", err)
		}
		ans = append(ans, item)
	}
	sort.Slice(ans, func(i, j int) bool {
		return ans[i].Name < ans[j].Name
	})
	return ans, nil
}

// Create creates a new project from the provided corpus data. The
// corpus is stored in the project directory, a new store is created
// according to the policy and the corpus is ingested into it.
// The new project becomes the current one.
func (r *Registry) Create(ctx context.Context, name string, corpusData io.Reader, opts CreateOptions) (Info, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	exists, err := fs.IsDir(r.projectDir(name))
	if err != nil {
		return Info{}, err
	}
	if exists {
		return Info{}, merror.InputError{Msg: fmt.Sprintf("project `%s` already exists", name)}
	}
	if err := os.MkdirAll(r.projectDir(name), 0755); err != nil {
		return Info{}, fmt.Errorf("failed to create project %s: %w", name, err)
	}
	if err := writeFile(r.CorpusPath(name), corpusData); err != nil {
		r.removeProjectDir(name)
		return Info{}, fmt.Errorf("failed to create project %s: %w", name, err)
	}
	sents, err := corpus.LoadFile(r.CorpusPath(name))
	if err == nil {
		err = corpus.Validate(sents)
	}
	if err != nil {
		r.removeProjectDir(name)
		return Info{}, merror.InputError{Msg: err.Error()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.closeLocked(); err != nil {
		r.removeProjectDir(name)
		return Info{}, err
	}
	s, err := store.Create(ctx, r.StorePath(name), opts.Policy)
	if err != nil {
		r.removeProjectDir(name)
		return Info{}, err
	}
	if _, err := corpus.Ingest(ctx, s, sents, opts.Ingest); err != nil {
		if err2 := s.Close(); err2 != nil {
			log.Warn().Err(err2).Str("project", name).Msg("failed to close store of a failed project")
		}
		r.removeProjectDir(name)
		return Info{}, err
	}
	r.current = s
	r.currentName = name
	log.Info().Str("project", name).Msg("created new project")
	return r.info(name)
}

// removeProjectDir removes an incomplete project so its name
// can be used again
func (r *Registry) removeProjectDir(name string) {
	if err := os.RemoveAll(r.projectDir(name)); err != nil {
		log.Error().Err(err).Str("project", name).Msg("failed to remove incomplete project")
	}
}

func writeFile(path string, data io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// closeLocked expects r.mu to be held
func (r *Registry) closeLocked() error {
	if r.current == nil {
		return nil
	}
	err := r.current.Close()
	log.Debug().Str("project", r.currentName).Msg("closed project store")
	r.current = nil
	r.currentName = ""
	return err
}

func (r *Registry) openLocked(ctx context.Context, name string) (*store.Store, error) {
	if r.current != nil && r.currentName == name {
		return r.current, nil
	}
	exists, err := r.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, merror.NotFoundError{Msg: fmt.Sprintf("project `%s` not found", name)}
	}
	if err := r.closeLocked(); err != nil {
		log.Warn().Err(err).Msg("failed to close previous project store")
	}
	s, err := store.Open(ctx, r.StorePath(name))
	if err != nil {
		return nil, err
	}
	r.current = s
	r.currentName = name
	log.Debug().Str("project", name).Msg("opened project store")
	return s, nil
}

// Open makes the project current and returns its store. In case
// a different project is open, its store is closed first. The returned
// store is valid until the next project switch or Close.
func (r *Registry) Open(ctx context.Context, name string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openLocked(ctx, name)
}

// Use runs fn with the project's store. No project switch can
// happen while fn runs.
func (r *Registry) Use(ctx context.Context, name string, fn func(s *store.Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.openLocked(ctx, name)
	if err != nil {
		return err
	}
	return fn(s)
}

// Current returns the currently open store and the name
// of its project. With no open project, nil is returned.
func (r *Registry) Current() (*store.Store, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.currentName
}

// Close releases the current store (if any)
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

// NewRegistry creates a registry for the root directory. The directory
// is created in case it does not exist.
func NewRegistry(rootDir string) (*Registry, error) {
	isDir, err := fs.IsDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize projects registry: %w", err)
	}
	if !isDir {
		if err := os.MkdirAll(rootDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to initialize projects registry: %w", err)
		}
		log.Info().Str("path", rootDir).Msg("created projects directory")
	}
	return &Registry{rootDir: rootDir}, nil
}
