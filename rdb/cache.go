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

package rdb

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// PublishFunc sends a query to a worker
type PublishFunc func(query Query) (<-chan *WorkerResult, error)

// ResultCache stores successful worker results in files. Entries are
// keyed by the function, its arguments and a data version provided
// by a caller so a change of the underlying data makes older entries
// unreachable.
type ResultCache struct {
	dir string
}

func (rc *ResultCache) entryPath(query Query, version string) string {
	hashKey := sha1.Sum([]byte(query.Func + "\x00" + string(query.Args) + "\x00" + version))
	return filepath.Join(rc.dir, query.Func+"-"+hex.EncodeToString(hashKey[:]))
}

func (rc *ResultCache) load(path string) (*WorkerResult, bool) {
	isFile, err := fs.IsFile(path)
	if err != nil || !isFile {
		return nil, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Err(err).Msgf("Error while reading cache file %s", path)
		return nil, false
	}
	result := new(WorkerResult)
	if err := sonic.Unmarshal(content, result); err != nil {
		log.Err(err).Msgf("Error while decoding cache file %s", path)
		return nil, false
	}
	return result, true
}

func (rc *ResultCache) store(path string, result *WorkerResult) error {
	data, err := sonic.Marshal(result)
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Wrap returns a cached result if available. Otherwise the query is
// published using fn and the result is cached (unless it is an error).
func (rc *ResultCache) Wrap(fn PublishFunc, query Query, version string) (<-chan *WorkerResult, error) {
	path := rc.entryPath(query, version)
	if cached, ok := rc.load(path); ok {
		log.Debug().Str("func", query.Func).Str("path", path).Msg("using cached result")
		ans := make(chan *WorkerResult, 1)
		ans <- cached
		close(ans)
		return ans, nil
	}
	wr, err := fn(query)
	if err != nil {
		return nil, err
	}
	ans := make(chan *WorkerResult, 1)
	go func() {
		defer close(ans)
		rawResult, ok := <-wr
		if !ok {
			return
		}
		if rawResult.Err() == nil {
			if err := rc.store(path, rawResult); err != nil {
				log.Err(err).Msgf("Error while writing cache file %s", path)
			}
		}
		ans <- rawResult
	}()
	return ans, nil
}

// NewResultCache creates a cache in the directory (the directory
// is created if needed)
func NewResultCache(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to initialize result cache: %w", err)
	}
	return &ResultCache{dir: dir}, nil
}
