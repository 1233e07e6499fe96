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

package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cxquery/merror"
	"cxquery/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `[
	{"file_name": "f1", "tokens": [
		{"id": 1, "text": "Dogs", "lemma": "dog", "upos": "NOUN", "xpos": "NNS", "deprel": "nsubj", "head_id": 2, "supersense": "n.animal"},
		{"id": 2, "text": "bark", "lemma": "bark", "upos": "VERB", "xpos": "VBP", "deprel": "root", "head_id": 0, "supersense": ""}
	]}
]`

func newRegistry(t *testing.T) *Registry {
	reg, err := NewRegistry(filepath.Join(t.TempDir(), "projects"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("abc"))
	assert.NoError(t, ValidateName("  my project "))
	assert.Error(t, ValidateName("ab"))
	assert.Error(t, ValidateName("  ab  "))
	assert.Error(t, ValidateName("a/b/c"))
	assert.Error(t, ValidateName(".hidden"))
	assert.True(t, merror.IsUserError(ValidateName("x")))
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	info, err := reg.Create(ctx, "beta", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, Info{Name: "beta", HasCorpus: true, HasStore: true}, info)
	_, err = reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(reg.RootDir(), "stray.txt"), []byte("x"), 0644))

	items, err := reg.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Name)
	assert.Equal(t, "beta", items[1].Name)

	s, name := reg.Current()
	assert.Equal(t, "alpha", name)
	require.NotNil(t, s)
	cnt, err := s.CountSentences(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, cnt)
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	_, err := reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	_, err = reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	assert.True(t, merror.IsUserError(err))
}

func TestCreateInvalidCorpus(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Create(context.Background(), "alpha", strings.NewReader("not a json"), CreateOptions{})
	assert.True(t, merror.IsUserError(err))
}

func TestFailedCreateLeavesNothing(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	invalid := `[{"file_name": "f1", "tokens": [{"id": 1, "text": "a"}, {"id": 1, "text": "b"}]}]`
	_, err := reg.Create(ctx, "alpha", strings.NewReader(invalid), CreateOptions{})
	assert.True(t, merror.IsUserError(err))

	exists, err := reg.Exists("alpha")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = os.Stat(filepath.Join(reg.RootDir(), "alpha"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = reg.Open(ctx, "alpha")
	assert.True(t, merror.IsNotFound(err))

	info, err := reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	assert.True(t, info.HasStore)
	s, err := reg.Open(ctx, "alpha")
	require.NoError(t, err)
	cnt, err := s.CountSentences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
}

func TestFailedIngestLeavesNothing(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := reg.Create(cancelled, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	assert.Error(t, err)
	items, err := reg.List()
	require.NoError(t, err)
	assert.Len(t, items, 0)

	_, err = reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	assert.NoError(t, err)
}

func TestOpenClosesPrevious(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	_, err := reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	_, err = reg.Create(ctx, "beta", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)

	sAlpha, err := reg.Open(ctx, "alpha")
	require.NoError(t, err)
	again, err := reg.Open(ctx, "alpha")
	require.NoError(t, err)
	assert.Same(t, sAlpha, again)

	sBeta, err := reg.Open(ctx, "beta")
	require.NoError(t, err)
	assert.False(t, sAlpha.IsOpen())
	assert.True(t, sBeta.IsOpen())
	_, name := reg.Current()
	assert.Equal(t, "beta", name)

	require.NoError(t, reg.Close())
	assert.False(t, sBeta.IsOpen())
	s, name := reg.Current()
	assert.Nil(t, s)
	assert.Equal(t, "", name)
}

func TestOpenUnknown(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Open(context.Background(), "nothing")
	var nf merror.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestOpenMissingStore(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, os.MkdirAll(filepath.Join(reg.RootDir(), "empty"), 0755))
	_, err := reg.Open(context.Background(), "empty")
	var storeErr merror.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, reg.StorePath("empty"), storeErr.Path)
}

func TestUse(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	_, err := reg.Create(ctx, "alpha", strings.NewReader(testCorpus), CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	var used *store.Store
	err = reg.Use(ctx, "alpha", func(s *store.Store) error {
		used = s
		_, err := s.NewTask(ctx, "t1", nil)
		return err
	})
	require.NoError(t, err)
	cur, _ := reg.Current()
	assert.Same(t, used, cur)

	err = reg.Use(ctx, "alpha", func(s *store.Store) error {
		return errors.New("failed")
	})
	assert.EqualError(t, err, "failed")
}
