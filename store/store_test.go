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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cxquery/merror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	path := filepath.Join(t.TempDir(), "db.sqlite3")
	s, err := Create(context.Background(), path, CreateFail)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseCreatePolicy(t *testing.T) {
	for input, expected := range map[string]CreatePolicy{
		"":        CreateFail,
		"fail":    CreateFail,
		"Ignore":  CreateIgnore,
		"replace": CreateReplace,
	} {
		p, err := ParseCreatePolicy(input)
		assert.NoError(t, err)
		assert.Equal(t, expected, p)
	}
	_, err := ParseCreatePolicy("overwrite")
	assert.Error(t, err)
}

func TestCreateFailOnExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite3")
	s, err := Create(ctx, path, CreateFail)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Create(ctx, path, CreateFail)
	assert.True(t, errors.Is(err, ErrStoreExists))
	assert.Contains(t, err.Error(), path)
}

func TestCreateIgnoreKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite3")
	s, err := Create(ctx, path, CreateFail)
	require.NoError(t, err)
	_, err = s.NewTask(ctx, "t1", json.RawMessage(`{"n_per_round": 10}`))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Create(ctx, path, CreateIgnore)
	require.NoError(t, err)
	defer s2.Close()
	tasks, err := s2.ListTasks(ctx)
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateReplaceDropsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite3")
	s, err := Create(ctx, path, CreateFail)
	require.NoError(t, err)
	_, err = s.NewTask(ctx, "t1", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Create(ctx, path, CreateReplace)
	require.NoError(t, err)
	defer s2.Close()
	tasks, err := s2.ListTasks(ctx)
	assert.NoError(t, err)
	assert.Len(t, tasks, 0)
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite3")
	_, err := Open(context.Background(), path)
	var storeErr merror.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, path, storeErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenForeignDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.sqlite3")
	db, err := sql.Open(driverName, path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE foo (id INTEGER)")
	require.NoError(t, err)
	db.Close()

	_, err = Open(context.Background(), path)
	var storeErr merror.StoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestClosedStore(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())
	assert.False(t, s.IsOpen())
	assert.NoError(t, s.Close())
	_, err := s.ListTasks(context.Background())
	assert.Error(t, err)
}

func TestNewTaskAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cfg := json.RawMessage(`{"association_measure":"pmi2","n_total_rounds":10}`)
	id1, err := s.NewTask(ctx, "t1", cfg)
	require.NoError(t, err)
	id2, err := s.NewTask(ctx, "t2", nil)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].Name)
	assert.JSONEq(t, string(cfg), string(tasks[0].Config))
	assert.False(t, tasks[0].TimeAdded.IsZero())
	assert.Nil(t, tasks[1].Config)

	_, err = s.NewTask(ctx, "  ", nil)
	assert.Error(t, err)
}

func TestRunWriterCommit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	taskID, err := s.NewTask(ctx, "t1", nil)
	require.NoError(t, err)

	rw, err := s.BeginRun(ctx, taskID)
	require.NoError(t, err)
	pid, err := rw.AddPattern(ctx, Pattern{Form: "NOUN~VBN", Left: "NOUN", Right: "VBN", Count: 2, Score: 4.2})
	require.NoError(t, err)
	_, err = rw.AddPosition(ctx, pid, 1, []int{2, 5})
	require.NoError(t, err)
	_, err = rw.AddPosition(ctx, pid, 1, []int{})
	assert.Error(t, err)
	require.NoError(t, rw.Commit())
	assert.NoError(t, rw.Rollback())

	patterns, err := s.ListPatterns(ctx, PatternFilter{TaskID: taskID})
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "NOUN~VBN", patterns[0].Form)
	assert.Equal(t, taskID, patterns[0].TaskID)
	assert.Equal(t, "VBN", patterns[0].Right)
}

func TestRunWriterRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	taskID, err := s.NewTask(ctx, "t1", nil)
	require.NoError(t, err)

	rw, err := s.BeginRun(ctx, taskID)
	require.NoError(t, err)
	_, err = rw.AddPattern(ctx, Pattern{Form: "go~to", Count: 1, Score: 1})
	require.NoError(t, err)
	require.NoError(t, rw.Rollback())

	patterns, err := s.ListPatterns(ctx, PatternFilter{})
	require.NoError(t, err)
	assert.Len(t, patterns, 0)
}

func TestBeginRunUnknownTask(t *testing.T) {
	s := newTestStore(t)
	_, err := s.BeginRun(context.Background(), 42)
	assert.True(t, merror.IsUserError(err))
}

func TestListPatternsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	t1, _ := s.NewTask(ctx, "t1", nil)
	t2, _ := s.NewTask(ctx, "t2", nil)
	for taskID, patterns := range map[int64][]Pattern{
		t1: {{Form: "a~b", Score: 1}, {Form: "c~d", Score: 3}, {Form: "e~f", Score: 2}},
		t2: {{Form: "g~h", Score: 10}},
	} {
		rw, err := s.BeginRun(ctx, taskID)
		require.NoError(t, err)
		for _, p := range patterns {
			_, err := rw.AddPattern(ctx, p)
			require.NoError(t, err)
		}
		require.NoError(t, rw.Commit())
	}

	ans, err := s.ListPatterns(ctx, PatternFilter{TaskID: t1})
	require.NoError(t, err)
	require.Len(t, ans, 3)
	assert.Equal(t, "c~d", ans[0].Form)
	assert.Equal(t, "e~f", ans[1].Form)
	assert.Equal(t, "a~b", ans[2].Form)

	ans, err = s.ListPatterns(ctx, PatternFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, ans, 2)
	assert.Equal(t, "g~h", ans[0].Form)

	ans, err = s.ListPatterns(ctx, PatternFilter{TaskID: 999})
	assert.NoError(t, err)
	assert.Len(t, ans, 0)
}

func TestScanOccurrenceRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.InsertSentences(
		ctx,
		[]Sentence{{ID: 1, FileName: "a"}, {ID: 2, FileName: "a"}},
		map[int64][]Token{
			1: {{ID: 1, Text: "Dogs", UPOS: "NOUN"}, {ID: 2, Text: "bark", UPOS: "VERB", Supersense: "verb.perception"}},
			2: {{ID: 1, Text: "Cats", UPOS: "NOUN"}},
		},
	)
	require.NoError(t, err)
	taskID, _ := s.NewTask(ctx, "t1", nil)
	rw, err := s.BeginRun(ctx, taskID)
	require.NoError(t, err)
	pid, _ := rw.AddPattern(ctx, Pattern{Form: "NOUN~VERB"})
	_, err = rw.AddPosition(ctx, pid, 1, []int{1, 2})
	require.NoError(t, err)
	require.NoError(t, rw.Commit())

	var rows []OccurrenceRow
	err = s.ScanOccurrenceRows(ctx, "NOUN~VERB", 0, func(row OccurrenceRow) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1,2", rows[0].TokenIDs)
	assert.Equal(t, "Dogs", rows[0].Token.Text)
	assert.Equal(t, "", rows[0].Token.Supersense)
	assert.Equal(t, "verb.perception", rows[1].Token.Supersense)
	assert.Equal(t, int64(1), rows[1].Token.SentenceID)

	rows = rows[:0]
	err = s.ScanOccurrenceRows(ctx, "NOUN~VERB", taskID+1, func(row OccurrenceRow) error {
		rows = append(rows, row)
		return nil
	})
	assert.NoError(t, err)
	assert.Len(t, rows, 0)
}

func TestBatchWriter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	bw, err := s.NewBatchWriter(3, 0)
	require.NoError(t, err)
	for i := 1; i <= 7; i++ {
		sent := Sentence{ID: int64(i), FileName: "book"}
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return InsertSentence(ctx, tx, sent, []Token{{ID: 1, Text: "x"}})
		})
		require.NoError(t, err)
	}
	require.NoError(t, bw.Close())
	assert.Equal(t, 7, bw.NumCommitted())
	assert.Equal(t, ErrBatchWriterClosed, bw.Submit(nil))

	cnt, err := s.CountSentences(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 7, cnt)
}

func TestBatchWriterReportsFailure(t *testing.T) {
	s := newTestStore(t)
	bw, err := s.NewBatchWriter(2, 0)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		// duplicate sentence ID makes the batch fail
		bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return InsertSentence(ctx, tx, Sentence{ID: 1, FileName: "f"}, nil)
		})
	}
	assert.Error(t, bw.Close())
}

func TestTokenIDsCodec(t *testing.T) {
	assert.Equal(t, "2,5,9", EncodeTokenIDs([]int{2, 5, 9}))
	ids, err := DecodeTokenIDs("2, 5,9")
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 5, 9}, ids)
	_, err = DecodeTokenIDs("2,x")
	assert.Error(t, err)
	_, err = DecodeTokenIDs("")
	assert.Error(t, err)
}
