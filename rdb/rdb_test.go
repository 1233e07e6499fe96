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
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"cxquery/merror"
	"cxquery/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryArgsRoundTrip(t *testing.T) {
	q, err := NewQuery(FuncOccurrences, OccurrencesArgs{ProjectID: "demo", Form: "NOUN~VBN", Limit: 10})
	require.NoError(t, err)
	data, err := q.ToJSON()
	require.NoError(t, err)
	q2, err := DecodeQuery(data)
	require.NoError(t, err)
	assert.Equal(t, FuncOccurrences, q2.Func)
	var args OccurrencesArgs
	require.NoError(t, q2.DecodeArgs(&args))
	assert.Equal(t, "demo", args.ProjectID)
	assert.Equal(t, "NOUN~VBN", args.Form)
	assert.Equal(t, 10, args.Limit)
}

func TestWorkerResultErrorStatus(t *testing.T) {
	for _, tc := range []struct {
		err     error
		status  int
		userErr bool
	}{
		{merror.NotFoundError{Msg: "project not found"}, http.StatusNotFound, true},
		{merror.InputError{Msg: "invalid task"}, http.StatusBadRequest, true},
		{errors.New("disk failure"), http.StatusInternalServerError, false},
	} {
		wr, err := CreateWorkerResult(&results.TaskList{Error: tc.err})
		require.NoError(t, err)
		assert.Equal(t, tc.status, wr.ErrorStatus)
		assert.Equal(t, tc.userErr, wr.HasUserError)
		assert.EqualError(t, wr.Err(), tc.err.Error())
		assert.Equal(t, results.ResultTypeTasks, wr.ResultType)
	}
}

func TestWorkerResultValue(t *testing.T) {
	wr, err := CreateWorkerResult(&results.NewTask{TaskID: 7})
	require.NoError(t, err)
	assert.NoError(t, wr.Err())
	var tmp map[string]any
	require.NoError(t, json.Unmarshal(wr.Value, &tmp))
	assert.Equal(t, float64(7), tmp["taskId"])
}

func TestResultCache(t *testing.T) {
	cache, err := NewResultCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	var numCalls int
	publish := func(q Query) (<-chan *WorkerResult, error) {
		numCalls++
		ans := make(chan *WorkerResult, 1)
		wr, _ := CreateWorkerResult(&results.NewTask{TaskID: int64(numCalls)})
		ans <- wr
		close(ans)
		return ans, nil
	}
	q, err := NewQuery(FuncPatterns, PatternsArgs{ProjectID: "demo"})
	require.NoError(t, err)

	ch, err := cache.Wrap(publish, q, "v1")
	require.NoError(t, err)
	first := <-ch
	ch, err = cache.Wrap(publish, q, "v1")
	require.NoError(t, err)
	second := <-ch
	assert.Equal(t, 1, numCalls)
	assert.JSONEq(t, string(first.Value), string(second.Value))

	ch, err = cache.Wrap(publish, q, "v2")
	require.NoError(t, err)
	<-ch
	assert.Equal(t, 2, numCalls)
}

func TestResultCacheSkipsErrors(t *testing.T) {
	cache, err := NewResultCache(t.TempDir())
	require.NoError(t, err)
	var numCalls int
	publish := func(q Query) (<-chan *WorkerResult, error) {
		numCalls++
		ans := make(chan *WorkerResult, 1)
		wr, _ := CreateWorkerResult(&results.TaskList{Error: errors.New("failed")})
		ans <- wr
		close(ans)
		return ans, nil
	}
	q, err := NewQuery(FuncTasks, TasksArgs{ProjectID: "demo"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		ch, err := cache.Wrap(publish, q, "v1")
		require.NoError(t, err)
		res := <-ch
		assert.Error(t, res.Err())
	}
	assert.Equal(t, 2, numCalls)
}
