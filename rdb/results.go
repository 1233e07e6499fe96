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
	"fmt"
	"net/http"
	"time"

	"cxquery/merror"
	"cxquery/results"

	"github.com/bytedance/sonic"
)

const (
	FuncOccurrences = "occurrences"
	FuncPatterns    = "patterns"
	FuncTasks       = "tasks"
	FuncNewTask     = "newTask"
)

type OccurrencesArgs struct {
	ProjectID string `json:"projectId"`
	Form      string `json:"form"`

	// TaskID restricts the search to a single task (0 = all tasks)
	TaskID int64 `json:"taskId"`
	Limit  int   `json:"limit"`
}

type PatternsArgs struct {
	ProjectID string `json:"projectId"`
	TaskID    int64  `json:"taskId"`
	Limit     int    `json:"limit"`
}

type TasksArgs struct {
	ProjectID string `json:"projectId"`
}

type NewTaskArgs struct {
	ProjectID string          `json:"projectId"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
}

// ----------------

// WorkerResult is a serialized function result along with
// information about a possible error and the processing time
type WorkerResult struct {
	ID           string             `json:"id"`
	ResultType   results.ResultType `json:"resultType"`
	Value        json.RawMessage    `json:"value"`
	Error        string             `json:"error,omitempty"`
	ErrorStatus  int                `json:"errorStatus,omitempty"`
	HasUserError bool               `json:"hasUserError"`
	ProcBegin    time.Time          `json:"procBegin"`
	ProcEnd      time.Time          `json:"procEnd"`
}

func (wr *WorkerResult) Err() error {
	if wr.Error == "" {
		return nil
	}
	return errors.New(wr.Error)
}

// AttachValue serializes the value and copies its error
// information to the result
func (wr *WorkerResult) AttachValue(value results.FuncResult) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize worker result: %w", err)
	}
	wr.Value = data
	wr.ResultType = value.Type()
	if err := value.Err(); err != nil {
		wr.Error = err.Error()
		wr.HasUserError = merror.IsUserError(err)
		wr.ErrorStatus = errorStatus(err)
	}
	return nil
}

func errorStatus(err error) int {
	if merror.IsNotFound(err) {
		return http.StatusNotFound

	} else if merror.IsUserError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func CreateWorkerResult(value results.FuncResult) (*WorkerResult, error) {
	ans := new(WorkerResult)
	if err := ans.AttachValue(value); err != nil {
		return nil, err
	}
	return ans, nil
}
