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

package results

import (
	"cxquery/form"
	"cxquery/store"

	"github.com/bytedance/sonic"
)

type patternTableResponse struct {
	TaskID     int64             `json:"taskId,omitempty"`
	Rows       []form.PatternRow `json:"rows"`
	ResultType ResultType        `json:"resultType"`
	Error      string            `json:"error,omitempty"`
} // @name PatternTable

// PatternTable is a display table of patterns. Zero TaskID
// means patterns of all the tasks.
type PatternTable struct {
	TaskID int64
	Rows   []form.PatternRow
	Error  error
}

func (res *PatternTable) Err() error {
	return res.Error
}

func (res *PatternTable) Type() ResultType {
	return ResultTypePatterns
}

func (res *PatternTable) MarshalJSON() ([]byte, error) {
	rows := res.Rows
	if rows == nil {
		rows = []form.PatternRow{}
	}
	return sonic.Marshal(patternTableResponse{
		TaskID:     res.TaskID,
		Rows:       rows,
		ResultType: res.Type(),
		Error:      errToStr(res.Error),
	})
}

// ----

type taskListResponse struct {
	Tasks      []store.Task `json:"tasks"`
	ResultType ResultType   `json:"resultType"`
	Error      string       `json:"error,omitempty"`
} // @name TaskList

type TaskList struct {
	Tasks []store.Task
	Error error
}

func (res *TaskList) Err() error {
	return res.Error
}

func (res *TaskList) Type() ResultType {
	return ResultTypeTasks
}

func (res *TaskList) MarshalJSON() ([]byte, error) {
	tasks := res.Tasks
	if tasks == nil {
		tasks = []store.Task{}
	}
	return sonic.Marshal(taskListResponse{
		Tasks:      tasks,
		ResultType: res.Type(),
		Error:      errToStr(res.Error),
	})
}

// ----

type newTaskResponse struct {
	TaskID     int64      `json:"taskId"`
	ResultType ResultType `json:"resultType"`
	Error      string     `json:"error,omitempty"`
} // @name NewTask

type NewTask struct {
	TaskID int64
	Error  error
}

func (res *NewTask) Err() error {
	return res.Error
}

func (res *NewTask) Type() ResultType {
	return ResultTypeNewTask
}

func (res *NewTask) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(newTaskResponse{
		TaskID:     res.TaskID,
		ResultType: res.Type(),
		Error:      errToStr(res.Error),
	})
}
