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
	"errors"
	"math"
	"time"

	"cxquery/merror"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeOccurrences ResultType = "occurrences"
	ResultTypePatterns    ResultType = "patterns"
	ResultTypeTasks       ResultType = "tasks"
	ResultTypeNewTask     ResultType = "newTask"
	ResultTypeError       ResultType = "error"

	ResultWorkerPerformance = "workerPerformance"
)

type ResultType string // @name ResultType

func (rt ResultType) String() string {
	return string(rt)
}

// FuncResult is a result of any worker function
type FuncResult interface {
	Err() error
	Type() ResultType
}

func errToStr(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

// ----

type JobLog struct {
	WorkerID string    `json:"workerId"`
	Func     string    `json:"func"`
	Begin    time.Time `json:"begin"`
	End      time.Time `json:"end"`
	Err      string    `json:"error,omitempty"`
}

func (jl *JobLog) ToJSON() (string, error) {
	ans, err := sonic.Marshal(jl)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// ----

type ErrorResult struct {
	Func  string `json:"func"`
	Error string `json:"error"`

	// UserError marks errors caused by invalid query arguments
	UserError bool `json:"-"`
}

func (res *ErrorResult) Err() error {
	if res.Error == "" {
		return nil
	}
	if res.UserError {
		return merror.InputError{Msg: res.Error}
	}
	return errors.New(res.Error)
}

func (res *ErrorResult) Type() ResultType {
	return ResultTypeError
}

func (res *ErrorResult) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Func       string     `json:"func,omitempty"`
		Error      string     `json:"error"`
		ResultType ResultType `json:"resultType"`
	}{
		Func:       res.Func,
		Error:      res.Error,
		ResultType: res.Type(),
	})
}

// ----

// PercentRound rounds a percentage to two decimal places
func PercentRound(val float64) float64 {
	return math.Round(val*100) / 100
}
