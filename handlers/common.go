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

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cxquery/merror"
	"cxquery/project"
	"cxquery/rdb"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// QueryPublisher passes queries to workers
type QueryPublisher interface {
	PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type Limits struct {
	DefaultContextLimit int
	MaxContextLimit     int
}

type Actions struct {
	publisher QueryPublisher
	cache     *rdb.ResultCache
	registry  *project.Registry
	limits    Limits
}

// dataVersion identifies the current state of a project store
// so cached results of an older state are not used
func (a *Actions) dataVersion(projectID string) (string, error) {
	var ans string
	storePath := a.registry.StorePath(projectID)
	for _, p := range []string{storePath, storePath + "-wal"} {
		isFile, err := fs.IsFile(p)
		if err != nil {
			return "", err
		}
		if !isFile {
			continue
		}
		mtime, err := fs.GetFileMtime(p)
		if err != nil {
			return "", err
		}
		size, err := fs.FileSize(p)
		if err != nil {
			return "", err
		}
		ans += mtime.Format(time.RFC3339Nano) + ":" + strconv.FormatInt(size, 10) + ";"
	}
	return ans, nil
}

func (a *Actions) publish(query rdb.Query, projectID string, cacheable bool) (<-chan *rdb.WorkerResult, error) {
	if a.cache == nil || !cacheable {
		return a.publisher.PublishQuery(query)
	}
	version, err := a.dataVersion(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine project data version: %w", err)
	}
	return a.cache.Wrap(a.publisher.PublishQuery, query, version)
}

// HandleWorkerError writes an error response in case the result
// contains an error. It returns true if the result is OK.
func HandleWorkerError(ctx *gin.Context, result *rdb.WorkerResult) bool {
	if result == nil {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("no result received"), http.StatusInternalServerError)
		return false
	}
	if err := result.Err(); err != nil {
		status := result.ErrorStatus
		if status == 0 {
			status = http.StatusInternalServerError
			if result.HasUserError {
				status = http.StatusBadRequest
			}
		}
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			status,
		)
		return false
	}
	return true
}

// runQuery publishes the query and waits for its result. In case
// of an error, the response is written and nil is returned.
func (a *Actions) runQuery(ctx *gin.Context, fn string, args any, cacheable bool) *rdb.WorkerResult {
	projectID := ctx.Param("projectId")
	if err := project.ValidateName(projectID); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return nil
	}
	query, err := rdb.NewQuery(fn, args)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return nil
	}
	wait, err := a.publish(query, projectID, cacheable)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return nil
	}
	result := <-wait
	if !HandleWorkerError(ctx, result) {
		return nil
	}
	return result
}

func getTaskIDArg(ctx *gin.Context) (int64, bool) {
	v := ctx.Query("taskId")
	if v == "" {
		return 0, true
	}
	taskID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || taskID < 0 {
		uniresp.RespondWithErrorJSON(
			ctx,
			merror.InputError{Msg: fmt.Sprintf("invalid taskId: %s", v)},
			http.StatusBadRequest,
		)
		return 0, false
	}
	return taskID, true
}

func NewActions(
	publisher QueryPublisher,
	cache *rdb.ResultCache,
	registry *project.Registry,
	limits Limits,
) *Actions {
	return &Actions{
		publisher: publisher,
		cache:     cache,
		registry:  registry,
		limits:    limits,
	}
}
