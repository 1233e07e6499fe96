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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cxquery/merror"
	"cxquery/project"
	"cxquery/rdb"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type projectsResponse struct {
	Projects []project.Info `json:"projects"`
} // @name Projects

type newTaskRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
} // @name NewTaskRequest

// Projects godoc
// @Summary      Projects
// @Description  List all the available projects
// @Produce      json
// @Success      200 {object} projectsResponse
// @Router       /projects [get]
func (a *Actions) Projects(ctx *gin.Context) {
	items, err := a.registry.List()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []project.Info{}
	}
	uniresp.WriteJSONResponse(ctx.Writer, projectsResponse{Projects: items})
}

// ListTasks godoc
// @Summary      ListTasks
// @Description  List mining tasks of a project
// @Produce      json
// @Param        projectId path string true "An ID of a project"
// @Success      200 {object} results.taskListResponse
// @Router       /projects/{projectId}/tasks [get]
func (a *Actions) ListTasks(ctx *gin.Context) {
	result := a.runQuery(
		ctx,
		rdb.FuncTasks,
		rdb.TasksArgs{ProjectID: ctx.Param("projectId")},
		false,
	)
	if result == nil {
		return
	}
	uniresp.WriteRawJSONResponse(ctx.Writer, result.Value)
}

// NewTask godoc
// @Summary      NewTask
// @Description  Register a new mining task with its configuration
// @Accept       json
// @Produce      json
// @Param        projectId path string true "An ID of a project"
// @Param        task body newTaskRequest true "The task name and configuration"
// @Success      200 {object} results.newTaskResponse
// @Router       /projects/{projectId}/tasks [post]
func (a *Actions) NewTask(ctx *gin.Context) {
	var req newTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			merror.InputError{Msg: fmt.Sprintf("failed to parse task: %s", err)},
			http.StatusBadRequest,
		)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		uniresp.RespondWithErrorJSON(
			ctx, merror.InputError{Msg: "task name must not be empty"}, http.StatusBadRequest)
		return
	}
	args := rdb.NewTaskArgs{ProjectID: ctx.Param("projectId"), Name: req.Name}
	if len(req.Config) > 0 && string(req.Config) != "null" {
		args.Config = req.Config
	}
	result := a.runQuery(ctx, rdb.FuncNewTask, args, false)
	if result == nil {
		return
	}
	uniresp.WriteRawJSONResponse(ctx.Writer, result.Value)
}

// ListPatterns godoc
// @Summary      ListPatterns
// @Description  List patterns found by mining tasks, ordered by their score
// @Produce      json
// @Param        projectId path string true "An ID of a project"
// @Param        taskId query int false "An ID of a task (all tasks if omitted)"
// @Param        limit query int false "maximum number of patterns" default(0)
// @Success      200 {object} results.patternTableResponse
// @Router       /projects/{projectId}/patterns [get]
func (a *Actions) ListPatterns(ctx *gin.Context) {
	args, ok := a.patternsArgs(ctx)
	if !ok {
		return
	}
	result := a.runQuery(ctx, rdb.FuncPatterns, args, true)
	if result == nil {
		return
	}
	uniresp.WriteRawJSONResponse(ctx.Writer, result.Value)
}

func (a *Actions) patternsArgs(ctx *gin.Context) (rdb.PatternsArgs, bool) {
	taskID, ok := getTaskIDArg(ctx)
	if !ok {
		return rdb.PatternsArgs{}, false
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", 0)
	if !ok {
		return rdb.PatternsArgs{}, false
	}
	if limit < 0 {
		uniresp.RespondWithErrorJSON(
			ctx, merror.InputError{Msg: "limit must not be negative"}, http.StatusBadRequest)
		return rdb.PatternsArgs{}, false
	}
	return rdb.PatternsArgs{
		ProjectID: ctx.Param("projectId"),
		TaskID:    taskID,
		Limit:     limit,
	}, true
}
