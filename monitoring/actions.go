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

package monitoring

import (
	"errors"
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type Actions struct {
	logger *WorkerJobLogger
}

// WorkersLoad godoc
// @Summary      Load of all the workers
// @Produce      json
// @Success      200 {object} any
// @Router       /monitoring/workers-load [get]
func (a *Actions) WorkersLoad(ctx *gin.Context) {
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string]any{
			"total":  a.logger.TotalLoad(),
			"recent": a.logger.RecentLoad(),
		},
	)
}

// WorkerLoad godoc
// @Summary      Load of a single worker
// @Produce      json
// @Param        workerId path string true "Worker ID"
// @Success      200 {object} any
// @Router       /monitoring/workers-load/{workerId} [get]
func (a *Actions) WorkerLoad(ctx *gin.Context) {
	load, err := a.logger.TotalWorkerLoad(ctx.Param("workerId"))
	if errors.Is(err, ErrWorkerNotFound) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, load)
}

// RecentJobs godoc
// @Summary      Recently processed jobs
// @Produce      json
// @Success      200 {object} any
// @Router       /monitoring/recent-jobs [get]
func (a *Actions) RecentJobs(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, a.logger.RecentRecords())
}

func NewActions(logger *WorkerJobLogger) *Actions {
	return &Actions{logger: logger}
}
