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
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"cxquery/export"
	"cxquery/form"
	"cxquery/merror"
	"cxquery/rdb"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	csvContentType = "text/csv; charset=utf-8"
)

// PatternsCSV godoc
// @Summary      PatternsCSV
// @Description  Export patterns found by mining tasks as CSV
// @Produce      text/csv
// @Param        projectId path string true "An ID of a project"
// @Param        taskId query int false "An ID of a task (all tasks if omitted)"
// @Param        limit query int false "maximum number of patterns" default(0)
// @Success      200 {string} string
// @Router       /projects/{projectId}/patterns.csv [get]
func (a *Actions) PatternsCSV(ctx *gin.Context) {
	args, ok := a.patternsArgs(ctx)
	if !ok {
		return
	}
	result := a.runQuery(ctx, rdb.FuncPatterns, args, true)
	if result == nil {
		return
	}
	var table struct {
		Rows []form.PatternRow `json:"rows"`
	}
	if err := sonic.Unmarshal(result.Value, &table); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("failed to decode patterns: %w", err),
			http.StatusInternalServerError,
		)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePatternsCSV(&buf, table.Rows); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	ctx.Header(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s-patterns.csv\"", ctx.Param("projectId")),
	)
	ctx.Header("Content-Type", csvContentType)
	ctx.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Occurrences godoc
// @Summary      Occurrences
// @Description  Find occurrences of patterns with the provided form. Each occurrence
// @Description  comes with its whole sentence where the tokens realizing the pattern
// @Description  are labeled by the respective slots. Slot statistics are calculated
// @Description  from all the found occurrences, regardless of the limit.
// @Produce      json
// @Param        projectId path string true "An ID of a project"
// @Param        form query string true "A pattern form (slots separated by `~`)"
// @Param        taskId query int false "An ID of a task (all tasks if omitted)"
// @Param        limit query int false "maximum number of returned occurrences"
// @Success      200 {object} results.occurrencesResponse
// @Router       /projects/{projectId}/occurrences [get]
func (a *Actions) Occurrences(ctx *gin.Context) {
	patternForm := strings.TrimSpace(ctx.Query("form"))
	if patternForm == "" {
		uniresp.RespondWithErrorJSON(
			ctx, merror.InputError{Msg: "missing pattern form"}, http.StatusBadRequest)
		return
	}
	taskID, ok := getTaskIDArg(ctx)
	if !ok {
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", a.limits.DefaultContextLimit)
	if !ok {
		return
	}
	if limit < 0 {
		uniresp.RespondWithErrorJSON(
			ctx, merror.InputError{Msg: "limit must not be negative"}, http.StatusBadRequest)
		return
	}
	if a.limits.MaxContextLimit > 0 && (limit == 0 || limit > a.limits.MaxContextLimit) {
		limit = a.limits.MaxContextLimit
	}
	args := rdb.OccurrencesArgs{
		ProjectID: ctx.Param("projectId"),
		Form:      patternForm,
		TaskID:    taskID,
		Limit:     limit,
	}
	result := a.runQuery(ctx, rdb.FuncOccurrences, args, true)
	if result == nil {
		return
	}
	uniresp.WriteRawJSONResponse(ctx.Writer, result.Value)
}
