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

package engine

import (
	"context"
	"fmt"
	"time"

	"cxquery/results"
	"cxquery/store"

	"github.com/rs/zerolog/log"
)

// RowSource provides the sentence-scoped join of positions and
// tokens for patterns of a specific form
type RowSource interface {
	ScanOccurrenceRows(
		ctx context.Context,
		form string,
		taskID int64,
		fn func(row store.OccurrenceRow) error,
	) error
}

// FindOccurrences returns occurrences of all the patterns with the
// provided form regardless of the task they belong to. A form
// without any stored pattern produces an empty result.
func FindOccurrences(ctx context.Context, src RowSource, form string, limit int) (results.Occurrences, error) {
	return FindTaskOccurrences(ctx, src, form, 0, limit)
}

// FindTaskOccurrences is like FindOccurrences but with a positive
// taskID, only patterns of the task are involved.
func FindTaskOccurrences(
	ctx context.Context,
	src RowSource,
	form string,
	taskID int64,
	limit int,
) (results.Occurrences, error) {
	t0 := time.Now()
	rec := NewReconstructor(form)
	err := src.ScanOccurrenceRows(ctx, form, taskID, func(row store.OccurrenceRow) error {
		rec.Add(row)
		return nil
	})
	if err != nil {
		return results.Occurrences{Form: form}, fmt.Errorf("failed to find occurrences: %w", err)
	}
	ans := rec.Result(limit)
	log.Debug().
		Str("form", form).
		Int64("taskId", taskID).
		Int("numRows", rec.numRows).
		Int("numOccurrences", rec.NumOccurrences()).
		Int("numReturned", len(ans.Items)).
		Dur("procTime", time.Since(t0)).
		Msg("reconstructed occurrences")
	return ans, nil
}
