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
	"fmt"
	"strings"
)

// PatternFilter limits a pattern listing. Zero values mean
// "no restriction".
type PatternFilter struct {
	TaskID int64
	Limit  int
}

// ListPatterns returns patterns ordered by score (descending).
// A filter referring to a non-existing task produces an empty list.
func (s *Store) ListPatterns(ctx context.Context, filter PatternFilter) ([]Pattern, error) {
	db, err := s.executor()
	if err != nil {
		return nil, err
	}
	var sql1 strings.Builder
	sql1.WriteString(
		`SELECT id, form, "left", "right", count, score, task_id FROM pattern `)
	args := make([]any, 0, 2)
	if filter.TaskID > 0 {
		sql1.WriteString("WHERE task_id = ? ")
		args = append(args, filter.TaskID)
	}
	sql1.WriteString("ORDER BY score DESC, id ")
	if filter.Limit > 0 {
		sql1.WriteString("LIMIT ?")
		args = append(args, filter.Limit)
	}
	rows, err := db.QueryContext(ctx, sql1.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()
	ans := make([]Pattern, 0, 50)
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.ID, &p.Form, &p.Left, &p.Right, &p.Count, &p.Score, &p.TaskID); err != nil {
			return nil, fmt.Errorf("failed to list patterns: %w", err)
		}
		ans = append(ans, p)
	}
	return ans, rows.Err()
}

// ScanOccurrenceRows streams the sentence-scoped join of all the
// patterns with the provided form, their positions and all the tokens
// of the sentences the positions refer to. Rows of a single position
// are contiguous and sorted by token ID. With a positive taskID, only
// patterns of the task are involved.
func (s *Store) ScanOccurrenceRows(
	ctx context.Context,
	form string,
	taskID int64,
	fn func(row OccurrenceRow) error,
) error {
	db, err := s.executor()
	if err != nil {
		return err
	}
	sql1 := "SELECT p.id, po.id, po.sentence_id, po.token_ids, " +
		"t.id, t.text, t.lemma, t.upos, t.xpos, t.head_id, t.deprel, COALESCE(t.supersense, '') " +
		"FROM pattern AS p " +
		"JOIN position AS po ON po.pattern_id = p.id " +
		"JOIN token AS t ON t.sentence_id = po.sentence_id " +
		"WHERE p.form = ? "
	args := []any{form}
	if taskID > 0 {
		sql1 += "AND p.task_id = ? "
		args = append(args, taskID)
	}
	sql1 += "ORDER BY po.id, t.id"
	rows, err := db.QueryContext(ctx, sql1, args...)
	if err != nil {
		return fmt.Errorf("failed to query occurrences of %s: %w", form, err)
	}
	defer rows.Close()
	for rows.Next() {
		var row OccurrenceRow
		err := rows.Scan(
			&row.PatternID, &row.PositionID, &row.SentenceID, &row.TokenIDs,
			&row.Token.ID, &row.Token.Text, &row.Token.Lemma, &row.Token.UPOS,
			&row.Token.XPOS, &row.Token.HeadID, &row.Token.Deprel, &row.Token.Supersense,
		)
		if err != nil {
			return fmt.Errorf("failed to read occurrence row: %w", err)
		}
		row.Token.SentenceID = row.SentenceID
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
