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
	"database/sql"
	"fmt"

	"cxquery/merror"

	"github.com/rs/zerolog/log"
)

// RunWriter stores results of a single mining run. All the patterns
// and positions are written in one transaction so readers never see
// a partially stored run.
type RunWriter struct {
	tx           *sql.Tx
	taskID       int64
	stmtPattern  *sql.Stmt
	stmtPosition *sql.Stmt
	numPatterns  int
	numPositions int
	done         bool
}

// BeginRun starts writing results of the task. The task must exist.
func (s *Store) BeginRun(ctx context.Context, taskID int64) (*RunWriter, error) {
	_, ok, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, merror.InputError{Msg: fmt.Sprintf("task %d not found", taskID)}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin mining run tx: %w", err)
	}
	stmtPattern, err := tx.PrepareContext(
		ctx,
		`INSERT INTO pattern (form, "left", "right", count, score, task_id) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare pattern insert: %w", err)
	}
	stmtPosition, err := tx.PrepareContext(
		ctx,
		"INSERT INTO position (pattern_id, sentence_id, token_ids) VALUES (?, ?, ?)",
	)
	if err != nil {
		stmtPattern.Close()
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare position insert: %w", err)
	}
	return &RunWriter{
		tx:           tx,
		taskID:       taskID,
		stmtPattern:  stmtPattern,
		stmtPosition: stmtPosition,
	}, nil
}

// AddPattern stores a pattern under the run's task and returns
// the pattern's new ID. Possible ID and TaskID of the argument
// are ignored.
func (rw *RunWriter) AddPattern(ctx context.Context, p Pattern) (int64, error) {
	if rw.done {
		return 0, fmt.Errorf("mining run already finished")
	}
	res, err := rw.stmtPattern.ExecContext(ctx, p.Form, p.Left, p.Right, p.Count, p.Score, rw.taskID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pattern %s: %w", p.Form, err)
	}
	rw.numPatterns++
	return res.LastInsertId()
}

// AddPosition stores an occurrence of a pattern added within the run
func (rw *RunWriter) AddPosition(ctx context.Context, patternID, sentenceID int64, tokenIDs []int) (int64, error) {
	if rw.done {
		return 0, fmt.Errorf("mining run already finished")
	}
	if len(tokenIDs) == 0 {
		return 0, fmt.Errorf("position of pattern %d has no token ids", patternID)
	}
	res, err := rw.stmtPosition.ExecContext(ctx, patternID, sentenceID, EncodeTokenIDs(tokenIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to insert position of pattern %d: %w", patternID, err)
	}
	rw.numPositions++
	return res.LastInsertId()
}

func (rw *RunWriter) closeStmts() {
	rw.stmtPattern.Close()
	rw.stmtPosition.Close()
	rw.done = true
}

// Commit makes the whole run visible to readers
func (rw *RunWriter) Commit() error {
	if rw.done {
		return fmt.Errorf("mining run already finished")
	}
	rw.closeStmts()
	if err := rw.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mining run: %w", err)
	}
	log.Info().
		Int64("taskId", rw.taskID).
		Int("patterns", rw.numPatterns).
		Int("positions", rw.numPositions).
		Msg("stored mining run")
	return nil
}

// Rollback discards the whole run. Calling Rollback after
// Commit is a no-op so it can be deferred.
func (rw *RunWriter) Rollback() error {
	if rw.done {
		return nil
	}
	rw.closeStmts()
	return rw.tx.Rollback()
}
