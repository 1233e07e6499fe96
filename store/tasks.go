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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewTask inserts a new mining task and returns its generated ID.
// The config is stored verbatim.
func (s *Store) NewTask(ctx context.Context, name string, config json.RawMessage) (int64, error) {
	db, err := s.executor()
	if err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("task name must be non-empty")
	}
	res, err := db.ExecContext(
		ctx,
		"INSERT INTO task (name, config, time_added) VALUES (?, ?, ?)",
		name, string(config), time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	return res.LastInsertId()
}

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	var config string
	if err := row.Scan(&t.ID, &t.Name, &config, &t.TimeAdded); err != nil {
		return t, err
	}
	if config != "" {
		t.Config = json.RawMessage(config)
	}
	return t, nil
}

// ListTasks returns all the tasks ordered by their IDs
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	db, err := s.executor()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT id, name, config, time_added FROM task ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()
	ans := make([]Task, 0, 10)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		ans = append(ans, t)
	}
	return ans, rows.Err()
}

// GetTask returns a task by its ID. The second returned value
// is false in case no such task exists.
func (s *Store) GetTask(ctx context.Context, id int64) (Task, bool, error) {
	db, err := s.executor()
	if err != nil {
		return Task{}, false, err
	}
	t, err := scanTask(
		db.QueryRowContext(ctx, "SELECT id, name, config, time_added FROM task WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, false, nil

	} else if err != nil {
		return Task{}, false, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return t, true, nil
}
