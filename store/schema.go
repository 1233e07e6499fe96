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
	"strings"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS task (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	config TEXT NOT NULL,
	time_added DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS pattern (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form TEXT NOT NULL,
	"left" TEXT NOT NULL,
	"right" TEXT NOT NULL,
	count INTEGER NOT NULL,
	score REAL NOT NULL,
	task_id INTEGER NOT NULL REFERENCES task(id)
);
CREATE INDEX IF NOT EXISTS idx_pattern_form ON pattern(form);
CREATE INDEX IF NOT EXISTS idx_pattern_task_id ON pattern(task_id);

CREATE TABLE IF NOT EXISTS sentence (
	id INTEGER PRIMARY KEY,
	file_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS token (
	id INTEGER NOT NULL,
	sentence_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	lemma TEXT NOT NULL,
	upos TEXT NOT NULL,
	xpos TEXT NOT NULL,
	head_id INTEGER NOT NULL,
	deprel TEXT NOT NULL,
	supersense TEXT,
	PRIMARY KEY (sentence_id, id)
);

CREATE TABLE IF NOT EXISTS position (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern_id INTEGER NOT NULL REFERENCES pattern(id),
	sentence_id INTEGER NOT NULL,
	token_ids TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_position_pattern_id ON position(pattern_id);
CREATE INDEX IF NOT EXISTS idx_position_sentence_id ON position(sentence_id);
`

// schemaTables lists tables which must be present
// in a valid store
var schemaTables = []string{"task", "pattern", "sentence", "token", "position"}

func initSchema(ctx context.Context, db DBExecutor) error {
	stmts := strings.Split(schemaSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// countSchemaTables returns number of the store's tables
// found in the database.
func countSchemaTables(ctx context.Context, db DBExecutor) (int, error) {
	args := make([]any, len(schemaTables))
	for i, v := range schemaTables {
		args[i] = v
	}
	var ans int
	err := db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN (?, ?, ?, ?, ?)",
		args...,
	).Scan(&ans)
	return ans, err
}
