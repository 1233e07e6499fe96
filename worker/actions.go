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

package worker

import (
	"context"
	"strings"

	"cxquery/engine"
	"cxquery/form"
	"cxquery/merror"
	"cxquery/rdb"
	"cxquery/results"
	"cxquery/store"
)

func (w *Worker) occurrences(ctx context.Context, args rdb.OccurrencesArgs) *results.Occurrences {
	ans := &results.Occurrences{Form: args.Form}
	if strings.TrimSpace(args.Form) == "" {
		ans.Error = merror.InputError{Msg: "pattern form must not be empty"}
		return ans
	}
	if args.Limit < 0 {
		ans.Error = merror.InputError{Msg: "limit must not be negative"}
		return ans
	}
	ans.Error = w.registry.Use(ctx, args.ProjectID, func(s *store.Store) error {
		occ, err := engine.FindTaskOccurrences(ctx, s, args.Form, args.TaskID, args.Limit)
		if err != nil {
			return err
		}
		*ans = occ
		return nil
	})
	return ans
}

func (w *Worker) patterns(ctx context.Context, args rdb.PatternsArgs) *results.PatternTable {
	ans := &results.PatternTable{TaskID: args.TaskID, Rows: []form.PatternRow{}}
	if args.Limit < 0 {
		ans.Error = merror.InputError{Msg: "limit must not be negative"}
		return ans
	}
	ans.Error = w.registry.Use(ctx, args.ProjectID, func(s *store.Store) error {
		patterns, err := s.ListPatterns(ctx, store.PatternFilter{TaskID: args.TaskID, Limit: args.Limit})
		if err != nil {
			return err
		}
		ans.Rows = form.NewPatternTable(patterns)
		return nil
	})
	return ans
}

func (w *Worker) tasks(ctx context.Context, args rdb.TasksArgs) *results.TaskList {
	ans := &results.TaskList{Tasks: []store.Task{}}
	ans.Error = w.registry.Use(ctx, args.ProjectID, func(s *store.Store) error {
		tasks, err := s.ListTasks(ctx)
		if err != nil {
			return err
		}
		ans.Tasks = tasks
		return nil
	})
	return ans
}

func (w *Worker) newTask(ctx context.Context, args rdb.NewTaskArgs) *results.NewTask {
	ans := &results.NewTask{}
	if strings.TrimSpace(args.Name) == "" {
		ans.Error = merror.InputError{Msg: "task name must not be empty"}
		return ans
	}
	ans.Error = w.registry.Use(ctx, args.ProjectID, func(s *store.Store) error {
		taskID, err := s.NewTask(ctx, args.Name, args.Config)
		if err != nil {
			return err
		}
		ans.TaskID = taskID
		return nil
	})
	return ans
}
