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
	"errors"
	"fmt"
	"math/rand"
	"time"

	"cxquery/merror"
	"cxquery/project"
	"cxquery/rdb"
	"cxquery/results"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type queryQueue interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
}

type jobLogger interface {
	Log(rec results.JobLog)
}

// Worker takes queries from a queue one at a time, runs them against
// project stores and publishes their results
type Worker struct {
	ID         string
	messages   <-chan *redis.Message
	queue      queryQueue
	registry   *project.Registry
	ticker     *time.Ticker
	jobLogger  jobLogger
	currJobLog *results.JobLog
	done       chan struct{}
}

func (w *Worker) publishResult(res results.FuncResult, channel string) error {
	ans, err := rdb.CreateWorkerResult(res)
	if err != nil {
		return err
	}
	if w.currJobLog != nil {
		w.currJobLog.End = time.Now()
		if res.Err() != nil {
			w.currJobLog.Err = res.Err().Error()
		}
		ans.ProcBegin = w.currJobLog.Begin
		ans.ProcEnd = w.currJobLog.End
		w.jobLogger.Log(*w.currJobLog)
		w.currJobLog = nil
	}
	return w.queue.PublishResult(channel, ans)
}

func (w *Worker) sendPublishingErr(query rdb.Query, err error) {
	ans := &results.ErrorResult{
		Func:      query.Func,
		Error:     err.Error(),
		UserError: merror.IsUserError(err),
	}
	if err := w.publishResult(ans, query.Channel); err != nil {
		log.Error().Err(err).Msg("failed to publish general publishing error")
	}
}

func (w *Worker) runQueryProtected(ctx context.Context, query rdb.Query) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = merror.RecoveredError{Msg: merror.PanicValueToErr(r).Error()}
			return
		}
	}()
	var ans results.FuncResult
	switch query.Func {
	case rdb.FuncOccurrences:
		var args rdb.OccurrencesArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		ans = w.occurrences(ctx, args)
	case rdb.FuncPatterns:
		var args rdb.PatternsArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		ans = w.patterns(ctx, args)
	case rdb.FuncTasks:
		var args rdb.TasksArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		ans = w.tasks(ctx, args)
	case rdb.FuncNewTask:
		var args rdb.NewTaskArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		ans = w.newTask(ctx, args)
	default:
		ans = &results.ErrorResult{Func: query.Func, Error: fmt.Sprintf("unknown query function: %s", query.Func)}
	}
	if err := w.publishResult(ans, query.Channel); err != nil {
		w.sendPublishingErr(query, err)
		return err
	}
	return nil
}

func (w *Worker) tryNextQuery(ctx context.Context) error {
	query, err := w.queue.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		RawJSON("args", query.Args).
		Msg("received query")

	isActive, err := w.queue.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			RawJSON("args", query.Args).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &results.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}

	err = w.runQueryProtected(ctx, query)
	var rcvErr merror.RecoveredError
	if errors.As(err, &rcvErr) {
		ans := &results.ErrorResult{
			Error: fmt.Sprintf("worker panicked: %s", rcvErr.Error()),
			Func:  query.Func,
		}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}

	} else if err != nil && w.currJobLog != nil {
		// arguments could not be decoded, the client is still waiting
		w.sendPublishingErr(query, merror.InputError{Msg: err.Error()})
	}
	return nil
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case <-w.ticker.C:
				if err := w.tryNextQuery(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			case <-ctx.Done():
				log.Info().Msg("worker exiting")
				return
			case msg, ok := <-w.messages:
				if !ok {
					w.messages = nil
					continue
				}
				if msg.Payload == rdb.MsgNewQuery {
					// give other workers a chance
					time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
					if err := w.tryNextQuery(ctx); err != nil {
						log.Error().Err(err).Msg("failed to process query")
					}
				}
			}
		}
	}()
}

func (w *Worker) Stop(ctx context.Context) error {
	w.ticker.Stop()
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Warn().Msg("worker stopped, closing project store")
	return w.registry.Close()
}

func NewWorker(
	workerID string,
	queue queryQueue,
	messages <-chan *redis.Message,
	registry *project.Registry,
	jobLogger jobLogger,
) *Worker {
	return &Worker{
		ID:        workerID,
		queue:     queue,
		messages:  messages,
		registry:  registry,
		ticker:    time.NewTicker(DefaultTickerInterval),
		jobLogger: jobLogger,
		done:      make(chan struct{}),
	}
}
