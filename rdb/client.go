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

package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cxquery/results"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MsgNewQuery                = "newQuery"
	MsgNewResult               = "newResult"
	DefaultQueueKey            = "cxqueryQueue"
	DefaultResultChannelPrefix = "cxqueryResults"
	DefaultQueryChannel        = "cxqueryQueries"
	DefaultResultExpiration    = 10 * time.Minute
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// DecodeArgs deserializes query arguments into the provided value
func (q Query) DecodeArgs(v any) error {
	if err := sonic.Unmarshal(q.Args, v); err != nil {
		return fmt.Errorf("failed to decode arguments of %s: %w", q.Func, err)
	}
	return nil
}

// NewQuery creates a query for a worker function with
// serialized arguments
func NewQuery(fn string, args any) (Query, error) {
	data, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to serialize arguments of %s: %w", fn, err)
	}
	return Query{Func: fn, Args: data}, nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.Unmarshal([]byte(q), &ans)
	return ans, err
}

// Adapter provides functions for passing queries to workers
// and for obtaining their results
type Adapter struct {
	ctx                 context.Context
	c                   *redis.Client
	channelQuery        string
	channelResultPrefix string
	queryAnswerTimeout  time.Duration
}

// TestConnection waits until Redis responds or the timeout
// elapses
func (a *Adapter) TestConnection(timeout time.Duration) error {
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	timeoutCh := time.After(timeout)
	for {
		select {
		case <-timeoutCh:
			return fmt.Errorf("failed to connect to the Redis server at %s", a.c.Options().Addr)
		case <-a.ctx.Done():
			return a.ctx.Err()
		case <-tick.C:
			log.Info().
				Str("address", a.c.Options().Addr).
				Msg("waiting for Redis server...")
			_, err := a.c.Ping(a.ctx).Result()
			if err != nil {
				log.Error().Err(err).Msg("...failed to get response from Redis server")

			} else {
				log.Info().Msg("...Redis server is available")
				return nil
			}
		}
	}
}

func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

func errorWorkerResult(fn string, err error, status int) *WorkerResult {
	ans := new(WorkerResult)
	if err2 := ans.AttachValue(&results.ErrorResult{Func: fn, Error: err.Error()}); err2 != nil {
		log.Error().Err(err2).Msg("failed to attach error result")
	}
	ans.Error = err.Error()
	ans.ErrorStatus = status
	return ans
}

// PublishQuery pushes the query to the queue and notifies workers.
// The returned channel provides exactly one result. In case no worker
// answers in time, an error result is provided.
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.channelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	sub := a.c.Subscribe(a.ctx, query.Channel)
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, DefaultQueueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, err
	}
	ans := make(chan *WorkerResult, 1)

	// now we wait for response and send result via `ans`
	go func() {
		defer close(ans)
		defer sub.Close()
		select {
		case item := <-sub.Channel():
			cmd := a.c.Get(a.ctx, item.Payload)
			if cmd.Err() != nil {
				ans <- errorWorkerResult(query.Func, cmd.Err(), http.StatusInternalServerError)
				return
			}
			result := new(WorkerResult)
			if err := sonic.Unmarshal([]byte(cmd.Val()), result); err != nil {
				ans <- errorWorkerResult(query.Func, err, http.StatusInternalServerError)
				return
			}
			ans <- result
		case <-time.After(a.queryAnswerTimeout):
			ans <- errorWorkerResult(
				query.Func,
				fmt.Errorf("worker result timeout (%s)", a.queryAnswerTimeout),
				http.StatusGatewayTimeout,
			)
		case <-a.ctx.Done():
			ans <- errorWorkerResult(query.Func, a.ctx.Err(), http.StatusServiceUnavailable)
		}
	}()
	return ans, a.c.Publish(a.ctx, a.channelQuery, MsgNewQuery).Err()
}

func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, DefaultQueueKey)
	if errors.Is(cmd.Err(), redis.Nil) {
		return Query{}, ErrorEmptyQueue

	} else if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

// PublishResult stores the result under the channel name and notifies
// the waiting subscriber
func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType.String()).
		Msg("publishing result")
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := a.c.Set(a.ctx, channelName, string(data), DefaultResultExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

// Subscribe returns a channel notifying about new queries
func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.channelQuery)
	return sub.Channel()
}

func (a *Adapter) jobLogChannel() string {
	return a.channelQuery + ":jobs"
}

// PublishJobLog reports a finished job to whoever monitors workers
func (a *Adapter) PublishJobLog(rec results.JobLog) error {
	data, err := rec.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job log: %w", err)
	}
	return a.c.Publish(a.ctx, a.jobLogChannel(), data).Err()
}

// SubscribeJobLogs provides job logs published by workers. The channel
// is closed once the adapter's context is done.
func (a *Adapter) SubscribeJobLogs() <-chan results.JobLog {
	sub := a.c.Subscribe(a.ctx, a.jobLogChannel())
	ans := make(chan results.JobLog)
	go func() {
		defer close(ans)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-a.ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var rec results.JobLog
				if err := sonic.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					log.Error().Err(err).Msg("failed to decode job log")
					continue
				}
				select {
				case ans <- rec:
				case <-a.ctx.Done():
					return
				}
			}
		}
	}()
	return ans
}

func (a *Adapter) Close() error {
	return a.c.Close()
}

func NewAdapter(conf *Conf, ctx context.Context) *Adapter {
	chRes := conf.ChannelResultPrefix
	chQuery := conf.ChannelQuery
	if chRes == "" {
		chRes = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", chRes).
			Msg("Redis channel for results not specified, using default")
	}
	if chQuery == "" {
		chQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", chQuery).
			Msg("Redis channel for queries not specified, using default")
	}
	timeout := time.Duration(conf.QueryAnswerTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(dfltQueryAnswerTimeoutSecs) * time.Second
	}
	return &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     conf.ServerInfo(),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:                 ctx,
		channelQuery:        chQuery,
		channelResultPrefix: chRes,
		queryAnswerTimeout:  timeout,
	}
}
