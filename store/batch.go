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
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultBatchSize = 500
)

var (
	ErrBatchWriterClosed = errors.New("batch writer closed")
)

// WriteFunc performs database writes inside a transaction
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write operations and commits them in batches,
// each batch in its own transaction. It is used for bulk corpus
// ingestion where a per-row transaction would be too slow.
type BatchWriter struct {
	mu       sync.Mutex
	buf      []WriteFunc
	cap      int
	ticker   *time.Ticker
	closed   bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	commitCh chan []WriteFunc
	db       *sql.DB

	// errMu protects firstErr
	errMu    sync.Mutex
	firstErr error

	numCommitted int
}

// NewBatchWriter creates a writer flushing after bufferSize
// submitted functions or after flushInterval (0 disables
// the time-based flushing).
func (s *Store) NewBatchWriter(bufferSize int, flushInterval time.Duration) (*BatchWriter, error) {
	if s.db == nil {
		return nil, fmt.Errorf("cannot create batch writer: store %s is closed", s.path)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBatchSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       s.db,
	}
	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.ticker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw, nil
}

// Submit enqueues a write function
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked expects bw.mu to be held
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)
	bw.commitCh <- batch
}

func (bw *BatchWriter) recordErr(err error) {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	if bw.firstErr == nil {
		bw.firstErr = err
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if err := bw.executeBatch(batch); err != nil {
			bw.recordErr(err)
			continue
		}
		bw.numCommitted += len(batch)
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	// flushing must survive the writer's own cancellation
	ctx := context.Background()
	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer tx.Rollback()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.ticker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting submissions, waits for pending writes and
// returns the first error any of the batches failed with.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.firstErr
}

// NumCommitted returns number of successfully committed write
// functions. The value is final once Close returns.
func (bw *BatchWriter) NumCommitted() int {
	return bw.numCommitted
}

// ---------------------------

// InsertSentence stores a sentence along with its tokens. Token
// sentence IDs are taken from the sentence.
func InsertSentence(ctx context.Context, db DBExecutor, sent Sentence, tokens []Token) error {
	_, err := db.ExecContext(
		ctx,
		"INSERT INTO sentence (id, file_name) VALUES (?, ?)",
		sent.ID, sent.FileName,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sentence %d: %w", sent.ID, err)
	}
	for _, t := range tokens {
		var supersense sql.NullString
		if t.Supersense != "" {
			supersense = sql.NullString{String: t.Supersense, Valid: true}
		}
		_, err := db.ExecContext(
			ctx,
			"INSERT INTO token (id, sentence_id, text, lemma, upos, xpos, head_id, deprel, supersense) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, sent.ID, t.Text, t.Lemma, t.UPOS, t.XPOS, t.HeadID, t.Deprel, supersense,
		)
		if err != nil {
			return fmt.Errorf("failed to insert token %d of sentence %d: %w", t.ID, sent.ID, err)
		}
	}
	return nil
}

// InsertSentences stores sentences with their tokens using a single
// transaction. The tokens map is keyed by sentence ID.
func (s *Store) InsertSentences(ctx context.Context, sents []Sentence, tokens map[int64][]Token) error {
	if s.db == nil {
		return fmt.Errorf("store %s is closed", s.path)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()
	for _, sent := range sents {
		if err := InsertSentence(ctx, tx, sent, tokens[sent.ID]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountSentences returns number of stored sentences
func (s *Store) CountSentences(ctx context.Context) (int, error) {
	db, err := s.executor()
	if err != nil {
		return 0, err
	}
	var ans int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sentence").Scan(&ans)
	return ans, err
}
