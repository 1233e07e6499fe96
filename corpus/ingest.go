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

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cxquery/store"

	"github.com/rs/zerolog/log"
)

type IngestOptions struct {

	// Substitutions are applied to each token before it is stored.
	// Nil means no substitution.
	Substitutions *Substitutions

	// MaxSentences limits the number of ingested sentences (0 = no limit)
	MaxSentences int

	// BatchSize is the number of sentences per write transaction
	BatchSize int
}

type IngestStats struct {
	NumSentences int           `json:"numSentences"`
	NumTokens    int           `json:"numTokens"`
	ProcTime     time.Duration `json:"procTime"`
}

// Ingest stores the sentences into an empty store. Sentences obtain
// IDs 1..N in their original order.
func Ingest(ctx context.Context, s *store.Store, sents []Sentence, opts IngestOptions) (IngestStats, error) {
	var stats IngestStats
	t0 := time.Now()
	if err := Validate(sents); err != nil {
		return stats, err
	}
	numExisting, err := s.CountSentences(ctx)
	if err != nil {
		return stats, err
	}
	if numExisting > 0 {
		return stats, fmt.Errorf("store %s already contains %d sentences", s.Path(), numExisting)
	}
	if opts.MaxSentences > 0 && len(sents) > opts.MaxSentences {
		sents = sents[:opts.MaxSentences]
	}
	bw, err := s.NewBatchWriter(opts.BatchSize, 0)
	if err != nil {
		return stats, err
	}
	for i, sent := range sents {
		if err := ctx.Err(); err != nil {
			bw.Close()
			return stats, err
		}
		record := store.Sentence{ID: int64(i + 1), FileName: sent.FileName}
		tokens := make([]store.Token, len(sent.Tokens))
		for j, tok := range sent.Tokens {
			if opts.Substitutions != nil {
				opts.Substitutions.Apply(&tok)
			}
			tokens[j] = store.Token{
				ID:         tok.ID,
				SentenceID: record.ID,
				Text:       tok.Text,
				Lemma:      tok.Lemma,
				UPOS:       tok.UPOS,
				XPOS:       tok.XPOS,
				HeadID:     tok.HeadID,
				Deprel:     tok.Deprel,
				Supersense: tok.Supersense,
			}
		}
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return store.InsertSentence(ctx, tx, record, tokens)
		})
		if err != nil {
			bw.Close()
			return stats, err
		}
		stats.NumTokens += len(tokens)
	}
	if err := bw.Close(); err != nil {
		return stats, fmt.Errorf("failed to ingest corpus: %w", err)
	}
	stats.NumSentences = bw.NumCommitted()
	stats.ProcTime = time.Since(t0)
	log.Info().
		Str("store", s.Path()).
		Int("numSentences", stats.NumSentences).
		Int("numTokens", stats.NumTokens).
		Dur("procTime", stats.ProcTime).
		Msg("corpus ingested")
	return stats, nil
}
