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
	"sort"

	"cxquery/form"
	"cxquery/results"
	"cxquery/store"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

type occurrenceKey struct {
	sentenceID int64
	tokenIDs   string
}

type pendingOccurrence struct {
	sentenceID int64
	tokenIDs   []int
	tokens     map[int]store.Token
}

type decodedIDs struct {
	ids []int
	err error
}

// Reconstructor joins occurrence rows into occurrences. Rows can
// come in any order; an occurrence is identified by its sentence and
// its token IDs so positions sharing both (e.g. from different tasks
// or stored twice) are merged. Occurrences are kept in the order of
// their first appearance.
type Reconstructor struct {
	form     string
	slots    []string
	index    map[occurrenceKey]*pendingOccurrence
	order    []*pendingOccurrence
	decoded  map[string]decodedIDs
	rejected map[int64]bool
	numRows  int
}

// Add processes a single row. Rows with malformed token IDs are
// skipped and the respective position is logged (once).
func (r *Reconstructor) Add(row store.OccurrenceRow) {
	r.numRows++
	dec, ok := r.decoded[row.TokenIDs]
	if !ok {
		ids, err := store.DecodeTokenIDs(row.TokenIDs)
		dec = decodedIDs{ids: ids, err: err}
		r.decoded[row.TokenIDs] = dec
	}
	if dec.err != nil {
		if !r.rejected[row.PositionID] {
			log.Warn().
				Err(dec.err).
				Str("form", r.form).
				Int64("patternId", row.PatternID).
				Int64("positionId", row.PositionID).
				Int64("sentenceId", row.SentenceID).
				Str("tokenIds", row.TokenIDs).
				Msg("skipping malformed occurrence")
			r.rejected[row.PositionID] = true
		}
		return
	}
	key := occurrenceKey{sentenceID: row.SentenceID, tokenIDs: store.EncodeTokenIDs(dec.ids)}
	occ, ok := r.index[key]
	if !ok {
		occ = &pendingOccurrence{
			sentenceID: row.SentenceID,
			tokenIDs:   dec.ids,
			tokens:     make(map[int]store.Token),
		}
		r.index[key] = occ
		r.order = append(r.order, occ)
	}
	occ.tokens[row.Token.ID] = row.Token
}

// NumOccurrences returns number of distinct occurrences added so far
func (r *Reconstructor) NumOccurrences() int {
	return len(r.order)
}

func (r *Reconstructor) label(occ *pendingOccurrence) results.Occurrence {
	tokens := make([]store.Token, 0, len(occ.tokens))
	for _, t := range occ.tokens {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].ID < tokens[j].ID
	})
	matched := collections.NewSet[int]()
	for _, id := range occ.tokenIDs {
		matched.Add(id)
	}
	ans := results.Occurrence{
		SentenceID: occ.sentenceID,
		TokenIDs:   occ.tokenIDs,
		Tokens:     make([]results.LabeledToken, len(tokens)),
	}
	cursor := 0
	for i, t := range tokens {
		ans.Tokens[i] = results.LabeledToken{ID: t.ID, Text: t.Text}
		if cursor < len(r.slots) && matched.Contains(t.ID) {
			label := r.slots[cursor]
			ans.Tokens[i].Label = &label
			cursor++
		}
	}
	return ans
}

// Result labels all the collected occurrences, calculates slot
// statistics over all of them and returns at most limit occurrences
// (limit <= 0 means no limit).
func (r *Reconstructor) Result(limit int) results.Occurrences {
	stats := newSlotStatsBuilder(r.slots)
	items := make([]results.Occurrence, 0, len(r.order))
	for _, occ := range r.order {
		labeled := r.label(occ)
		stats.addOccurrence(labeled)
		if limit <= 0 || len(items) < limit {
			items = append(items, labeled)
		}
	}
	return results.Occurrences{
		Form:      r.form,
		Total:     len(r.order),
		Items:     items,
		SlotStats: stats.build(),
	}
}

func NewReconstructor(patternForm string) *Reconstructor {
	return &Reconstructor{
		form:     patternForm,
		slots:    form.Split(patternForm),
		index:    make(map[occurrenceKey]*pendingOccurrence),
		order:    make([]*pendingOccurrence, 0, 100),
		decoded:  make(map[string]decodedIDs),
		rejected: make(map[int64]bool),
	}
}
