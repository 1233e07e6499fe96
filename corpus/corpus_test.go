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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cxquery/engine"
	"cxquery/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `[
	{"file_name": "book1", "tokens": [
		{"id": 1, "text": "I", "lemma": "I", "upos": "PRON", "xpos": "PRP", "deprel": "nsubj", "head_id": 3, "supersense": ""},
		{"id": 2, "text": "'ve", "lemma": "ve", "upos": "AUX", "xpos": "VBP", "deprel": "aux", "head_id": 3, "supersense": ""},
		{"id": 3, "text": "seen", "lemma": "see", "upos": "VERB", "xpos": "VBN", "deprel": "root", "head_id": 0, "supersense": "v.perception"},
		{"id": 4, "text": "myself", "lemma": "myself", "upos": "PRON", "xpos": "PRP", "deprel": "obj", "head_id": 3, "supersense": ""}
	]},
	{"file_name": "book1", "tokens": [
		{"id": 1, "text": "Where", "lemma": "where", "upos": "ADV", "xpos": "WRB", "deprel": "advmod", "head_id": 2, "supersense": ""},
		{"id": 2, "text": "Prague", "lemma": "Prague", "upos": "PROPN", "xpos": "NNP", "deprel": "root", "head_id": 0, "supersense": "n.location"}
	]},
	{"file_name": "book2", "tokens": [
		{"id": 1, "text": "Hi", "lemma": "hi", "upos": "INTJ", "xpos": "UH", "deprel": "root", "head_id": 0, "supersense": null}
	]}
]`

func TestDecode(t *testing.T) {
	sents, err := Decode(strings.NewReader(testCorpus))
	require.NoError(t, err)
	require.Len(t, sents, 3)
	assert.Equal(t, "book1", sents[0].FileName)
	assert.Equal(t, 3, sents[0].Tokens[1].HeadID)
	assert.Equal(t, "v.perception", sents[0].Tokens[2].Supersense)
	assert.Equal(t, "", sents[2].Tokens[0].Supersense)

	_, err = Decode(strings.NewReader(`{"foo": 1}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0644))
	sents, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Len(t, sents, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nothing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]Sentence{{FileName: "a", Tokens: []Token{{ID: 1}, {ID: 2}}}}))
	assert.Error(t, Validate([]Sentence{{FileName: "a"}}))
	assert.Error(t, Validate([]Sentence{{FileName: "a", Tokens: []Token{{ID: 1}, {ID: 1}}}}))
	assert.NoError(t, Validate([]Sentence{{FileName: "a", Tokens: []Token{{ID: 0}, {ID: 1}}}}))
	assert.Error(t, Validate([]Sentence{{FileName: "a", Tokens: []Token{{ID: -1}}}}))
	assert.Error(t, Validate([]Sentence{{FileName: "a", Tokens: []Token{{ID: 0}, {ID: 0}}}}))
}

func TestSubstitutions(t *testing.T) {
	subs := DefaultSubstitutions()
	tok := Token{Lemma: "myself", UPOS: "PRON", XPOS: "WP$"}
	subs.Apply(&tok)
	assert.Equal(t, "oneself", tok.Lemma)
	assert.Equal(t, "NOUN", tok.UPOS)
	assert.Equal(t, "WH", tok.XPOS)

	tok = Token{Lemma: "their", UPOS: "DET", XPOS: "PRP$"}
	subs.Apply(&tok)
	assert.Equal(t, "one's", tok.Lemma)
	assert.Equal(t, "DET", tok.UPOS)
	assert.Equal(t, "PRP$", tok.XPOS)

	tok = Token{Lemma: "ca", UPOS: "AUX", XPOS: "MD"}
	subs.Apply(&tok)
	assert.Equal(t, "can", tok.Lemma)
}

func newStore(t *testing.T) *store.Store {
	s, err := store.Create(context.Background(), filepath.Join(t.TempDir(), "db.sqlite3"), store.CreateFail)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sents, err := Decode(strings.NewReader(testCorpus))
	require.NoError(t, err)
	subs := DefaultSubstitutions()
	stats, err := Ingest(ctx, s, sents, IngestOptions{Substitutions: &subs, BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NumSentences)
	assert.Equal(t, 7, stats.NumTokens)

	taskID, err := s.NewTask(ctx, "t1", nil)
	require.NoError(t, err)
	rw, err := s.BeginRun(ctx, taskID)
	require.NoError(t, err)
	pid, err := rw.AddPattern(ctx, store.Pattern{Form: "WH~NOUN"})
	require.NoError(t, err)
	_, err = rw.AddPosition(ctx, pid, 2, []int{1, 2})
	require.NoError(t, err)
	require.NoError(t, rw.Commit())

	var rows []store.OccurrenceRow
	err = s.ScanOccurrenceRows(ctx, "WH~NOUN", 0, func(row store.OccurrenceRow) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WH", rows[0].Token.XPOS)
	assert.Equal(t, "NOUN", rows[1].Token.UPOS)
	assert.Equal(t, "n.location", rows[1].Token.Supersense)
}

const zeroBasedCorpus = `[
	{"file_name": "book1", "tokens": [
		{"id": 0, "text": "Houses", "lemma": "house", "upos": "NOUN", "xpos": "NNS", "deprel": "nsubj", "head_id": 2, "supersense": "n.artifact"},
		{"id": 1, "text": "were", "lemma": "be", "upos": "AUX", "xpos": "VBD", "deprel": "aux", "head_id": 2, "supersense": ""},
		{"id": 2, "text": "built", "lemma": "build", "upos": "VERB", "xpos": "VBN", "deprel": "root", "head_id": 2, "supersense": "v.creation"}
	]}
]`

func TestIngestZeroBasedTokenIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sents, err := Decode(strings.NewReader(zeroBasedCorpus))
	require.NoError(t, err)
	stats, err := Ingest(ctx, s, sents, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NumTokens)

	taskID, err := s.NewTask(ctx, "t1", nil)
	require.NoError(t, err)
	rw, err := s.BeginRun(ctx, taskID)
	require.NoError(t, err)
	pid, err := rw.AddPattern(ctx, store.Pattern{Form: "NOUN~VBN"})
	require.NoError(t, err)
	_, err = rw.AddPosition(ctx, pid, 1, []int{0, 2})
	require.NoError(t, err)
	require.NoError(t, rw.Commit())

	occ, err := engine.FindOccurrences(ctx, s, "NOUN~VBN", 0)
	require.NoError(t, err)
	require.Len(t, occ.Items, 1)
	tokens := occ.Items[0].Tokens
	require.Len(t, tokens, 3)
	assert.Equal(t, 0, tokens[0].ID)
	require.NotNil(t, tokens[0].Label)
	assert.Equal(t, "NOUN", *tokens[0].Label)
	assert.Nil(t, tokens[1].Label)
	require.NotNil(t, tokens[2].Label)
	assert.Equal(t, "VBN", *tokens[2].Label)
}

func TestIngestMaxSentences(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sents, err := Decode(strings.NewReader(testCorpus))
	require.NoError(t, err)
	stats, err := Ingest(ctx, s, sents, IngestOptions{MaxSentences: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NumSentences)
	cnt, err := s.CountSentences(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, cnt)
}

func TestIngestRefusesPopulatedStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	sents, err := Decode(strings.NewReader(testCorpus))
	require.NoError(t, err)
	_, err = Ingest(ctx, s, sents, IngestOptions{})
	require.NoError(t, err)
	_, err = Ingest(ctx, s, sents, IngestOptions{})
	assert.Error(t, err)
}

func TestIngestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newStore(t)
	sents, err := Decode(strings.NewReader(testCorpus))
	require.NoError(t, err)
	_, err = Ingest(ctx, s, sents, IngestOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
