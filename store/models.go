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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	tokenIDsSeparator = ","
)

// Task is a single mining run
type Task struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	TimeAdded time.Time       `json:"timeAdded"`
}

// Pattern is a construction found by a mining run.
// The Left and Right halves are the parts the association
// measure was calculated on and they are not interpreted here.
type Pattern struct {
	ID     int64   `json:"id"`
	Form   string  `json:"form"`
	Left   string  `json:"left"`
	Right  string  `json:"right"`
	Count  int64   `json:"count"`
	Score  float64 `json:"score"`
	TaskID int64   `json:"taskId"`
}

type Sentence struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
}

// Token is a corpus token. Its ID is unique only within
// its sentence.
type Token struct {
	ID         int    `json:"id"`
	SentenceID int64  `json:"sentenceId"`
	Text       string `json:"text"`
	Lemma      string `json:"lemma"`
	UPOS       string `json:"upos"`
	XPOS       string `json:"xpos"`
	HeadID     int    `json:"headId"`
	Deprel     string `json:"deprel"`
	Supersense string `json:"supersense,omitempty"`
}

// Position is a concrete occurrence of a pattern. TokenIDs
// contains one token ID per pattern slot in left-to-right order.
type Position struct {
	ID         int64 `json:"id"`
	PatternID  int64 `json:"patternId"`
	SentenceID int64 `json:"sentenceId"`
	TokenIDs   []int `json:"tokenIds"`
}

// OccurrenceRow is a single row of the sentence-scoped join
// of patterns, their positions and all the tokens of the
// respective sentences. The token IDs of the position are kept
// in their stored (raw) form as their validation is up to
// a consumer.
type OccurrenceRow struct {
	PatternID  int64
	PositionID int64
	SentenceID int64
	TokenIDs   string
	Token      Token
}

// EncodeTokenIDs converts token IDs into their stored form
func EncodeTokenIDs(ids []int) string {
	tmp := make([]string, len(ids))
	for i, v := range ids {
		tmp[i] = strconv.Itoa(v)
	}
	return strings.Join(tmp, tokenIDsSeparator)
}

// DecodeTokenIDs parses stored token IDs. Whitespace around
// items is ignored, any non-numeric item is an error.
func DecodeTokenIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return []int{}, fmt.Errorf("empty token ids")
	}
	items := strings.Split(raw, tokenIDsSeparator)
	ans := make([]int, len(items))
	for i, item := range items {
		v, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return []int{}, fmt.Errorf("invalid token id `%s`: %w", item, err)
		}
		ans[i] = v
	}
	return ans, nil
}
