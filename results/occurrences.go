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

package results

import (
	"github.com/bytedance/sonic"
)

// LabeledToken is a sentence token along with the pattern slot it
// realizes. Context tokens have no label.
type LabeledToken struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Label *string `json:"label"`
}

func (lt LabeledToken) IsMatched() bool {
	return lt.Label != nil
}

// Occurrence is a single pattern instance with its full
// sentence context
type Occurrence struct {
	SentenceID int64          `json:"sentenceId"`
	TokenIDs   []int          `json:"tokenIds"`
	Tokens     []LabeledToken `json:"tokens"`
}

// SlotRealization is a lower-cased text realizing a slot
type SlotRealization struct {
	Text       string  `json:"text"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SlotStat describes the most frequent realizations of a pattern slot.
// The percentages are related to Total, i.e. to all the realizations,
// not just the reported ones.
type SlotStat struct {
	Index int               `json:"index"`
	Label string            `json:"label"`
	Total int               `json:"total"`
	Top   []SlotRealization `json:"top"`
}

type occurrencesResponse struct {
	Form       string       `json:"form"`
	Total      int          `json:"total"`
	Items      []Occurrence `json:"items"`
	SlotStats  []SlotStat   `json:"slotStats"`
	ResultType ResultType   `json:"resultType"`
	Error      string       `json:"error,omitempty"`
} // @name Occurrences

type Occurrences struct {
	Form string

	// Total is the number of all the occurrences found,
	// regardless of applied limit
	Total int

	Items []Occurrence

	// SlotStats are always calculated from all the found
	// occurrences
	SlotStats []SlotStat

	Error error
}

func (res *Occurrences) Err() error {
	return res.Error
}

func (res *Occurrences) Type() ResultType {
	return ResultTypeOccurrences
}

func (res *Occurrences) MarshalJSON() ([]byte, error) {
	items := res.Items
	if items == nil {
		items = []Occurrence{}
	}
	stats := res.SlotStats
	if stats == nil {
		stats = []SlotStat{}
	}
	return sonic.Marshal(occurrencesResponse{
		Form:       res.Form,
		Total:      res.Total,
		Items:      items,
		SlotStats:  stats,
		ResultType: res.Type(),
		Error:      errToStr(res.Error),
	})
}
