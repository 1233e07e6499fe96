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

package form

import (
	"cxquery/store"
)

// PatternRow is a single line of a pattern listing
type PatternRow struct {
	Index   int     `json:"index"`
	Form    string  `json:"form"`
	RawForm string  `json:"rawForm"`
	Left    string  `json:"left"`
	Right   string  `json:"right"`
	Count   int64   `json:"count"`
	Score   float64 `json:"score"`
}

// NewPatternTable creates a 1-indexed listing of provided patterns.
// The order of patterns is preserved.
func NewPatternTable(patterns []store.Pattern) []PatternRow {
	ans := make([]PatternRow, len(patterns))
	for i, p := range patterns {
		ans[i] = PatternRow{
			Index:   i + 1,
			Form:    Render(p.Form),
			RawForm: p.Form,
			Left:    p.Left,
			Right:   p.Right,
			Count:   p.Count,
			Score:   p.Score,
		}
	}
	return ans
}
