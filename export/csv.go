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

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"cxquery/form"
)

var (
	patternsHeader = []string{"index", "form", "left", "right", "count", "score"}
)

// WritePatternsCSV writes the pattern table as CSV with a header row.
// Forms are written in their rendered variant.
func WritePatternsCSV(w io.Writer, rows []form.PatternRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(patternsHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		err := cw.Write([]string{
			strconv.Itoa(row.Index),
			row.Form,
			row.Left,
			row.Right,
			strconv.FormatInt(row.Count, 10),
			strconv.FormatFloat(row.Score, 'f', -1, 64),
		})
		if err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", row.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
