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
	"strings"

	"cxquery/results"
)

const (
	// MaxSlotRealizations is the number of the most frequent
	// realizations reported per slot
	MaxSlotRealizations = 10
)

type slotCounter struct {
	label  string
	total  int
	counts map[string]int
}

type slotStatsBuilder struct {
	slots []*slotCounter
}

// addOccurrence counts the labeled tokens of the occurrence. Labels
// are assigned in slot order so the n-th labeled token belongs
// to the n-th slot.
func (b *slotStatsBuilder) addOccurrence(occ results.Occurrence) {
	slotIdx := 0
	for _, t := range occ.Tokens {
		if !t.IsMatched() {
			continue
		}
		if slotIdx >= len(b.slots) {
			break
		}
		counter := b.slots[slotIdx]
		counter.counts[strings.ToLower(t.Text)]++
		counter.total++
		slotIdx++
	}
}

func (b *slotStatsBuilder) build() []results.SlotStat {
	ans := make([]results.SlotStat, len(b.slots))
	for i, counter := range b.slots {
		items := make([]results.SlotRealization, 0, len(counter.counts))
		for text, cnt := range counter.counts {
			items = append(items, results.SlotRealization{Text: text, Count: cnt})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Count != items[j].Count {
				return items[i].Count > items[j].Count
			}
			return items[i].Text < items[j].Text
		})
		if len(items) > MaxSlotRealizations {
			items = items[:MaxSlotRealizations]
		}
		for j := range items {
			items[j].Percentage = results.PercentRound(
				float64(items[j].Count) / float64(counter.total) * 100)
		}
		ans[i] = results.SlotStat{
			Index: i,
			Label: counter.label,
			Total: counter.total,
			Top:   items,
		}
	}
	return ans
}

func newSlotStatsBuilder(slots []string) *slotStatsBuilder {
	ans := &slotStatsBuilder{slots: make([]*slotCounter, len(slots))}
	for i, s := range slots {
		ans.slots[i] = &slotCounter{label: s, counts: make(map[string]int)}
	}
	return ans
}
