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

// Package form handles pattern forms, i.e. slot signatures like
// `NOUN~NOUN~have~VBN` produced by the mining step.
package form

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	SlotDelimiter = "~"
)

// Split returns the ordered slot descriptors of a form.
// An empty form has no slots.
func Split(form string) []string {
	if form == "" {
		return []string{}
	}
	return strings.Split(form, SlotDelimiter)
}

// IsCategorical tells whether a slot descriptor stands for a category
// (a POS tag, a dependency relation, a semantic class) rather than
// for a literal word/lemma.
//
// The test is a heuristic:
//   - a descriptor containing a dot is a hierarchical category code
//     (e.g. `noun.person`)
//   - a descriptor longer than one character with all its letters
//     upper-cased is a tag (e.g. `NOUN`, `VBN`, `WP$`); descriptors
//     without any letter (punctuation) are literals
func IsCategorical(slot string) bool {
	if strings.Contains(slot, ".") {
		return true
	}
	if utf8.RuneCountInString(slot) < 2 {
		return false
	}
	var hasUpper bool
	for _, r := range slot {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// RenderSlot returns a human readable variant of a single slot
func RenderSlot(slot string) string {
	if IsCategorical(slot) {
		return "<" + strings.ToLower(slot) + ">"
	}
	return slot
}

// Render converts a form into a human readable string where
// categorical slots are lower-cased and wrapped in angle brackets
// and literal slots are kept as they are. E.g. `NOUN~have~VBN`
// becomes `<noun> have <vbn>`.
func Render(form string) string {
	slots := Split(form)
	ans := make([]string, len(slots))
	for i, s := range slots {
		ans[i] = RenderSlot(s)
	}
	return strings.Join(ans, " ")
}
