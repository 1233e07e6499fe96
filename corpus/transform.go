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

// Substitutions maps original tag and lemma values to
// normalized ones so mined patterns generalize better.
type Substitutions struct {
	UPOS  map[string]string `json:"upos"`
	XPOS  map[string]string `json:"xpos"`
	Lemma map[string]string `json:"lemma"`
}

// Apply rewrites the token's attributes in place
func (s Substitutions) Apply(tok *Token) {
	if v, ok := s.UPOS[tok.UPOS]; ok {
		tok.UPOS = v
	}
	if v, ok := s.XPOS[tok.XPOS]; ok {
		tok.XPOS = v
	}
	if v, ok := s.Lemma[tok.Lemma]; ok {
		tok.Lemma = v
	}
}

// DefaultSubstitutions merges proper nouns and pronouns with nouns,
// unifies wh-words, expands clitic lemmas and collapses reflexive
// and possessive pronouns into `oneself` and `one's`.
func DefaultSubstitutions() Substitutions {
	return Substitutions{
		UPOS: map[string]string{
			"PROPN": "NOUN",
			"PRON":  "NOUN",
		},
		XPOS: map[string]string{
			"WDT": "WH",
			"WP":  "WH",
			"WP$": "WH",
			"WRB": "WH",
		},
		Lemma: map[string]string{
			"m":          "be",
			"an":         "a",
			"n't":        "not",
			"'ll":        "will",
			"wo":         "will",
			"ca":         "can",
			"sha":        "shall",
			"ve":         "have",
			"myself":     "oneself",
			"yourself":   "oneself",
			"herself":    "oneself",
			"himself":    "oneself",
			"itself":     "oneself",
			"ourselves":  "oneself",
			"themselves": "oneself",
			"my":         "one's",
			"your":       "one's",
			"her":        "one's",
			"his":        "one's",
			"its":        "one's",
			"our":        "one's",
			"their":      "one's",
		},
	}
}
