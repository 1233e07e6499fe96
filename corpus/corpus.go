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
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
)

// Token is an annotated token as produced by the annotation
// pipeline. Supersense is empty for tokens without
// a semantic category.
type Token struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Lemma      string `json:"lemma"`
	UPOS       string `json:"upos"`
	XPOS       string `json:"xpos"`
	Deprel     string `json:"deprel"`
	HeadID     int    `json:"head_id"`
	Supersense string `json:"supersense"`
}

// Sentence is a single annotated sentence along with
// the name of the source file it comes from
type Sentence struct {
	FileName string  `json:"file_name"`
	Tokens   []Token `json:"tokens"`
}

// Decode reads a JSON list of sentences
func Decode(r io.Reader) ([]Sentence, error) {
	var ans []Sentence
	if err := sonic.ConfigDefault.NewDecoder(r).Decode(&ans); err != nil {
		return []Sentence{}, fmt.Errorf("failed to decode corpus: %w", err)
	}
	if ans == nil {
		ans = []Sentence{}
	}
	return ans, nil
}

// LoadFile reads a corpus JSON file
func LoadFile(path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return []Sentence{}, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks that all the sentences have tokens with unique
// non-negative IDs (annotators number tokens from zero). The first problem found is reported along with
// the (zero-based) index of the respective sentence.
func Validate(sents []Sentence) error {
	for i, sent := range sents {
		if len(sent.Tokens) == 0 {
			return fmt.Errorf("sentence %d (%s) has no tokens", i, sent.FileName)
		}
		seen := make(map[int]bool, len(sent.Tokens))
		for _, tok := range sent.Tokens {
			if tok.ID < 0 {
				return fmt.Errorf("sentence %d (%s) contains invalid token ID %d", i, sent.FileName, tok.ID)
			}
			if seen[tok.ID] {
				return fmt.Errorf("sentence %d (%s) contains duplicate token ID %d", i, sent.FileName, tok.ID)
			}
			seen[tok.ID] = true
		}
	}
	return nil
}
