// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mine implements worker-side tokenization and accumulation
// (C5): turning document field text into term positions, and folding
// them into a worker's in-memory inverted map.
package mine

import (
	"bytes"
	"unicode"

	"github.com/blevesearch/segment"
)

// MaxTermLen bounds a term's length in bytes; anything longer is
// dropped rather than indexed, matching the dictionary codec's
// assumption that prefix/remaining lengths fit in a byte.
const MaxTermLen = 80

// Token is one tokenizer output: either a term occupying the next
// position, or a gap (Term == "") that advances the position counter
// without producing a searchable term. Gaps are how a tokenizer
// prevents phrase matches from spanning unrelated text; the miner
// separates zones by adjusting positions itself, not with gap tokens.
type Token struct {
	Term string
}

// IsGap reports whether this token is a positional gap rather than a
// term.
func (t Token) IsGap() bool { return t.Term == "" }

// Tokenizer is the out-of-scope capability this package depends on:
// language- and locale-specific segmentation, casing and stemming
// rules live behind this interface. Only a simple ASCII default ships
// here; production loaders plug in richer tokenizers per lang_config.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// ASCIITokenizer is the default "ascii" lang_config tokenizer: Unicode
// word-boundary segmentation (the same segmenter bleve itself uses),
// lowercased, with non-letter/digit runes stripped from term edges.
type ASCIITokenizer struct{}

// Tokenize implements Tokenizer.
func (ASCIITokenizer) Tokenize(text string) []Token {
	var tokens []Token
	seg := segment.NewWordSegmenterDirect([]byte(text))
	for seg.Segment() {
		typ := seg.Type()
		if typ != segment.Letter && typ != segment.Number {
			continue
		}
		word := bytes.ToLower(seg.Bytes())
		word = bytes.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) == 0 || len(word) > MaxTermLen {
			continue
		}
		tokens = append(tokens, Token{Term: string(word)})
	}
	return tokens
}

// GapToken is the zero-value gap marker a tokenizer can emit to advance
// the position counter without producing a term.
var GapToken = Token{}
