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

package spelling

import "github.com/google/btree"

// PrefixIndex answers ordered prefix-range queries over the term
// dictionary, backing the trailing '*' wildcard expansion operator.
type PrefixIndex struct {
	tree *btree.BTree
}

type termItem string

func (a termItem) Less(than btree.Item) bool {
	return string(a) < string(than.(termItem))
}

// NewPrefixIndex builds a PrefixIndex over terms. terms need not be
// pre-sorted.
func NewPrefixIndex(terms []string) *PrefixIndex {
	tr := btree.New(32)
	for _, t := range terms {
		tr.ReplaceOrInsert(termItem(t))
	}
	return &PrefixIndex{tree: tr}
}

// Expand returns every dictionary term with the given prefix, in
// ascending order, stopping early once limit terms are found (limit<=0
// means unbounded).
func (p *PrefixIndex) Expand(prefix string, limit int) []string {
	var out []string
	p.tree.AscendGreaterOrEqual(termItem(prefix), func(item btree.Item) bool {
		term := string(item.(termItem))
		if len(term) < len(prefix) || term[:len(prefix)] != prefix {
			return false
		}
		out = append(out, term)
		return limit <= 0 || len(out) < limit
	})
	return out
}
