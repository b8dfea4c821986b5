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

// Package block implements SPIMI block files (C6): the sorted,
// merged dump of one or more workers' accumulated term maps, plus a
// sibling block-dictionary file used for fast streaming during the
// final merge.
package block

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/mine"
)

// Write merges the term maps from one or more miners (a single worker
// hands off its own map; the orchestrator may combine several at once)
// and writes the block file to w and the block-dictionary file to
// dictW. It returns the block's doc-info list, sorted by doc id, for
// the caller to fold into the corpus-wide field-length statistics and
// field store.
func Write(inputs []*mine.Miner, w, dictW io.Writer) ([]catalog.DocInfo, error) {
	merged := mergeTerms(inputs)
	terms := make([]string, 0, len(merged))
	for t := range merged {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	bw := bufio.NewWriter(w)
	dw := bufio.NewWriter(dictW)

	var hdr [9]byte
	for _, term := range terms {
		docs := merged[term]

		if len(term) > 255 {
			term = term[:255]
		}
		bw.WriteByte(byte(len(term)))
		bw.WriteString(term)
		binary.LittleEndian.PutUint32(hdr[:4], uint32(len(docs)))
		bw.Write(hdr[:4])

		dw.WriteByte(byte(len(term)))
		dw.WriteString(term)
		dw.Write(hdr[:4])

		for _, td := range docs {
			binary.LittleEndian.PutUint32(hdr[:4], td.DocID)
			bw.Write(hdr[:4])
			bw.WriteByte(byte(len(td.Fields)))
			for _, f := range td.Fields {
				bw.WriteByte(f.FieldID)
				binary.LittleEndian.PutUint32(hdr[:4], f.FieldTF)
				bw.Write(hdr[:4])
				for _, p := range f.Positions {
					binary.LittleEndian.PutUint32(hdr[:4], p)
					bw.Write(hdr[:4])
				}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if err := dw.Flush(); err != nil {
		return nil, err
	}

	return mergeDocInfos(inputs), nil
}

// mergeTerms flattens every input miner's term map into one
// term -> []*mine.TermDoc map, concatenating same-term contributions
// from different workers and sorting them by ascending doc id. Workers
// own disjoint doc id ranges, so no dedup is needed for strict ascent.
func mergeTerms(inputs []*mine.Miner) map[string][]*mine.TermDoc {
	out := make(map[string][]*mine.TermDoc)
	for _, m := range inputs {
		for term, docs := range m.Terms() {
			out[term] = append(out[term], docs...)
		}
	}
	for term, docs := range out {
		sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
		out[term] = docs
	}
	return out
}

// mergeDocInfos concatenates every input miner's DocInfo list and sorts
// it by doc id into one ascending sequence.
func mergeDocInfos(inputs []*mine.Miner) []catalog.DocInfo {
	var all []catalog.DocInfo
	for _, m := range inputs {
		all = append(all, m.Docs()...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DocID < all[j].DocID })
	return all
}
