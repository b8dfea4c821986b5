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

package dict

// Table is an in-memory, query-time view over a fully decoded
// dictionary: term -> TermInfo lookups, an ordered term list for
// prefix expansion, and document-frequency lookups for the stop-word
// threshold rule.
type Table struct {
	entries   []Entry
	byTerm    map[string]TermInfo
	totalDocs uint32
}

// NewTable builds a Table from entries (as returned by Decode) and the
// corpus document count.
func NewTable(entries []Entry, totalDocs uint32) *Table {
	t := &Table{entries: entries, byTerm: make(map[string]TermInfo, len(entries)), totalDocs: totalDocs}
	for _, e := range entries {
		if e.Info.DocFreq == 0 {
			continue // file-rotation sentinel, not a real term
		}
		t.byTerm[e.Term] = e.Info
	}
	return t
}

// TermInfo implements exec.DictLookup.
func (t *Table) TermInfo(term string) (TermInfo, bool) {
	info, ok := t.byTerm[term]
	return info, ok
}

// DocFreq implements query.DocFreqLookup.
func (t *Table) DocFreq(term string) (df uint32, totalDocs uint32, found bool) {
	info, ok := t.byTerm[term]
	if !ok {
		return 0, t.totalDocs, false
	}
	return info.DocFreq, t.totalDocs, true
}

// AllTerms returns every real term in the dictionary's own ascending
// byte-wise order (the order Decode produced entries in, per the
// strict-ascent invariant §8 requires of the dictionary), used by
// prefix expansion (C13) to seed its range index.
func (t *Table) AllTerms() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Info.DocFreq == 0 {
			continue // file-rotation sentinel, not a real term
		}
		out = append(out, e.Term)
	}
	return out
}

// TermFreq pairs a dictionary term with its document frequency, so a
// consumer choosing among several equally-close candidates (spelling
// correction, C13) can break ties by popularity.
type TermFreq struct {
	Term    string
	DocFreq uint32
}

// TermFreqs implements spelling.DictionaryTerms: every real term with
// its doc_freq, in the same stable dictionary order as AllTerms.
func (t *Table) TermFreqs() []TermFreq {
	out := make([]TermFreq, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Info.DocFreq == 0 {
			continue
		}
		out = append(out, TermFreq{Term: e.Term, DocFreq: e.Info.DocFreq})
	}
	return out
}
