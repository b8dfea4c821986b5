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

package query

import "math"

// staticStopWords is the fixed ASCII English stop-word list used to
// seed preprocessing before the idf*100 threshold rule (see
// MarkStopWords) reclassifies terms against actual corpus statistics.
var staticStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// IsStaticStopWord reports whether term is in the static list.
func IsStaticStopWord(term string) bool {
	return staticStopWords[term]
}

// DocFreqLookup resolves a term's document frequency and the corpus
// document count, used by the idf*100 threshold rule.
type DocFreqLookup interface {
	DocFreq(term string) (df uint32, totalDocs uint32, found bool)
}

// stopWordIDFThreshold is the idf*100 cutoff below which a term is
// reclassified as a stop word even if absent from the static list:
// terms so common that idf*100 falls under this carry negligible
// ranking signal.
const stopWordIDFThreshold = 15.0

// MarkStopWords walks n (and its children), setting StopWord on every
// NodeTerm whose Term is in the static list, or whose corpus-measured
// idf*100 falls below stopWordIDFThreshold.
func MarkStopWords(n *Node, lookup DocFreqLookup) {
	if n == nil {
		return
	}
	switch n.Kind {
	case NodeTerm:
		if IsStaticStopWord(n.Term) {
			n.StopWord = true
			return
		}
		if lookup == nil {
			return
		}
		df, total, found := lookup.DocFreq(n.Term)
		if !found || total == 0 || df == 0 {
			return
		}
		idf := idf100(df, total)
		if idf < stopWordIDFThreshold {
			n.StopWord = true
		}
	default:
		for _, c := range n.Children {
			MarkStopWords(c, lookup)
		}
	}
}

func idf100(df, total uint32) float64 {
	// log((total - df + 0.5) / (df + 0.5) + 1) * 100, the BM25 idf term
	// scaled by 100 to give the threshold rule round numbers to compare
	// against.
	x := (float64(total) - float64(df) + 0.5) / (float64(df) + 0.5)
	return math.Log1p(x) * 100
}
