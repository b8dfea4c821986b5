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

// Package spelling implements bounded Levenshtein correction (C13):
// candidate terms are scored against the dictionary with an edit-
// distance budget that scales with the query term's length, and a
// small LRU cache spares repeat corrections the full scan.
package spelling

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/arcsearch/spimi/dict"
)

// CacheCapacity matches the postings cache's size: eight entries.
const CacheCapacity = 8

// maxEditDistance returns the Levenshtein budget for a term of length
// n: short terms tolerate only a single edit, longer ones progressively
// more, since a fixed-fraction budget would let long terms drift too
// far from the original.
func maxEditDistance(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// DictionaryTerms supplies the candidate universe a misspelled term is
// checked against, ordinarily the index's term dictionary.
type DictionaryTerms interface {
	// TermFreqs returns every term in the dictionary paired with its
	// document frequency, in a stable order, so Correct can pick the
	// most frequent term among several equally-close candidates.
	TermFreqs() []dict.TermFreq
}

// Corrector finds the closest in-dictionary term to a query term that
// produced zero postings.
type Corrector struct {
	dict  DictionaryTerms
	cache *lru.Cache
}

// NewCorrector builds a Corrector backed by dict, with an internal LRU
// cache of CacheCapacity corrections.
func NewCorrector(dict DictionaryTerms) *Corrector {
	c, _ := lru.New(CacheCapacity)
	return &Corrector{dict: dict, cache: c}
}

// Correct returns the best-matching dictionary term for misspelled,
// and whether one was found within its edit-distance budget. Repeated
// calls for the same input are served from cache.
func (c *Corrector) Correct(misspelled string) (string, bool) {
	if v, ok := c.cache.Get(misspelled); ok {
		r := v.(correction)
		return r.term, r.found
	}

	budget := maxEditDistance(len([]rune(misspelled)))
	best := ""
	bestDist := budget + 1
	var bestDocFreq uint32
	for _, cand := range c.dict.TermFreqs() {
		term := cand.Term
		if abs(len(term)-len(misspelled)) > budget {
			continue
		}
		// A term at exactly bestDist is still scored exactly (not
		// clamped to bestDist+1): boundedLevenshtein only short-circuits
		// once a row is certain to exceed maxDist, so an equal-distance
		// candidate's doc_freq can be compared against the incumbent's.
		d := boundedLevenshtein(misspelled, term, bestDist)
		if d > bestDist {
			continue
		}
		if d < bestDist || cand.DocFreq > bestDocFreq {
			bestDist = d
			best = term
			bestDocFreq = cand.DocFreq
		}
	}

	found := bestDist <= budget
	c.cache.Add(misspelled, correction{term: best, found: found})
	if !found {
		return "", false
	}
	return best, true
}

type correction struct {
	term  string
	found bool
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// boundedLevenshtein computes the edit distance between a and b,
// returning maxDist+1 as soon as it is certain the true distance
// exceeds maxDist (every value in the active DP row does), sparing a
// full O(len(a)*len(b)) scan for obviously-too-far candidates.
func boundedLevenshtein(a, b string, maxDist int) int {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > maxDist {
		return maxDist + 1
	}

	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	cur := make([]int, len(rb)+1)

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
			if m < rowMin {
				rowMin = m
			}
		}
		if rowMin > maxDist {
			return maxDist + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
