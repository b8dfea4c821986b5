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

package exec

import (
	"fmt"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/postings"
	"github.com/arcsearch/spimi/query"
)

// State names the query lifecycle stage (Parsed -> Preprocessed ->
// PostingsFetched -> Processed -> Streaming).
type State int

const (
	StateParsed State = iota
	StatePreprocessed
	StatePostingsFetched
	StateProcessed
	StateStreaming
)

// DictLookup resolves a term to its dictionary entry.
type DictLookup interface {
	TermInfo(term string) (dict.TermInfo, bool)
}

// PostingsFetcher decodes a term's posting list.
type PostingsFetcher interface {
	Read(info dict.TermInfo) ([]postings.Doc, error)
}

// DocLengths resolves a document's per-field token count, needed for
// BM25's length-normalisation term.
type DocLengths interface {
	FieldLen(docID uint32, fieldID uint8) uint32
}

// Executor ties the dictionary, postings, and catalog together to run
// one parsed query to a ranked, pageable result set.
type Executor struct {
	Dict      DictLookup
	Postings  PostingsFetcher
	Catalog   *catalog.Catalog
	DocLens   DocLengths
	AvgLens   map[uint8]float64
	TotalDocs uint32
}

// clause is a flattened leaf query term or phrase, carrying the
// modifier/invert state inherited from its position in the tree.
type clause struct {
	node     *query.Node
	isPhrase bool
	terms    []string // len 1 for a term, len>=2 for a phrase
	field    string
	modifier query.Modifier
	invert   bool
	weight   float64
}

func flatten(n *query.Node, mod query.Modifier, invert bool) []clause {
	if n == nil {
		return nil
	}
	effMod, effInvert := mod, invert
	if n.Modifier != query.ModNone {
		effMod = n.Modifier
	}
	if n.Invert {
		effInvert = !effInvert
	}

	switch n.Kind {
	case NodeKindTerm:
		if n.StopWord {
			return nil
		}
		return []clause{{node: n, terms: []string{n.Term}, field: n.Field, modifier: effMod, invert: effInvert, weight: termWeight(n.Weight)}}
	case NodeKindPhrase:
		return []clause{{node: n, isPhrase: true, terms: n.Phrase, field: n.Field, modifier: effMod, invert: effInvert, weight: termWeight(n.Weight)}}
	default:
		var out []clause
		for _, c := range n.Children {
			out = append(out, flatten(c, effMod, effInvert)...)
		}
		return out
	}
}

// Aliases so this file doesn't need to repeat the query package name
// at every NodeKind comparison.
const (
	NodeKindTerm   = query.NodeTerm
	NodeKindPhrase = query.NodePhrase
)

// termWeight resolves a node's Weight field to its effective scoring
// multiplier: zero (unset) means the default of 1.0.
func termWeight(w float64) float64 {
	if w == 0 {
		return 1.0
	}
	return w
}

type resolvedClause struct {
	clause
	termInfos []dict.TermInfo
	docs      [][]postings.Doc // parallel to terms
	idfs      []float64
}

// Run executes root and returns up to k top-scoring results.
func (e *Executor) Run(root *query.Node, k int) (*TopK, error) {
	clauses := flatten(root, query.ModNone, false)
	if len(clauses) == 0 {
		return NewTopK(k), nil
	}

	resolved := make([]resolvedClause, 0, len(clauses))
	for _, c := range clauses {
		rc := resolvedClause{clause: c}
		for _, term := range c.terms {
			info, ok := e.Dict.TermInfo(term)
			rc.termInfos = append(rc.termInfos, info)
			if !ok {
				rc.docs = append(rc.docs, nil)
				rc.idfs = append(rc.idfs, 0)
				continue
			}
			docs, err := e.Postings.Read(info)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
			}
			rc.docs = append(rc.docs, docs)
			rc.idfs = append(rc.idfs, IDF(info.DocFreq, e.TotalDocs))
		}
		resolved = append(resolved, rc)
	}

	type acc struct {
		score        float64
		mustSatisfied []bool
		anyOptional  bool
	}
	docAcc := map[uint32]*acc{}

	hasMust := false
	for _, rc := range resolved {
		if rc.modifier == query.ModMust {
			hasMust = true
		}
	}

	for ci, rc := range resolved {
		if rc.modifier == query.ModMustNot {
			for _, docs := range rc.docs {
				for _, d := range docs {
					if _, ok := docAcc[d.DocID]; !ok {
						docAcc[d.DocID] = &acc{mustSatisfied: make([]bool, len(resolved))}
					}
					docAcc[d.DocID].mustSatisfied[ci] = true // reused as "excluded" marker below
				}
			}
			continue
		}

		perDoc := map[uint32][]PositionHit{}
		perDocFieldScores := map[uint32]map[int][]float64{}

		for termIdx, docs := range rc.docs {
			for _, d := range docs {
				var fieldScores []float64
				for _, f := range d.Fields {
					if rc.field != "" {
						fld, ok := e.Catalog.ByName(rc.field)
						if !ok || fld.ID != f.FieldID {
							continue
						}
					}
					stat := e.fieldStat(f.FieldID)
					docLen := uint32(0)
					if e.DocLens != nil {
						docLen = e.DocLens.FieldLen(d.DocID, f.FieldID)
					}
					fieldScores = append(fieldScores, FieldScore(f.FieldTF, docLen, stat))
					for _, pos := range f.Positions {
						perDoc[d.DocID] = append(perDoc[d.DocID], PositionHit{TermIdx: termIdx, Pos: pos})
					}
				}
				if len(fieldScores) == 0 {
					continue
				}
				if perDocFieldScores[d.DocID] == nil {
					perDocFieldScores[d.DocID] = map[int][]float64{}
				}
				perDocFieldScores[d.DocID][termIdx] = fieldScores
			}
		}

		for docID, byTerm := range perDocFieldScores {
			var total float64
			for termIdx, fieldScores := range byTerm {
				total += TermContribution(fieldScores, e.Catalog.NumScoredFields(), rc.idfs[termIdx], rc.weight)
			}

			if rc.isPhrase {
				w := MinWindow(perDoc[docID], len(rc.terms))
				if !w.Found || w.WindowLen != uint32(len(rc.terms)-1) {
					continue // phrase not satisfied: no contribution from this clause
				}
				total *= ScalingFactor(w, len(rc.terms))
			}

			if rc.invert {
				total = -total
			}

			a, ok := docAcc[docID]
			if !ok {
				a = &acc{mustSatisfied: make([]bool, len(resolved))}
				docAcc[docID] = a
			}
			a.score += total
			a.anyOptional = a.anyOptional || rc.modifier != query.ModMust
			if rc.modifier == query.ModMust {
				a.mustSatisfied[ci] = true
			}
		}
	}

	topK := NewTopK(k)
	for docID, a := range docAcc {
		excluded := false
		satisfiedAllMust := true
		for ci, rc := range resolved {
			if rc.modifier == query.ModMustNot && a.mustSatisfied[ci] {
				excluded = true
			}
			if rc.modifier == query.ModMust && !a.mustSatisfied[ci] {
				satisfiedAllMust = false
			}
		}
		if excluded || !satisfiedAllMust {
			continue
		}
		if hasMust && !a.anyOptional && a.score == 0 {
			continue
		}
		topK.Offer(Scored{DocID: docID, Score: a.score})
	}
	return topK, nil
}

func (e *Executor) fieldStat(fieldID uint8) FieldStat {
	f, ok := e.Catalog.ByID(fieldID)
	if !ok {
		return FieldStat{}
	}
	return FieldStat{Weight: f.Weight, K: f.K, B: f.B, AvgLen: e.AvgLens[fieldID]}
}
