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

package mine

import "github.com/arcsearch/spimi/catalog"

// MaxWindowLen is the smallest gap inserted between zones of the same
// field so that a phrase or proximity match can never span two
// logically distinct chunks of text packed into one field (e.g. the
// elements of a multi-valued field). It doubles as the proximity
// ranking's window ceiling (exec.MaxWindowLen mirrors this constant).
const MaxWindowLen = 64

// DocField is one field's contribution to a term's posting: how many
// times the term occurred in the field, and at which positions.
type DocField struct {
	FieldID   uint8
	FieldTF   uint32
	Positions []uint32
}

// TermDoc is one document's contribution to a term's postings list.
type TermDoc struct {
	DocID  uint32
	Fields []DocField
}

// Zone is one span of tokens belonging to a field. A document that
// repeats a field (e.g. an array-valued field) supplies one Zone per
// element; zones sharing a FieldID get a synthetic gap between them so
// phrase matches cannot span them, while a zone with a new FieldID
// starts the position counter over from zero.
type Zone struct {
	FieldID uint8
	Tokens  []Token
}

// Miner is one worker's in-memory accumulator for the current SPIMI
// block: a term -> per-doc postings map, plus the DocInfo entries for
// every document folded in since the last Reset.
type Miner struct {
	terms map[string][]*TermDoc
	docs  []catalog.DocInfo

	// withPositions mirrors indexing_config.with_positions: when false,
	// term positions are dropped after computing FieldTF, trading phrase
	// and proximity scoring away for a smaller postings list.
	withPositions bool
}

// New returns an empty miner that records term positions.
func New() *Miner {
	return &Miner{terms: make(map[string][]*TermDoc), withPositions: true}
}

// NewWithPositions returns an empty miner, with position tracking
// enabled or disabled per indexing_config.with_positions.
func NewWithPositions(withPositions bool) *Miner {
	return &Miner{terms: make(map[string][]*TermDoc), withPositions: withPositions}
}

// Reset clears accumulated state, preparing the miner for the next
// block.
func (m *Miner) Reset() {
	m.terms = make(map[string][]*TermDoc)
	m.docs = nil
}

// WithPositions reports whether this miner records term positions.
func (m *Miner) WithPositions() bool {
	return m.withPositions
}

// Terms exposes the accumulated term -> TermDoc map for block writing.
func (m *Miner) Terms() map[string][]*TermDoc {
	return m.terms
}

// LoadCarryOver injects an already-decoded TermDoc directly into the
// term map, bypassing tokenization. Used when incremental re-indexing
// carries a prior run's surviving postings forward into the next
// block merge rather than re-deriving them from source text.
func (m *Miner) LoadCarryOver(term string, td *TermDoc) {
	m.terms[term] = append(m.terms[term], td)
}

// LoadDocInfo injects an already-built DocInfo, the carry-over
// counterpart to IndexDocument's own bookkeeping.
func (m *Miner) LoadDocInfo(info catalog.DocInfo) {
	m.docs = append(m.docs, info)
}

// Docs exposes the accumulated DocInfo list for block writing.
func (m *Miner) Docs() []catalog.DocInfo {
	return m.docs
}

// IndexDocument tokenizes and folds one document's zones into the
// miner's maps, and records its DocInfo for the block's doc-info side.
func (m *Miner) IndexDocument(info catalog.DocInfo, zones []Zone) {
	m.docs = append(m.docs, info)

	lastFieldID := uint8(255)
	lastFieldIDSet := false
	pos := uint32(0)

	for _, zone := range zones {
		if lastFieldIDSet && zone.FieldID == lastFieldID {
			pos += MaxWindowLen
		} else {
			pos = 0
		}
		lastFieldID = zone.FieldID
		lastFieldIDSet = true

		termFirstPos := make(map[string][]uint32)

		for _, tok := range zone.Tokens {
			if tok.IsGap() {
				pos++
				continue
			}
			termFirstPos[tok.Term] = append(termFirstPos[tok.Term], pos)
			pos++
		}

		for term, positionsForTerm := range termFirstPos {
			tf := uint32(len(positionsForTerm))
			if !m.withPositions {
				positionsForTerm = nil
			}
			m.addTermDocField(term, info.DocID, zone.FieldID, tf, positionsForTerm)
		}
	}
}

func (m *Miner) addTermDocField(term string, docID uint32, fieldID uint8, tf uint32, positions []uint32) {
	docs := m.terms[term]
	var target *TermDoc
	if len(docs) > 0 && docs[len(docs)-1].DocID == docID {
		target = docs[len(docs)-1]
	} else {
		target = &TermDoc{DocID: docID}
		m.terms[term] = append(docs, target)
	}
	target.Fields = append(target.Fields, DocField{FieldID: fieldID, FieldTF: tf, Positions: positions})
}
