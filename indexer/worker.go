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

package indexer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/mine"
)

// jobKind discriminates the messages a worker accepts from the
// orchestrator: index a document, or reset (hand off the current
// block's accumulated state and start fresh).
type jobKind int

const (
	jobIndex jobKind = iota
	jobReset
	jobShutdown
)

// job is one unit of main -> worker work.
type job struct {
	kind jobKind

	docID uint32
	doc   Document

	// reset carries the channel the worker must send its miner back on
	// once it has swapped in a fresh one, acting as the barrier the
	// orchestrator waits on before combining a block.
	resetReply chan *mine.Miner
}

// worker owns one mine.Miner and a tokenizer, processing jobs off its
// inbox until told to shut down. This is the channel-pair concurrency
// model §4.3 describes: main -> worker work arrives on jobs, and the
// worker's only outbound signal is the reply channel embedded in a
// reset job, playing the role of the spec's Notifier.
type worker struct {
	id            int
	logger        *zap.Logger
	tokenizer     mine.Tokenizer
	catalog       *catalog.Catalog
	enums         *enumRegistry
	miner         *mine.Miner
	withPositions bool
	jobs          chan job
	done          chan struct{}
}

func newWorker(id int, logger *zap.Logger, cat *catalog.Catalog, enums *enumRegistry, withPositions bool) *worker {
	w := &worker{
		id:            id,
		logger:        logger.With(zap.Int("worker_id", id)),
		tokenizer:     mine.ASCIITokenizer{},
		catalog:       cat,
		enums:         enums,
		miner:         mine.NewWithPositions(withPositions),
		withPositions: withPositions,
		jobs:          make(chan job, 64),
		done:          make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	defer close(w.done)
	for j := range w.jobs {
		switch j.kind {
		case jobIndex:
			w.index(j.docID, j.doc)
		case jobReset:
			current := w.miner
			w.miner = mine.NewWithPositions(w.withPositions)
			j.resetReply <- current
		case jobShutdown:
			return
		}
	}
}

func (w *worker) index(docID uint32, doc Document) {
	info := catalog.DocInfo{
		DocID:       docID,
		FieldLens:   map[uint8]uint32{},
		EnumValues:  map[uint8]uint32{},
		NumericVals: map[uint8]int64{},
	}
	var zones []mine.Zone

	for _, f := range w.catalog.Fields {
		text, ok := doc.Fields[f.Name]
		if !ok {
			continue
		}
		switch f.Storage {
		case catalog.StorageText:
			toks := w.tokenizer.Tokenize(text)
			zones = append(zones, mine.Zone{FieldID: f.ID, Tokens: toks})
			info.FieldLens[f.ID] = countTerms(toks)
		case catalog.StorageEnum:
			info.EnumValues[f.ID] = w.enums.id(f.ID, text)
		case catalog.StorageNumeric:
			info.NumericVals[f.ID] = parseNumeric(text)
		}

		if f.Weight > 0 && f.Storage != catalog.StorageText {
			// Weighted fields that are not full-text (rare, but legal)
			// still tokenize for search, scored at their configured
			// weight like any other zone.
			toks := w.tokenizer.Tokenize(text)
			zones = append(zones, mine.Zone{FieldID: f.ID, Tokens: toks})
			info.FieldLens[f.ID] = countTerms(toks)
		}
	}

	w.miner.IndexDocument(info, zones)
}

func countTerms(toks []mine.Token) uint32 {
	var n uint32
	for _, t := range toks {
		if !t.IsGap() {
			n++
		}
	}
	return n
}

// enumRegistry assigns stable small integer ids to enum field values in
// first-seen order, scoped per field id. One instance is shared by
// every worker in a run (workers index disjoint documents concurrently,
// so access is serialised by a mutex).
type enumRegistry struct {
	mu      sync.Mutex
	byField map[uint8]map[string]uint32
}

func newEnumRegistry() *enumRegistry {
	return &enumRegistry{byField: map[uint8]map[string]uint32{}}
}

func (r *enumRegistry) id(fieldID uint8, value string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byField[fieldID]
	if !ok {
		m = map[string]uint32{}
		r.byField[fieldID] = m
	}
	if id, ok := m[value]; ok {
		return id
	}
	id := uint32(len(m))
	m[value] = id
	return id
}

func parseNumeric(s string) int64 {
	var v int64
	neg := false
	i := 0
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		i = 1
	}
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v
}
