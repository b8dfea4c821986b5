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
	"testing"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/mine"
	"github.com/arcsearch/spimi/postings"
	"github.com/arcsearch/spimi/query"
	"github.com/stretchr/testify/require"
)

type fakeDict map[string]dict.TermInfo

func (f fakeDict) TermInfo(term string) (dict.TermInfo, bool) {
	v, ok := f[term]
	return v, ok
}

type fakeDocLens map[uint8]map[uint32]uint32

func (f fakeDocLens) FieldLen(docID uint32, fieldID uint8) uint32 {
	return f[fieldID][docID]
}

// byOffsetPostings keys postings by a TermInfo's ByteOffset, letting
// tests register distinct posting lists per term without a real
// on-disk postings codec round trip.
type byOffsetPostings map[uint32][]postings.Doc

func (p byOffsetPostings) Read(info dict.TermInfo) ([]postings.Doc, error) {
	return p[info.ByteOffset], nil
}

func TestExecutorRanksByScore(t *testing.T) {
	cat := catalog.Build([]catalog.FieldConfig{{Name: "body", Weight: 1, K: 1.2, B: 0.75}})
	bodyID := cat.Fields[0].ID

	docsA := postings.Doc{DocID: 0, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 3}}}
	docsB := postings.Doc{DocID: 1, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 1}}}

	d := fakeDict{"quick": dict.TermInfo{DocFreq: 2, PostingsFileID: 0, ByteOffset: 0}}
	p := byOffsetPostings{0: {docsA, docsB}}

	lens := fakeDocLens{bodyID: {0: 3, 1: 1}}

	e := &Executor{
		Dict:      d,
		Postings:  p,
		Catalog:   cat,
		DocLens:   lens,
		AvgLens:   map[uint8]float64{bodyID: 2},
		TotalDocs: 2,
	}

	root, err := query.Parse("quick")
	require.NoError(t, err)

	topK, err := e.Run(root, 10)
	require.NoError(t, err)
	results := topK.Results()
	require.Len(t, results, 2)
	require.Equal(t, uint32(0), results[0].DocID)
}

func TestExecutorMustNotExcludes(t *testing.T) {
	cat := catalog.Build([]catalog.FieldConfig{{Name: "body", Weight: 1, K: 1.2, B: 0.75}})
	bodyID := cat.Fields[0].ID

	d := fakeDict{
		"fox": {DocFreq: 1, PostingsFileID: 0, ByteOffset: 0},
		"cat": {DocFreq: 1, PostingsFileID: 0, ByteOffset: 1},
	}
	p := byOffsetPostings{
		0: {{DocID: 0, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 1}}}},
		1: {{DocID: 0, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 1}}}},
	}

	e := &Executor{
		Dict:      d,
		Postings:  p,
		Catalog:   cat,
		DocLens:   fakeDocLens{bodyID: {0: 1}},
		AvgLens:   map[uint8]float64{bodyID: 1},
		TotalDocs: 1,
	}

	root, err := query.Parse("fox -cat")
	require.NoError(t, err)
	topK, err := e.Run(root, 10)
	require.NoError(t, err)
	require.Empty(t, topK.Results())
}

func TestExecutorPhraseRequiresAdjacency(t *testing.T) {
	cat := catalog.Build([]catalog.FieldConfig{{Name: "body", Weight: 1, K: 1.2, B: 0.75}})
	bodyID := cat.Fields[0].ID

	d := fakeDict{
		"quick": {DocFreq: 1, PostingsFileID: 0, ByteOffset: 0},
		"brown": {DocFreq: 1, PostingsFileID: 0, ByteOffset: 1},
	}
	p := byOffsetPostings{
		0: {{DocID: 0, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 1, Positions: []uint32{0}}}}},
		1: {{DocID: 0, Fields: []mine.DocField{{FieldID: bodyID, FieldTF: 1, Positions: []uint32{1}}}}},
	}

	e := &Executor{
		Dict:      d,
		Postings:  p,
		Catalog:   cat,
		DocLens:   fakeDocLens{bodyID: {0: 2}},
		AvgLens:   map[uint8]float64{bodyID: 2},
		TotalDocs: 1,
	}

	root, err := query.Parse(`"quick brown"`)
	require.NoError(t, err)
	topK, err := e.Run(root, 10)
	require.NoError(t, err)
	require.Len(t, topK.Results(), 1)
}
