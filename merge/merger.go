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

package merge

import (
	"container/heap"
	"io"

	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/mine"
	"github.com/arcsearch/spimi/postings"
)

// BlockSource is one block's pair of open files, in the order blocks
// were cut (which equals ascending doc_id-range order, per §5
// ordering guarantees).
type BlockSource struct {
	BlockID  int
	Data     io.Reader
	DictData io.Reader
}

// Result is the merge's output: the ordered dictionary entries ready
// for dict.Encode, and the ids of postings files that met
// pl_cache_threshold.
type Result struct {
	Entries    []dict.Entry
	PLsToCache []uint32
}

// Merge n-way merges sources into pw, returning the dictionary entries
// to encode once the caller has also flushed doc-info/field-store
// data.
func Merge(sources []BlockSource, pw *PostingsFileWriter) (*Result, error) {
	h := &streamHeap{}
	heap.Init(h)

	for _, src := range sources {
		s, err := NewPostingsStream(src.BlockID, src.Data, src.DictData)
		if err != nil {
			return nil, err
		}
		if !s.Done() {
			heap.Push(h, s)
		}
	}

	var result Result

	for h.Len() > 0 {
		term := (*h)[0].Term()

		var group []*PostingsStream
		for h.Len() > 0 && (*h)[0].Term() == term {
			group = append(group, heap.Pop(h).(*PostingsStream))
		}

		var allDocs []mine.TermDoc
		for _, s := range group {
			allDocs = append(allDocs, s.Docs()...)
		}

		payload := postings.EncodeTermDocs(nil, allDocs)
		fileID, offset, rotated, err := pw.WriteTerm(payload)
		if err != nil {
			return nil, err
		}
		if rotated {
			// A rotation sentinel is represented purely by the jump in
			// PostingsFileID between this entry and the previous one;
			// dict.Encode synthesizes the doc_freq==0 row itself.
		}

		docFreq := uint32(len(allDocs))

		result.Entries = append(result.Entries, dict.Entry{
			Term: term,
			Info: dict.TermInfo{
				DocFreq:        docFreq,
				PostingsFileID: fileID,
				ByteOffset:     offset,
			},
		})

		for _, s := range group {
			if err := s.Advance(); err != nil && err != io.EOF {
				return nil, err
			}
			if !s.Done() {
				heap.Push(h, s)
			}
		}
	}

	plsToCache, err := pw.Close()
	if err != nil {
		return nil, err
	}
	result.PLsToCache = plsToCache

	return &result, nil
}

// streamHeap orders streams by (current term, block id), block id
// ascending as the tie-break so output is deterministic when two
// blocks share a term.
type streamHeap []*PostingsStream

func (h streamHeap) Len() int { return len(h) }
func (h streamHeap) Less(i, j int) bool {
	if h[i].Term() != h[j].Term() {
		return h[i].Term() < h[j].Term()
	}
	return h[i].BlockID < h[j].BlockID
}
func (h streamHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *streamHeap) Push(x interface{}) {
	*h = append(*h, x.(*PostingsStream))
}
func (h *streamHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
