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

import "container/heap"

// Scored is one document's final score, ready for top-k ordering and
// streaming.
type Scored struct {
	DocID uint32
	Score float64
}

// TopK is a bounded max-k min-heap: it keeps the K highest-scoring
// documents seen so far, evicting the current lowest when a higher
// score arrives once full.
type TopK struct {
	k int
	h minHeap
}

// NewTopK returns a TopK bounded to k results.
func NewTopK(k int) *TopK {
	t := &TopK{k: k}
	heap.Init(&t.h)
	return t
}

// Offer considers s for inclusion in the top-k set.
func (t *TopK) Offer(s Scored) {
	if t.k <= 0 {
		return
	}
	if t.h.Len() < t.k {
		heap.Push(&t.h, s)
		return
	}
	if s.Score > t.h[0].Score {
		heap.Pop(&t.h)
		heap.Push(&t.h, s)
	}
}

// Results drains the heap into descending-score order.
func (t *TopK) Results() []Scored {
	out := make([]Scored, t.h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.h).(Scored)
	}
	return out
}

type minHeap []Scored

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(Scored)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Paginator streams fixed-size batches of already-sorted Scored
// results, matching get_next_n's caller-driven paging model.
type Paginator struct {
	results []Scored
	pos     int
}

// NewPaginator wraps results (expected in descending-score order).
func NewPaginator(results []Scored) *Paginator {
	return &Paginator{results: results}
}

// Next returns the next n results (fewer at the tail), or nil once
// every result has been returned.
func (p *Paginator) Next(n int) []Scored {
	if p.pos >= len(p.results) {
		return nil
	}
	end := p.pos + n
	if end > len(p.results) {
		end = len(p.results)
	}
	out := p.results[p.pos:end]
	p.pos = end
	return out
}
