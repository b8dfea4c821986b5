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

// Package bitmap implements the invalidation bitmap (C4): a per-doc-id
// deleted bit, backed by a roaring.Bitmap for cheap set operations
// during incremental re-indexing and exported as the dense
// ceil(N/8)-byte vector the metadata bundle format requires.
package bitmap

import "github.com/RoaringBitmap/roaring"

// Invalidation tracks which doc ids have been logically deleted.
type Invalidation struct {
	bits *roaring.Bitmap
}

// New returns an empty invalidation set.
func New() *Invalidation {
	return &Invalidation{bits: roaring.New()}
}

// Invalidate marks docID as deleted.
func (inv *Invalidation) Invalidate(docID uint32) {
	inv.bits.Add(docID)
}

// IsInvalidated reports whether docID has been deleted.
func (inv *Invalidation) IsInvalidated(docID uint32) bool {
	return inv.bits.Contains(docID)
}

// Count returns the number of invalidated doc ids.
func (inv *Invalidation) Count() uint64 {
	return inv.bits.GetCardinality()
}

// Encode exports the bitmap as a dense, fixed ceil(numDocs/8)-byte
// vector, bit i (LSB-first within each byte) set iff doc id i is
// invalidated.
func (inv *Invalidation) Encode(numDocs uint32) []byte {
	out := make([]byte, (numDocs+7)/8)
	it := inv.bits.Iterator()
	for it.HasNext() {
		id := it.Next()
		if id >= numDocs {
			continue
		}
		out[id/8] |= 1 << (id % 8)
	}
	return out
}

// Decode reconstructs an Invalidation from the dense vector Encode
// produced.
func Decode(dense []byte) *Invalidation {
	bm := roaring.New()
	for byteIdx, b := range dense {
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) != 0 {
				bm.Add(uint32(byteIdx*8 + bit))
			}
		}
	}
	return &Invalidation{bits: bm}
}
