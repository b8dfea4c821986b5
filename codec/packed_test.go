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

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackedWriterReaderRoundTripSingleChunk(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	w := NewPackedWriter()
	for _, v := range values {
		w.Write(0, v)
	}
	data := w.Bytes(0)

	r := NewPackedReader(data)
	for _, want := range values {
		got, ok := r.Next()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

// TestPackedWriterReaderRoundTripAcrossChunks exercises a count that is
// not a multiple of DefaultChunkSize, so the decode stops on the caller's
// own known count rather than happening to run out of bits at exactly
// the right moment.
func TestPackedWriterReaderRoundTripAcrossChunks(t *testing.T) {
	const n = DefaultChunkSize*3 + 17
	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(i % 5000)
	}

	w := NewPackedWriter()
	for _, v := range values {
		w.Write(0, v)
	}
	data := w.Bytes(0)

	r := NewPackedReader(data)
	for i, want := range values {
		got, ok := r.Next()
		require.True(t, ok, "value %d", i)
		require.Equal(t, want, got, "value %d", i)
	}
}

func TestPackedWriterColumnsIndependent(t *testing.T) {
	w := NewPackedWriter()
	for i := uint64(0); i < 200; i++ {
		w.Write(0, i)
		w.Write(1, i*1000)
	}
	colA := w.Bytes(0)
	colB := w.Bytes(1)

	rA := NewPackedReader(colA)
	rB := NewPackedReader(colB)
	for i := uint64(0); i < 200; i++ {
		gotA, ok := rA.Next()
		require.True(t, ok)
		require.Equal(t, i, gotA)

		gotB, ok := rB.Next()
		require.True(t, ok)
		require.Equal(t, i*1000, gotB)
	}
}

func TestPackedReaderEmptyColumn(t *testing.T) {
	w := NewPackedWriter()
	data := w.Bytes(99) // never written
	require.Nil(t, data)

	r := NewPackedReader(data)
	_, ok := r.Next()
	require.False(t, ok)
}

func TestPackedWriterColumnsOrder(t *testing.T) {
	w := NewPackedWriter()
	w.Write(3, 1)
	w.Write(1, 1)
	w.Write(2, 1)
	require.Equal(t, []int{3, 1, 2}, w.Columns())
}
