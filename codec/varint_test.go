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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 2, 127, 128, 129, 255, 256,
		1 << 14, 1<<14 - 1, 1 << 21,
		math.MaxUint32 - 1, math.MaxUint32,
		1 << 35, math.MaxUint64,
	}
	for _, v := range values {
		var buf [maxVarintBuf]byte
		n := PutUvarint(buf[:], v)
		got, used := Uvarint(buf[:n])
		require.Equal(t, n, used, "value %d", v)
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestUvarint32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 16384, math.MaxUint16, math.MaxUint32}
	for _, v := range values {
		var buf [maxVarintBuf]byte
		n := PutUvarint32(buf[:], v)
		require.LessOrEqual(t, n, MaxVarintLen32)
		got, used := Uvarint32(buf[:n])
		require.Equal(t, n, used)
		require.Equal(t, v, got)
	}
}

func TestAppendUvarintConcatenates(t *testing.T) {
	var buf []byte
	buf = AppendUvarint(buf, 42)
	buf = AppendUvarint(buf, 300)
	buf = AppendUvarint(buf, 0)

	v1, n1 := Uvarint(buf)
	require.Equal(t, uint64(42), v1)
	v2, n2 := Uvarint(buf[n1:])
	require.Equal(t, uint64(300), v2)
	v3, n3 := Uvarint(buf[n1+n2:])
	require.Equal(t, uint64(0), v3)
	require.Equal(t, len(buf), n1+n2+n3)
}

func TestUvarintIncompleteReturnsZero(t *testing.T) {
	// A byte without the high terminator bit and nothing following is an
	// unterminated varint; Uvarint must report no bytes consumed rather
	// than panic or fabricate a value.
	v, n := Uvarint([]byte{0x01})
	require.Equal(t, 0, n)
	require.Equal(t, uint64(0), v)
}

func TestPutUvarintPanicsOnShortBuffer(t *testing.T) {
	require.Panics(t, func() {
		PutUvarint(make([]byte, 4), math.MaxUint64)
	})
}
