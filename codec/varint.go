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

// Package codec implements the two low-level encodings the rest of the
// index format builds on: terminator-high unsigned varints and
// fixed-width packed-bit chunks for columns of similarly sized values.
package codec

// MaxVarintLen32 and MaxVarintLen64 bound the number of bytes a varint
// encoded with PutUvarint/PutUvarint64 can occupy.
const (
	MaxVarintLen32 = 5
	MaxVarintLen64 = 10
	maxVarintBuf   = 16
)

// PutUvarint encodes v into buf using 7 data bits per byte, with the
// high bit of the final byte set as a terminator. It returns the number
// of bytes written. It panics unless len(buf) is at least 16 bytes,
// although no encoding is longer than MaxVarintLen64 bytes.
func PutUvarint(buf []byte, v uint64) int {
	if len(buf) < maxVarintBuf {
		panic("codec: PutUvarint buffer too small")
	}
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) & 0x7f
		v >>= 7
		i++
	}
	buf[i] = byte(v) | 0x80
	return i + 1
}

// AppendUvarint appends the varint encoding of v to buf and returns the
// extended slice.
func AppendUvarint(buf []byte, v uint64) []byte {
	var tmp [maxVarintBuf]byte
	n := PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// Uvarint decodes a varint from the front of buf, returning the value
// and the number of bytes consumed. It returns (0, 0) if buf does not
// contain a complete, terminated varint.
func Uvarint(buf []byte) (uint64, int) {
	var v uint64
	for i := 0; i < len(buf) && i < MaxVarintLen64; i++ {
		b := buf[i]
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 != 0 {
			return v, i + 1
		}
	}
	return 0, 0
}

// PutUvarint32 and Uvarint32 are the u32-bounded convenience wrappers
// used throughout the postings codec.
func PutUvarint32(buf []byte, v uint32) int {
	return PutUvarint(buf, uint64(v))
}

func Uvarint32(buf []byte) (uint32, int) {
	v, n := Uvarint(buf)
	return uint32(v), n
}
