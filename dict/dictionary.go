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

// Package dict implements the front-coded dictionary codec (C2): an
// ordered term -> term_info map compressed as a suffix string stream
// plus a packed metadata table.
package dict

import (
	"github.com/arcsearch/spimi/codec"
	"github.com/arcsearch/spimi/errs"
)

// Columns in the packed table stream.
const (
	colDocFreq = iota
	colOffsetDelta
	colPrefixLen
	colRemainingLen
)

// TermInfo locates a term's postings within the postings file set.
type TermInfo struct {
	DocFreq        uint32
	PostingsFileID uint32
	ByteOffset     uint32
}

// Entry pairs a dictionary-ordered term with its term_info.
type Entry struct {
	Term string
	Info TermInfo
}

// Encode front-codes a strictly ascending, deduplicated list of entries
// into a string stream and a table stream. Entries must already be
// grouped so that PostingsFileID is non-decreasing (the order a SPIMI
// merge naturally produces).
func Encode(entries []Entry) (stringStream, tableStream []byte) {
	w := codec.NewPackedWriter()

	var prevTerm string
	var prevOffset uint32
	var currentFile uint32
	var strBuf []byte

	for i, e := range entries {
		if i == 0 {
			currentFile = e.Info.PostingsFileID
		}
		for currentFile < e.Info.PostingsFileID {
			// Emit a file-rotation sentinel: doc_freq 0, everything
			// else 0, no string bytes consumed.
			w.Write(colDocFreq, 0)
			w.Write(colOffsetDelta, 0)
			w.Write(colPrefixLen, 0)
			w.Write(colRemainingLen, 0)
			currentFile++
			prevOffset = 0
		}

		prefixLen := commonPrefixBytes(prevTerm, e.Term)
		remaining := e.Term[prefixLen:]

		offsetDelta := e.Info.ByteOffset - prevOffset

		w.Write(colDocFreq, uint64(e.Info.DocFreq))
		w.Write(colOffsetDelta, uint64(offsetDelta))
		w.Write(colPrefixLen, uint64(prefixLen))
		w.Write(colRemainingLen, uint64(len(remaining)))

		strBuf = append(strBuf, remaining...)

		prevTerm = e.Term
		prevOffset = e.Info.ByteOffset
	}

	tableStream = packTable(w)
	return strBuf, tableStream
}

// packTable lays out the four columns back to back, each length
// prefixed, so Decode can split them again without a shared header.
func packTable(w *codec.PackedWriter) []byte {
	var out []byte
	for _, col := range []int{colDocFreq, colOffsetDelta, colPrefixLen, colRemainingLen} {
		b := w.Bytes(col)
		out = codec.AppendUvarint(out, uint64(len(b)))
		out = append(out, b...)
	}
	return out
}

// Decode reconstructs the ordered entry list from the streams Encode
// produced.
func Decode(stringStream, tableStream []byte) ([]Entry, error) {
	readers := make([]*codec.PackedReader, 4)
	rest := tableStream
	for i := 0; i < 4; i++ {
		n, nlen := codec.Uvarint(rest)
		if nlen == 0 || uint64(len(rest)-nlen) < n {
			return nil, errs.ErrCorruptIndex
		}
		rest = rest[nlen:]
		readers[i] = codec.NewPackedReader(rest[:n])
		rest = rest[n:]
	}

	var entries []Entry
	var prevTerm string
	var prevOffset uint32
	var currentFile uint32
	strPos := 0

	for {
		docFreq, ok := readers[colDocFreq].Next()
		if !ok {
			break
		}
		offsetDelta, _ := readers[colOffsetDelta].Next()
		prefixLen, _ := readers[colPrefixLen].Next()
		remLen, _ := readers[colRemainingLen].Next()

		if docFreq == 0 {
			currentFile++
			prevOffset = 0
			continue
		}

		if int(prefixLen) > len(prevTerm) || strPos+int(remLen) > len(stringStream) {
			return nil, errs.ErrCorruptIndex
		}

		term := prevTerm[:prefixLen] + string(stringStream[strPos:strPos+int(remLen)])
		strPos += int(remLen)

		offset := prevOffset + uint32(offsetDelta)

		entries = append(entries, Entry{
			Term: term,
			Info: TermInfo{
				DocFreq:        uint32(docFreq),
				PostingsFileID: currentFile,
				ByteOffset:     offset,
			},
		})

		prevTerm = term
		prevOffset = offset
	}

	return entries, nil
}

// commonPrefixBytes returns the length, in bytes, of the longest
// common prefix of a and b measured in whole runes (a partial rune
// match never counts).
func commonPrefixBytes(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	i := 0
	for i < n && ar[i] == br[i] {
		i++
	}
	return len(string(ar[:i]))
}
