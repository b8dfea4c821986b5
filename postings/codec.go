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

// Package postings implements the postings-list wire format (§3, §4.4)
// and the on-demand reader + LRU cache that back query execution
// (C10).
package postings

import (
	"github.com/arcsearch/spimi/codec"
	"github.com/arcsearch/spimi/mine"
)

// Doc is one decoded posting: a document id plus its per-field term
// frequency and position data for the term being decoded.
type Doc struct {
	DocID  uint32
	Fields []mine.DocField
}

// EncodeTermDocs appends the wire encoding of docs (already sorted
// ascending, and already de-duplicated across SPIMI blocks) to buf and
// returns the extended slice. This is the format both the SPIMI merger
// (C7, writing) and the on-demand reader (C10, reading) share.
func EncodeTermDocs(buf []byte, docs []mine.TermDoc) []byte {
	var prevDocID uint32
	for i, td := range docs {
		delta := td.DocID - prevDocID
		if i == 0 {
			delta = td.DocID
		}
		buf = codec.AppendUvarint(buf, uint64(delta))
		prevDocID = td.DocID

		for fi, f := range td.Fields {
			fieldByte := f.FieldID
			if fi == len(td.Fields)-1 {
				fieldByte |= 0x80
			}
			buf = append(buf, fieldByte)
			buf = codec.AppendUvarint(buf, uint64(f.FieldTF))

			var prevPos uint32
			for _, p := range f.Positions {
				buf = codec.AppendUvarint(buf, uint64(p-prevPos))
				prevPos = p
			}
		}
	}
	return buf
}

// DecodeTermDocs decodes docFreq postings starting at the front of
// buf, filtering out any doc id for which invalidated returns true.
// It returns the surviving docs and the number of bytes consumed.
func DecodeTermDocs(buf []byte, docFreq uint32, invalidated func(uint32) bool) ([]Doc, int) {
	var docs []Doc
	pos := 0
	var docID uint32

	for i := uint32(0); i < docFreq; i++ {
		delta, n := codec.Uvarint32(buf[pos:])
		pos += n
		if i == 0 {
			docID = delta
		} else {
			docID += delta
		}

		var fields []mine.DocField
		for {
			fieldByte := buf[pos]
			pos++
			last := fieldByte&0x80 != 0
			fieldID := fieldByte &^ 0x80

			tf, n := codec.Uvarint32(buf[pos:])
			pos += n

			positions := make([]uint32, 0, tf)
			var prevPos uint32
			for p := uint32(0); p < tf; p++ {
				gap, n := codec.Uvarint32(buf[pos:])
				pos += n
				prevPos += gap
				positions = append(positions, prevPos)
			}

			fields = append(fields, mine.DocField{FieldID: fieldID, FieldTF: tf, Positions: positions})
			if last {
				break
			}
		}

		if invalidated == nil || !invalidated(docID) {
			docs = append(docs, Doc{DocID: docID, Fields: fields})
		}
	}

	return docs, pos
}
