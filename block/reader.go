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

package block

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/arcsearch/spimi/mine"
)

// Reader streams (term, []TermDoc) entries out of a block file in the
// order Write laid them down (lexicographic).
type Reader struct {
	r   *bufio.Reader
	hdr [9]byte
}

// NewReader wraps a block file.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next reads the next term entry. io.EOF signals a clean end of
// stream.
func (r *Reader) Next() (term string, docs []mine.TermDoc, err error) {
	tlenB, err := r.r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	termBuf := make([]byte, tlenB)
	if _, err := io.ReadFull(r.r, termBuf); err != nil {
		return "", nil, err
	}

	if _, err := io.ReadFull(r.r, r.hdr[:4]); err != nil {
		return "", nil, err
	}
	docFreq := binary.LittleEndian.Uint32(r.hdr[:4])

	docs = make([]mine.TermDoc, 0, docFreq)
	for i := uint32(0); i < docFreq; i++ {
		td, err := r.readTermDoc()
		if err != nil {
			return "", nil, err
		}
		docs = append(docs, td)
	}

	return string(termBuf), docs, nil
}

func (r *Reader) readTermDoc() (mine.TermDoc, error) {
	if _, err := io.ReadFull(r.r, r.hdr[:4]); err != nil {
		return mine.TermDoc{}, err
	}
	docID := binary.LittleEndian.Uint32(r.hdr[:4])

	numFieldsB, err := r.r.ReadByte()
	if err != nil {
		return mine.TermDoc{}, err
	}

	td := mine.TermDoc{DocID: docID, Fields: make([]mine.DocField, 0, numFieldsB)}
	for i := byte(0); i < numFieldsB; i++ {
		fieldID, err := r.r.ReadByte()
		if err != nil {
			return mine.TermDoc{}, err
		}
		if _, err := io.ReadFull(r.r, r.hdr[:4]); err != nil {
			return mine.TermDoc{}, err
		}
		tf := binary.LittleEndian.Uint32(r.hdr[:4])

		positions := make([]uint32, 0, tf)
		for p := uint32(0); p < tf; p++ {
			if _, err := io.ReadFull(r.r, r.hdr[:4]); err != nil {
				return mine.TermDoc{}, err
			}
			positions = append(positions, binary.LittleEndian.Uint32(r.hdr[:4]))
		}
		td.Fields = append(td.Fields, mine.DocField{FieldID: fieldID, FieldTF: tf, Positions: positions})
	}
	return td, nil
}

// DictEntry is one (term, doc_freq) pair from a block-dictionary file.
type DictEntry struct {
	Term    string
	DocFreq uint32
}

// DictReader streams a block-dictionary file, used by the merge phase
// to peek at upcoming terms without decoding full postings.
type DictReader struct {
	r   *bufio.Reader
	hdr [4]byte
}

// NewDictReader wraps a block-dictionary file.
func NewDictReader(r io.Reader) *DictReader {
	return &DictReader{r: bufio.NewReader(r)}
}

// Next reads the next (term, doc_freq) pair. io.EOF signals the end.
func (d *DictReader) Next() (DictEntry, error) {
	tlenB, err := d.r.ReadByte()
	if err != nil {
		return DictEntry{}, err
	}
	termBuf := make([]byte, tlenB)
	if _, err := io.ReadFull(d.r, termBuf); err != nil {
		return DictEntry{}, err
	}
	if _, err := io.ReadFull(d.r, d.hdr[:]); err != nil {
		return DictEntry{}, err
	}
	return DictEntry{Term: string(termBuf), DocFreq: binary.LittleEndian.Uint32(d.hdr[:])}, nil
}
