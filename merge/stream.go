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

// Package merge implements the SPIMI merger (C7): an n-way merge of
// sorted block files into the final dictionary and postings files.
package merge

import (
	"io"

	"github.com/arcsearch/spimi/block"
	"github.com/arcsearch/spimi/mine"
)

// decodedEntry is one fully-decoded block entry, produced by a
// stream's background decode goroutine.
type decodedEntry struct {
	term string
	docs []mine.TermDoc
	err  error
}

// streamBufferSize bounds how far the background decode goroutine can
// race ahead of the main merge loop. The channel itself is the
// "primary buffer"; the main thread only blocks (the spec's Notifier)
// when it is empty and decode hasn't produced the next entry yet.
const streamBufferSize = 4

// PostingsStream abstracts one block's sorted term iterator. Term keys
// come from the cheap block-dictionary file so the heap can compare
// terms without waiting on the (potentially large) decoded postings
// payload, which a background goroutine decodes concurrently from the
// heavier block file.
type PostingsStream struct {
	BlockID int

	dict    *block.DictReader
	decoded chan decodedEntry

	curTerm    string
	curDocFreq uint32
	curDocs    []mine.TermDoc
	exhausted  bool
}

// NewPostingsStream starts a background decoder over blockData,
// peeking keys from dictData, and primes the first entry.
func NewPostingsStream(blockID int, blockData, dictData io.Reader) (*PostingsStream, error) {
	s := &PostingsStream{
		BlockID: blockID,
		dict:    block.NewDictReader(dictData),
		decoded: make(chan decodedEntry, streamBufferSize),
	}

	go s.decodeLoop(block.NewReader(blockData))

	if err := s.advance(); err != nil && err != io.EOF {
		return nil, err
	}
	return s, nil
}

func (s *PostingsStream) decodeLoop(r *block.Reader) {
	defer close(s.decoded)
	for {
		term, docs, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.decoded <- decodedEntry{err: err}
			return
		}
		s.decoded <- decodedEntry{term: term, docs: docs}
	}
}

// advance pulls the next (term, doc_freq) key from the dictionary
// stream and blocks on the decode channel for its matching payload.
func (s *PostingsStream) advance() error {
	entry, err := s.dict.Next()
	if err != nil {
		s.exhausted = true
		return err
	}

	decoded, ok := <-s.decoded
	if !ok {
		s.exhausted = true
		return io.EOF
	}
	if decoded.err != nil {
		return decoded.err
	}

	s.curTerm = entry.Term
	s.curDocFreq = entry.DocFreq
	s.curDocs = decoded.docs
	return nil
}

// Done reports whether the stream has been fully consumed.
func (s *PostingsStream) Done() bool {
	return s.exhausted
}

// Term returns the current term this stream is positioned at.
func (s *PostingsStream) Term() string {
	return s.curTerm
}

// DocFreq returns the current term's doc frequency within this block.
func (s *PostingsStream) DocFreq() uint32 {
	return s.curDocFreq
}

// Docs returns the current term's decoded postings.
func (s *PostingsStream) Docs() []mine.TermDoc {
	return s.curDocs
}

// Advance moves the stream past its current term. Callers must check
// Done afterwards.
func (s *PostingsStream) Advance() error {
	return s.advance()
}
