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

package postings

import (
	"github.com/arcsearch/spimi/bitmap"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/errs"
)

// TermReader resolves a dictionary TermInfo into its decoded postings,
// going through the postings-file cache and filtering invalidated doc
// ids.
type TermReader struct {
	cache *Cache
	inval *bitmap.Invalidation
}

// NewTermReader builds a reader over cache, filtering with inval.
func NewTermReader(cache *Cache, inval *bitmap.Invalidation) *TermReader {
	return &TermReader{cache: cache, inval: inval}
}

// Read decodes every posting for the term described by info.
func (tr *TermReader) Read(info dict.TermInfo) ([]Doc, error) {
	data, err := tr.cache.Get(info.PostingsFileID)
	if err != nil {
		return nil, err
	}
	if int(info.ByteOffset) > len(data) {
		return nil, errs.ErrCorruptIndex
	}
	docs, _ := DecodeTermDocs(data[info.ByteOffset:], info.DocFreq, tr.inval.IsInvalidated)
	return docs, nil
}
