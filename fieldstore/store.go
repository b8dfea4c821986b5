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

// Package fieldstore implements the chunked JSON field-store files
// (C8) used to render result snippets without touching the index
// proper.
package fieldstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one document's stored field texts, keyed by field name
// (only fields with Storage == StorageText are included).
type Record struct {
	DocID  uint32            `json:"doc_id"`
	Fields map[string]string `json:"fields"`
}

// Layout controls how many records land in one file and how many
// files land in one subdirectory, per the active preset.
type Layout struct {
	NumDocsPerStore  uint32
	NumStoresPerDir  uint32
}

// Writer appends Records to chunked files under outDir/field_store.
type Writer struct {
	outDir string
	layout Layout
}

// NewWriter returns a writer rooted at outDir (the index's output
// directory; files land under outDir/field_store).
func NewWriter(outDir string, layout Layout) *Writer {
	if layout.NumDocsPerStore == 0 {
		layout.NumDocsPerStore = 100000000
	}
	if layout.NumStoresPerDir == 0 {
		layout.NumStoresPerDir = 1000
	}
	return &Writer{outDir: outDir, layout: layout}
}

func (w *Writer) storeIndex(docID uint32) uint32 {
	return docID / w.layout.NumDocsPerStore
}

func (w *Writer) path(storeIdx uint32) string {
	dirIdx := storeIdx / w.layout.NumStoresPerDir
	dir := filepath.Join(w.outDir, "field_store", fmt.Sprint(dirIdx))
	return filepath.Join(dir, fmt.Sprintf("%d.json", storeIdx))
}

// Append writes rec into the file covering its doc id. If the file
// already exists (an earlier run or an earlier doc in the same store),
// the closing `]` is rewritten to `,` so the array stays valid JSON —
// the same trick incremental re-indexing needs across process runs.
func (w *Writer) Append(rec Record) error {
	p := w.path(w.storeIndex(rec.DocID))

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		content := append([]byte("["), data...)
		content = append(content, ']')
		return os.WriteFile(p, content, 0644)
	}

	f, err := os.OpenFile(p, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("fieldstore: %s is empty", p)
	}

	// Overwrite the trailing ']' with ',' + new record + ']'.
	if _, err := f.WriteAt([]byte(","), info.Size()-1); err != nil {
		return err
	}
	suffix := append(data, ']')
	if _, err := f.WriteAt(suffix, info.Size()); err != nil {
		return err
	}
	return nil
}

// ReadStore reads every record out of the file containing storeIdx.
func (w *Writer) ReadStore(storeIdx uint32) ([]Record, error) {
	data, err := os.ReadFile(w.path(storeIdx))
	if err != nil {
		return nil, err
	}
	var recs []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// StoreIndexForDoc exposes the store index a doc id maps to, so the
// search runtime can locate its record without re-deriving layout
// math.
func (w *Writer) StoreIndexForDoc(docID uint32) uint32 {
	return w.storeIndex(docID)
}
