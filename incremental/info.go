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

// Package incremental tracks the file-path -> doc-id mapping (C4) used
// to detect changed or removed source files between incremental runs.
package incremental

import (
	"encoding/json"
	"os"

	"github.com/cespare/xxhash/v2"
)

// FileEntry records which doc ids a source file produced and a hash
// used to detect whether it changed since the last run.
type FileEntry struct {
	DocIDs []uint32 `json:"doc_ids"`
	Hash   uint64   `json:"hash"`
}

// Info is the full _incremental_info.json document: one entry per
// source file path seen by any prior run.
type Info struct {
	Files map[string]FileEntry `json:"files"`
}

// New returns an empty incremental info set.
func New() *Info {
	return &Info{Files: make(map[string]FileEntry)}
}

// Load reads _incremental_info.json from path. A missing file is not
// an error: it means this is the first, full-index run.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	info := New()
	if err := json.Unmarshal(data, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Save writes the info document to path as compact JSON, matching the
// original indexer's un-indented field-store/metadata style.
func (info *Info) Save(path string) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HashContent hashes raw document content with xxhash, used when
// --incremental-content-hash is set so edits that don't change mtime
// (e.g. a git checkout) are still detected.
func HashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// HashMTime hashes a file's modification time in nanoseconds, the
// cheaper default detection strategy.
func HashMTime(mtimeNanos int64) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(mtimeNanos >> (8 * i))
	}
	return xxhash.Sum64(buf[:])
}

// Changed reports whether path is new or its hash differs from the
// last recorded run.
func (info *Info) Changed(path string, hash uint64) bool {
	entry, ok := info.Files[path]
	if !ok {
		return true
	}
	return entry.Hash != hash
}

// Update records the doc ids and hash produced for path in this run.
func (info *Info) Update(path string, docIDs []uint32, hash uint64) {
	info.Files[path] = FileEntry{DocIDs: docIDs, Hash: hash}
}

// Remove drops a path's entry, returning the doc ids it previously
// owned so the caller can invalidate them.
func (info *Info) Remove(path string) []uint32 {
	entry, ok := info.Files[path]
	if !ok {
		return nil
	}
	delete(info.Files, path)
	return entry.DocIDs
}
