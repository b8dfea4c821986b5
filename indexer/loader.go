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

// Package indexer implements the SPIMI indexing pipeline's
// orchestrator and worker pool (C9): document loading, block-boundary
// coordination, and the full/incremental run entrypoints.
package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arcsearch/spimi/errs"
)

// Document is one loaded document: its field texts, keyed by the
// configured field name, plus the relative path of the file it came
// from (for incremental bookkeeping; multiple documents may share a
// path when a JSON file contains an array).
type Document struct {
	RelPath string
	Fields  map[string]string
}

// LoadJSONFile reads one .json source file and returns the documents
// it contains: a single `{"field": "text", ...}` object yields one
// document, a `[{...}, {...}]` array yields one per element. Any other
// extension is skipped (errs.ErrLoaderSkipped), matching a
// multi-format loader registry's "not mine" return without treating it
// as fatal.
func LoadJSONFile(sourceDir, absPath string) ([]Document, error) {
	if strings.ToLower(filepath.Ext(absPath)) != ".json" {
		return nil, errs.ErrLoaderSkipped
	}

	relPath, err := filepath.Rel(sourceDir, absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	relPath = filepath.ToSlash(relPath)

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	var asArray []map[string]string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		docs := make([]Document, 0, len(asArray))
		for _, fields := range asArray {
			docs = append(docs, Document{RelPath: relPath, Fields: fields})
		}
		return docs, nil
	}

	var single map[string]string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrIOFatal, relPath, err)
	}
	return []Document{{RelPath: relPath, Fields: single}}, nil
}

// WalkSourceFiles lists every regular file under sourceDir matching
// indexing_config's include/exclude globs (matched against the
// slash-separated relative path; no include patterns means every file
// passes that stage), relative paths slash-separated and sorted, so a
// run's doc id assignment is deterministic between repeated indexes of
// an unmodified corpus.
func WalkSourceFiles(sourceDir string, include, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(sourceDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if !globMatchAny(include, rel, true) || globMatchAny(exclude, rel, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	sort.Strings(files)
	return files, nil
}

// globMatchAny reports whether rel matches any pattern in globs. An
// empty glob list resolves to defaultEmpty (true for include, since no
// include patterns means "everything passes"; false for exclude, since
// no exclude patterns means "nothing is excluded").
func globMatchAny(globs []string, rel string, defaultEmpty bool) bool {
	if len(globs) == 0 {
		return defaultEmpty
	}
	for _, g := range globs {
		if ok, _ := filepath.Match(g, rel); ok {
			return true
		}
	}
	return false
}
