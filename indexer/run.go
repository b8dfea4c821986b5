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

package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/incremental"
)

// RunOptions controls one indexer invocation.
type RunOptions struct {
	SourceDir   string
	OutputDir   string
	Config      *config.Config
	Logger      *zap.Logger
	Incremental bool
	// IncrementalContentHash, when true, hashes file contents to
	// detect changes; otherwise mtime is used (cheaper, coarser).
	IncrementalContentHash bool
	PreserveOutputFolder   bool
}

// Run drives one full or incremental indexing pass per opts. An
// incremental run diffs the source tree against the previous run's
// file -> doc-id map: changed and removed files contribute their old
// doc ids to the invalidation bitmap, and the surviving index is
// carried forward (Orchestrator.PrepareIncremental) before any new
// document is assigned a doc id.
func Run(opts RunOptions) error {
	if !opts.PreserveOutputFolder && !opts.Incremental {
		if err := os.RemoveAll(opts.OutputDir); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
		}
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	cat, err := opts.Config.BuildCatalog()
	if err != nil {
		return err
	}

	var prevInfo *incremental.Info
	if opts.Incremental {
		prevInfo, err = incremental.Load(incrementalInfoPath(opts.OutputDir))
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
		}
	}

	absFiles, err := WalkSourceFiles(opts.SourceDir, opts.Config.IndexingConfig.Include, opts.Config.IndexingConfig.Exclude)
	if err != nil {
		return err
	}

	orch := New(opts.Config, cat, opts.Logger, opts.OutputDir)

	type pending struct {
		relPath string
		docs    []Document
		hash    uint64
	}
	var toIndex []pending
	seenPaths := make(map[string]bool)
	var invalidatedDocIDs []uint32

	for _, absPath := range absFiles {
		docs, err := LoadJSONFile(opts.SourceDir, absPath)
		if err == errs.ErrLoaderSkipped {
			continue
		}
		if err != nil {
			return err
		}
		relPath := docs[0].RelPath
		seenPaths[relPath] = true

		var hash uint64
		if opts.Incremental {
			if opts.IncrementalContentHash {
				raw, readErr := os.ReadFile(absPath)
				if readErr != nil {
					return fmt.Errorf("%w: %v", errs.ErrIOFatal, readErr)
				}
				hash = incremental.HashContent(raw)
			} else {
				fi, statErr := os.Stat(absPath)
				if statErr != nil {
					return fmt.Errorf("%w: %v", errs.ErrIOFatal, statErr)
				}
				hash = incremental.HashMTime(fi.ModTime().UnixNano())
			}
			if !prevInfo.Changed(relPath, hash) {
				orch.Info().Update(relPath, prevInfo.Files[relPath].DocIDs, hash)
				continue
			}
			if old, ok := prevInfo.Files[relPath]; ok {
				invalidatedDocIDs = append(invalidatedDocIDs, old.DocIDs...)
			}
		}

		toIndex = append(toIndex, pending{relPath: relPath, docs: docs, hash: hash})
	}

	if opts.Incremental {
		for relPath, entry := range prevInfo.Files {
			if !seenPaths[relPath] {
				invalidatedDocIDs = append(invalidatedDocIDs, entry.DocIDs...)
			}
		}
		if err := orch.PrepareIncremental(invalidatedDocIDs); err != nil {
			return err
		}
	}

	for _, p := range toIndex {
		var docIDs []uint32
		for _, doc := range p.docs {
			docID, err := orch.IndexDocument(doc)
			if err != nil {
				return err
			}
			docIDs = append(docIDs, docID)
		}
		orch.Info().Update(p.relPath, docIDs, p.hash)
	}

	return orch.Finish()
}

func incrementalInfoPath(outDir string) string {
	return filepath.Join(outDir, "_incremental_info.json")
}
