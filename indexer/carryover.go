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

	"github.com/arcsearch/spimi/bitmap"
	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/metadata"
	"github.com/arcsearch/spimi/mine"
	"github.com/arcsearch/spimi/postings"
)

// fsFetcher reads postings files straight off a prior run's output
// directory, for carrying surviving postings into an incremental
// merge.
type fsFetcher struct {
	outDir       string
	numPlsPerDir uint32
}

func (f fsFetcher) Fetch(plID uint32) ([]byte, error) {
	dir := plID / f.numPlsPerDir
	path := filepath.Join(f.outDir, fmt.Sprintf("pl_%d", dir), fmt.Sprintf("pl_%d.bin", plID))
	return os.ReadFile(path)
}

// priorIndexExists reports whether outDir holds a previous run's
// output worth carrying forward.
func priorIndexExists(outDir string) bool {
	_, err1 := os.Stat(filepath.Join(outDir, "metadata.bin"))
	_, err2 := os.Stat(filepath.Join(outDir, "dictionary_string.bin"))
	return err1 == nil && err2 == nil
}

// loadCarryOver decodes the prior run's dictionary and postings,
// folds invalidatedDocIDs (changed or removed source files) into the
// invalidation bitmap, and re-presents every surviving posting as a
// synthetic mine.Miner block so the normal block-merge path absorbs
// the old index without re-deriving it from source text. It returns
// the doc id counter to resume from.
func (o *Orchestrator) loadCarryOver(invalidatedDocIDs []uint32) (uint32, error) {
	if !priorIndexExists(o.outDir) {
		return 0, nil
	}

	metaBytes, err := os.ReadFile(filepath.Join(o.outDir, "metadata.bin"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	stringStream, err := os.ReadFile(filepath.Join(o.outDir, "dictionary_string.bin"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	bundle, err := metadata.Decode(metaBytes)
	if err != nil {
		return 0, err
	}
	entries, err := dict.Decode(stringStream, bundle.DictTable)
	if err != nil {
		return 0, err
	}

	inval := bitmap.Decode(bundle.InvalidationVec)
	for _, id := range invalidatedDocIDs {
		inval.Invalidate(id)
	}
	o.inval = inval

	numDocs := bundle.DocInfo.DocIDCounter
	fetcher := fsFetcher{outDir: o.outDir, numPlsPerDir: o.cfg.IndexingConfig.NumPlsPerDir}
	cache := postings.NewCache(fetcher)
	reader := postings.NewTermReader(cache, inval)

	withPositions := o.cfg.IndexingConfig.WithPositions == nil || *o.cfg.IndexingConfig.WithPositions
	carryMiner := mine.NewWithPositions(withPositions)
	for _, e := range entries {
		if e.Info.DocFreq == 0 {
			continue // file-rotation sentinel
		}
		docs, err := reader.Read(e.Info)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
		}
		for _, d := range docs {
			carryMiner.LoadCarryOver(e.Term, &mine.TermDoc{DocID: d.DocID, Fields: d.Fields})
		}
	}

	for docID := uint32(0); docID < numDocs; docID++ {
		if inval.IsInvalidated(docID) {
			continue
		}
		info := catalog.DocInfo{
			DocID:       docID,
			FieldLens:   map[uint8]uint32{},
			EnumValues:  map[uint8]uint32{},
			NumericVals: map[uint8]int64{},
		}
		for _, f := range o.catalog.Fields {
			if vals, ok := bundle.DocInfo.FieldLens[f.ID]; ok && int(docID) < len(vals) {
				info.FieldLens[f.ID] = vals[docID]
			}
			if vals, ok := bundle.DocInfo.EnumValues[f.ID]; ok && int(docID) < len(vals) {
				info.EnumValues[f.ID] = vals[docID]
			}
			if vals, ok := bundle.DocInfo.NumericVals[f.ID]; ok && int(docID) < len(vals) {
				info.NumericVals[f.ID] = vals[docID]
			}
		}
		carryMiner.LoadDocInfo(info)
	}

	if err := o.writeCarryOverBlock(carryMiner); err != nil {
		return 0, err
	}
	return numDocs, nil
}
