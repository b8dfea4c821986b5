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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/gofrs/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/arcsearch/spimi/bitmap"
	"github.com/arcsearch/spimi/block"
	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/fieldstore"
	"github.com/arcsearch/spimi/incremental"
	"github.com/arcsearch/spimi/merge"
	"github.com/arcsearch/spimi/metadata"
	"github.com/arcsearch/spimi/mine"
)

// Orchestrator runs the SPIMI pipeline end to end: dispatching
// documents to a worker pool, cutting blocks at the configured
// boundary, merging blocks into the final postings/dictionary files,
// and writing the field store and metadata bundle.
type Orchestrator struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	logger  *zap.Logger
	outDir  string

	workers []*worker
	enums   *enumRegistry

	// spimiCounter and docIDCounter are atomic.Uint32 rather than plain
	// fields: both are read back by Finish/IndexDocument after the
	// worker pool has fully drained, mirroring the cross-goroutine
	// counter types nakama's server/match_registry.go uses for its own
	// match counters rather than guarding a plain int with a mutex.
	spimiCounter atomic.Uint32
	docIDCounter atomic.Uint32
	blockID      int
	blockSources []blockArtifact
	info         *incremental.Info
	stats        *catalog.Stats
	allDocInfos  []catalog.DocInfo
	fieldStoreW  *fieldstore.Writer
	inval        *bitmap.Invalidation
}

type blockArtifact struct {
	dataPath string
	dictPath string
}

// numWorkers mirrors the spec's pool-size default of
// max(1, physical_cores - 1) when the config leaves it unset.
func numWorkers(cfg *config.Config) int {
	if cfg.IndexingConfig.NumThreads > 0 {
		return cfg.IndexingConfig.NumThreads
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// New builds an Orchestrator writing its output under outDir.
func New(cfg *config.Config, cat *catalog.Catalog, logger *zap.Logger, outDir string) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		catalog: cat,
		logger:  logger,
		outDir:  outDir,
		enums:   newEnumRegistry(),
		info:    incremental.New(),
		stats:   catalog.NewStats(),
		inval:   bitmap.New(),
		fieldStoreW: fieldstore.NewWriter(outDir, fieldstore.Layout{
			NumDocsPerStore: cfg.FieldsConfig.NumDocsPerStore,
			NumStoresPerDir: cfg.FieldsConfig.NumStoresPerDir,
		}),
	}
	withPositions := cfg.IndexingConfig.WithPositions == nil || *cfg.IndexingConfig.WithPositions
	n := numWorkers(cfg)
	for i := 0; i < n; i++ {
		o.workers = append(o.workers, newWorker(i, logger, cat, o.enums, withPositions))
	}
	return o
}

// PrepareIncremental carries a prior run's surviving index forward
// (see loadCarryOver) and resumes doc id assignment after its highest
// id, so the new run's doc ids never collide with preserved ones.
func (o *Orchestrator) PrepareIncremental(invalidatedDocIDs []uint32) error {
	prevCounter, err := o.loadCarryOver(invalidatedDocIDs)
	if err != nil {
		return err
	}
	o.docIDCounter.Store(prevCounter)
	return nil
}

// IndexDocument folds one loaded document into the pipeline: dispatch
// to a worker by round robin, append its stored fields to the field
// store, and cut a block if the SPIMI counter boundary is hit. It
// returns the doc id assigned, so the caller can maintain the
// file-path -> doc-id incremental mapping at file granularity.
func (o *Orchestrator) IndexDocument(doc Document) (uint32, error) {
	docID := o.docIDCounter.Inc() - 1

	w := o.workers[int(docID)%len(o.workers)]
	w.jobs <- job{kind: jobIndex, docID: docID, doc: doc}

	rec := fieldstore.Record{DocID: docID, Fields: map[string]string{}}
	for _, f := range o.catalog.Fields {
		if f.Storage == catalog.StorageText {
			if text, ok := doc.Fields[f.Name]; ok {
				rec.Fields[f.Name] = text
			}
		}
	}
	if err := o.fieldStoreW.Append(rec); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	if o.spimiCounter.Inc() >= o.cfg.IndexingConfig.NumDocsPerBlock {
		if err := o.cutBlock(); err != nil {
			return 0, err
		}
	}
	return docID, nil
}

// Info exposes the running incremental file -> doc-id map so the
// caller can update it at file granularity after indexing.
func (o *Orchestrator) Info() *incremental.Info {
	return o.info
}

// cutBlock resets every worker (the barrier in §4.3's Reset step),
// collects their miners, and writes a merged block file pair.
func (o *Orchestrator) cutBlock() error {
	miners := make([]*mine.Miner, 0, len(o.workers))
	for _, w := range o.workers {
		reply := make(chan *mine.Miner, 1)
		w.jobs <- job{kind: jobReset, resetReply: reply}
		miners = append(miners, <-reply)
	}
	if err := o.writeBlock(miners); err != nil {
		return err
	}
	o.spimiCounter.Store(0)
	return nil
}

// writeCarryOverBlock presents a prior run's surviving postings (and
// doc infos), already loaded into m via LoadCarryOver/LoadDocInfo, as
// one more block for the merge to absorb.
func (o *Orchestrator) writeCarryOverBlock(m *mine.Miner) error {
	return o.writeBlock([]*mine.Miner{m})
}

// writeBlock merges miners (worker-accumulated or carried-over) into
// one block file pair and folds its doc infos into the running stats.
func (o *Orchestrator) writeBlock(miners []*mine.Miner) error {
	blockDir := filepath.Join(o.outDir, "_blocks")
	if err := os.MkdirAll(blockDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	// The filename carries a random id rather than the plain block
	// counter so a carry-over run (whose blocks share _blocks with
	// whatever the worker pool cuts this run) can never collide with a
	// stale file left behind by an interrupted prior run.
	blockUUID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	dataPath := filepath.Join(blockDir, fmt.Sprintf("block_%s.bin", blockUUID))
	dictPath := filepath.Join(blockDir, fmt.Sprintf("block_%s.dict.bin", blockUUID))
	o.blockID++

	dataFile, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	defer dataFile.Close()
	dictFile, err := os.Create(dictPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	defer dictFile.Close()

	docInfos, err := block.Write(miners, dataFile, dictFile)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	for _, d := range docInfos {
		o.stats.Add(d)
	}
	o.allDocInfos = append(o.allDocInfos, docInfos...)

	o.blockSources = append(o.blockSources, blockArtifact{dataPath: dataPath, dictPath: dictPath})
	return nil
}

// Finish cuts any partial trailing block, merges every block into the
// final postings/dictionary files, writes the metadata bundle and
// incremental info, and shuts the worker pool down.
func (o *Orchestrator) Finish() error {
	if o.spimiCounter.Load() > 0 {
		if err := o.cutBlock(); err != nil {
			return err
		}
	}
	for _, w := range o.workers {
		w.jobs <- job{kind: jobShutdown}
		close(w.jobs)
	}
	for _, w := range o.workers {
		<-w.done
	}

	sources := make([]merge.BlockSource, 0, len(o.blockSources))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for i, b := range o.blockSources {
		df, err := os.Open(b.dataPath)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
		}
		closers = append(closers, df)
		dictf, err := os.Open(b.dictPath)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
		}
		closers = append(closers, dictf)
		sources = append(sources, merge.BlockSource{BlockID: i, Data: df, DictData: dictf})
	}

	pw, err := merge.NewPostingsFileWriter(o.outDir, o.cfg.IndexingConfig.PLLimit, o.cfg.IndexingConfig.NumPlsPerDir, o.cfg.IndexingConfig.PLCacheThreshold)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	result, err := merge.Merge(sources, pw)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	stringStream, tableStream := dict.Encode(result.Entries)
	if err := os.WriteFile(filepath.Join(o.outDir, "dictionary_string.bin"), stringStream, 0644); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	numDocs := o.docIDCounter.Load()
	invalBytes := o.inval.Encode(numDocs)

	sort.Slice(o.allDocInfos, func(i, j int) bool { return o.allDocInfos[i].DocID < o.allDocInfos[j].DocID })
	docInfo := metadata.BuildDocInfo(o.stats, o.catalog, numDocs, o.allDocInfos)
	bundle := metadata.Encode(tableStream, invalBytes, docInfo)
	if err := os.WriteFile(filepath.Join(o.outDir, "metadata.bin"), bundle, 0644); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	if err := o.info.Save(filepath.Join(o.outDir, "_incremental_info.json")); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	outCfg := config.BuildOutputConfig(o.cfg, o.catalog, result.PLsToCache)
	if err := outCfg.Save(filepath.Join(o.outDir, "output_config.json")); err != nil {
		return err
	}

	for _, c := range closers {
		c.Close()
	}
	closers = nil
	if err := os.RemoveAll(filepath.Join(o.outDir, "_blocks")); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}

	o.logger.Info("index build complete",
		zap.Uint32("num_docs", numDocs),
		zap.Int("num_blocks", len(o.blockSources)),
		zap.Int("num_terms", len(result.Entries)),
		zap.Uint32s("pls_cached", result.PLsToCache))

	return nil
}
