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

// Package search implements the public embedding API (§6 Runtime
// API): loading a completed index bundle once, then running ranked
// queries against it. It wires together the dictionary (C2), postings
// reader/cache (C10), query parser (C11), spelling/prefix expansion
// (C13), and the executor (C12) behind the small surface a host
// application embeds.
package search

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arcsearch/spimi/bitmap"
	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/errs"
	"github.com/arcsearch/spimi/exec"
	"github.com/arcsearch/spimi/fieldstore"
	"github.com/arcsearch/spimi/metadata"
	"github.com/arcsearch/spimi/postings"
	"github.com/arcsearch/spimi/query"
	"github.com/arcsearch/spimi/spelling"
)

// defaultTopK bounds how many results an unpaged Query computes
// scores for; callers page through them with GetNextN.
const defaultTopK = 1000

// maxPrefixExpansions caps how many prefix-wildcard candidates are
// added as extra scored terms (§4.4 expansion).
const maxPrefixExpansions = 8

// prefixExpansionWeight is the reduced scoring weight given to
// prefix-expansion candidates, so an exact match always outranks a
// same-prefix sibling.
const prefixExpansionWeight = 0.5

// Searcher holds one fully loaded index bundle: the dictionary, the
// postings cache, the document/field catalog, and corpus-wide BM25
// statistics. It is safe to share across goroutines; each Query call
// builds its own executor-facing state.
type Searcher struct {
	indexDir string
	logger   *zap.Logger

	catalog *catalog.Catalog
	table   *dict.Table
	bundle  *metadata.Bundle
	inval   *bitmap.Invalidation

	cache      *postings.Cache
	termReader *postings.TermReader
	corrector  *spelling.Corrector
	prefixIdx  *spelling.PrefixIndex

	fieldStore        *fieldstore.Writer
	numPostingsPerDir uint32
}

// fsFetcher reads postings files straight off the index directory,
// the same on-disk layout the indexer writes (§6).
type fsFetcher struct {
	indexDir     string
	numPlsPerDir uint32
}

func (f fsFetcher) Fetch(plID uint32) ([]byte, error) {
	dir := plID / f.numPlsPerDir
	path := filepath.Join(f.indexDir, fmt.Sprintf("pl_%d", dir), fmt.Sprintf("pl_%d.bin", plID))
	return os.ReadFile(path)
}

// Open loads every file of a completed index bundle from indexDir
// (output_config.json, metadata.bin, dictionary_string.bin) and
// prepares the postings cache, corrector, and prefix index a query
// needs. This is the Go-idiomatic shape of the spec's
// Searcher::new(bundle_bytes, config): rather than requiring the host
// to pre-slurp every file into one buffer, Open reads the bundle
// directory directly, matching how nakama's own storage layer opens a
// directory-rooted resource rather than threading raw bytes through
// its constructors.
func Open(indexDir string, logger *zap.Logger) (*Searcher, error) {
	outCfg, err := config.LoadOutputConfig(filepath.Join(indexDir, "output_config.json"))
	if err != nil {
		return nil, err
	}
	cat := outCfg.Catalog()

	metaBytes, err := os.ReadFile(filepath.Join(indexDir, "metadata.bin"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	bundle, err := metadata.Decode(metaBytes)
	if err != nil {
		return nil, err
	}

	stringStream, err := os.ReadFile(filepath.Join(indexDir, "dictionary_string.bin"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	entries, err := dict.Decode(stringStream, bundle.DictTable)
	if err != nil {
		return nil, err
	}

	inval := bitmap.Decode(bundle.InvalidationVec)
	table := dict.NewTable(entries, bundle.DocInfo.NumDocs)

	numPlsPerDir := outCfg.NumPlsPerDir
	if numPlsPerDir == 0 {
		numPlsPerDir = 1000
	}
	cache := postings.NewCache(fsFetcher{indexDir: indexDir, numPlsPerDir: numPlsPerDir})
	for _, plID := range outCfg.PLsToCache {
		data, err := os.ReadFile(filepath.Join(indexDir, fmt.Sprintf("pl_%d", plID/numPlsPerDir), fmt.Sprintf("pl_%d.bin", plID)))
		if err != nil {
			continue // best-effort warm: a missing file surfaces on first real fetch instead
		}
		cache.Pin(plID, data)
	}
	termReader := postings.NewTermReader(cache, inval)

	s := &Searcher{
		indexDir:          indexDir,
		logger:            logger,
		catalog:           cat,
		table:             table,
		bundle:            bundle,
		inval:             inval,
		cache:             cache,
		termReader:        termReader,
		corrector:         spelling.NewCorrector(table),
		prefixIdx:         spelling.NewPrefixIndex(table.AllTerms()),
		fieldStore:        fieldstore.NewWriter(indexDir, fieldstore.Layout{NumDocsPerStore: outCfg.NumDocsPerStore, NumStoresPerDir: outCfg.NumStoresPerDir}),
		numPostingsPerDir: numPlsPerDir,
	}
	return s, nil
}

// FieldText returns a stored text field for docID, for result
// rendering; it returns ("", false) for fields not stored as text or
// if the record cannot be located.
func (s *Searcher) FieldText(docID uint32, fieldName string) (string, bool) {
	recs, err := s.fieldStore.ReadStore(s.fieldStore.StoreIndexForDoc(docID))
	if err != nil {
		return "", false
	}
	for _, r := range recs {
		if r.DocID == docID {
			text, ok := r.Fields[fieldName]
			return text, ok
		}
	}
	return "", false
}

// expansionInfo records what preprocessing did to a query, surfaced
// via Query.GetQueryParts for UI hinting.
type expansionInfo struct {
	Term        string   `json:"term"`
	Corrected   string   `json:"corrected,omitempty"`
	ExpandedTo  []string `json:"expanded_to,omitempty"`
	WasStopWord bool     `json:"stop_word,omitempty"`
}

// Query parses, preprocesses, and scores raw against the loaded
// bundle, returning a Query the caller pages through with GetNextN.
// Parsing errors (unbalanced quotes, empty groups, oversized terms)
// are surfaced synchronously per §4.4/§7 rather than deferred to the
// first page request.
func (s *Searcher) Query(raw string) (*Query, error) {
	root, err := query.Parse(raw)
	if err != nil {
		return &Query{state: exec.StateParsed, err: err}, err
	}

	var expansions []expansionInfo
	s.preprocess(root, &expansions)
	query.MarkStopWords(root, s.table)
	collectStopWords(root, &expansions)

	q := &Query{
		searcher:   s,
		state:      exec.StatePreprocessed,
		root:       root,
		expansions: expansions,
	}

	ex := &exec.Executor{
		Dict:      s.table,
		Postings:  s.termReader,
		Catalog:   s.catalog,
		DocLens:   s.bundle.DocInfo,
		AvgLens:   s.bundle.DocInfo.AvgLens,
		TotalDocs: s.bundle.DocInfo.NumDocs,
	}
	q.state = exec.StatePostingsFetched
	topK, err := ex.Run(root, defaultTopK)
	if err != nil {
		q.err = err
		return q, err
	}
	q.state = exec.StateProcessed
	q.paginator = exec.NewPaginator(topK.Results())
	q.state = exec.StateStreaming
	return q, nil
}

// preprocess walks the parsed tree applying spelling correction to
// unknown terms and expanding trailing '*' prefix terms into extra
// scored sibling nodes, per §4.4. Expansion candidates are spliced
// into the owning node's Children slice (rather than mutated in
// place) since a term can gain siblings but a tree node cannot gain
// siblings of itself without its parent's slice in hand.
func (s *Searcher) preprocess(n *query.Node, expansions *[]expansionInfo) {
	if n == nil {
		return
	}
	n.Children = s.preprocessChildren(n.Children, expansions)
}

func (s *Searcher) preprocessChildren(children []*query.Node, expansions *[]expansionInfo) []*query.Node {
	out := make([]*query.Node, 0, len(children))
	for _, c := range children {
		if c.Kind != query.NodeTerm {
			s.preprocess(c, expansions)
			out = append(out, c)
			continue
		}
		out = append(out, c)
		if c.Prefix {
			out = append(out, s.expandPrefix(c, expansions)...)
		} else {
			s.correctSpelling(c, expansions)
		}
	}
	return out
}

// expandPrefix resolves a trailing '*' term into its best match (kept
// as the original node, so Must/MustNot semantics on it are
// preserved) plus extra reduced-weight sibling nodes for every other
// candidate, ranked by §4.4's doc-freq proximity rule.
func (s *Searcher) expandPrefix(n *query.Node, expansions *[]expansionInfo) []*query.Node {
	typedInfo, typedKnown := s.table.TermInfo(n.Term)
	candidates := s.prefixIdx.Expand(n.Term, 0)
	if len(candidates) == 0 {
		return nil
	}
	sortByDocFreqProximity(candidates, s.table, typedInfo, typedKnown)
	if len(candidates) > maxPrefixExpansions {
		candidates = candidates[:maxPrefixExpansions]
	}

	n.Term = candidates[0]
	n.Prefix = false

	var siblings []*query.Node
	for _, c := range candidates[1:] {
		siblings = append(siblings, &query.Node{
			Kind:     query.NodeTerm,
			Term:     c,
			Field:    n.Field,
			Modifier: n.Modifier,
			Invert:   n.Invert,
			Weight:   prefixExpansionWeight,
		})
	}
	*expansions = append(*expansions, expansionInfo{Term: n.Term, ExpandedTo: candidates})
	return siblings
}

// correctSpelling replaces n.Term in place with its best dictionary
// match when the typed term has zero postings.
func (s *Searcher) correctSpelling(n *query.Node, expansions *[]expansionInfo) {
	if _, ok := s.table.TermInfo(n.Term); ok || query.IsStaticStopWord(n.Term) {
		return
	}
	if corrected, found := s.corrector.Correct(n.Term); found {
		*expansions = append(*expansions, expansionInfo{Term: n.Term, Corrected: corrected})
		n.Term = corrected
	}
}

func collectStopWords(n *query.Node, expansions *[]expansionInfo) {
	if n == nil {
		return
	}
	if n.Kind == query.NodeTerm {
		if n.StopWord {
			*expansions = append(*expansions, expansionInfo{Term: n.Term, WasStopWord: true})
		}
		return
	}
	for _, c := range n.Children {
		collectStopWords(c, expansions)
	}
}

// sortByDocFreqProximity ranks prefix candidates by closeness of
// doc_freq to the typed term's (u32 max if the typed term is unknown),
// preferring non-stop-words first, per §4.4.
func sortByDocFreqProximity(candidates []string, table *dict.Table, typedInfo dict.TermInfo, typedKnown bool) {
	typedDF := uint32(1<<32 - 1)
	if typedKnown {
		typedDF = typedInfo.DocFreq
	}
	distance := func(term string) uint32 {
		info, ok := table.TermInfo(term)
		if !ok {
			return 1<<32 - 1
		}
		if info.DocFreq > typedDF {
			return info.DocFreq - typedDF
		}
		return typedDF - info.DocFreq
	}
	sortSlice(candidates, func(i, j int) bool {
		si, sj := query.IsStaticStopWord(candidates[i]), query.IsStaticStopWord(candidates[j])
		if si != sj {
			return !si
		}
		return distance(candidates[i]) < distance(candidates[j])
	})
}

func sortSlice(s []string, less func(i, j int) bool) {
	// Simple insertion sort over every prefix match; truncation to
	// maxPrefixExpansions happens only after sorting.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Query is one parsed, scored query, positioned for paging via
// GetNextN. It tracks the lifecycle state machine from §4.4: Parsed ->
// Preprocessed -> PostingsFetched -> Processed -> Streaming.
type Query struct {
	searcher   *Searcher
	state      exec.State
	root       *query.Node
	paginator  *exec.Paginator
	expansions []expansionInfo
	err        error
}

// Err returns the error that ended this query's lifecycle early, if
// any (a QueryMalformed parse failure, or a fatal fetch error per
// §4.4's "fetch errors are fatal for that query").
func (q *Query) Err() error { return q.err }

// encodeRow builds one row of the byte encoding GetNextN streams: a doc id
// plus its enum and numeric column values, letting the caller render
// without deserializing scored fields.
func (q *Query) encodeRow(docID uint32) []byte {
	var buf []byte
	var idBuf [4]byte
	binary.LittleEndian.PutUint32(idBuf[:], docID)
	buf = append(buf, idBuf[:]...)

	info := q.searcher.bundle.DocInfo
	for _, f := range q.searcher.catalog.Fields {
		if f.Storage != catalog.StorageEnum {
			continue
		}
		vals := info.EnumValues[f.ID]
		var v uint32
		if int(docID) < len(vals) {
			v = vals[docID]
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	for _, f := range q.searcher.catalog.Fields {
		if f.Storage != catalog.StorageNumeric {
			continue
		}
		vals := info.NumericVals[f.ID]
		var v int64
		if int(docID) < len(vals) {
			v = vals[docID]
		}
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		buf = append(buf, b[:]...)
	}
	return buf
}

// GetNextN streams the byte encoding of the next n results: each row
// is `[u32 doc_id, enum columns..., i64 columns...]`, concatenated in
// descending-score order, per §4.4's top-k paging contract.
func (q *Query) GetNextN(n int) []byte {
	if q.paginator == nil {
		return nil
	}
	page := q.paginator.Next(n)
	var out []byte
	for _, r := range page {
		out = append(out, q.encodeRow(r.DocID)...)
	}
	return out
}

// queryPartsView is the JSON shape GetQueryParts emits for UI hinting:
// the corrections and prefix expansions preprocessing applied.
type queryPartsView struct {
	Expansions []expansionInfo `json:"expansions"`
}

// GetQueryParts returns a JSON document describing what preprocessing
// did to the raw query (spelling corrections, prefix expansions,
// stop-word reclassification), so a host UI can render "did you mean"
// or highlight matched terms without re-parsing the query itself.
func (q *Query) GetQueryParts() ([]byte, error) {
	return json.Marshal(queryPartsView{Expansions: q.expansions})
}
