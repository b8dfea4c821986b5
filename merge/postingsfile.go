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

package merge

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// PostingsFileWriter rotates output postings files at pl_limit byte
// boundaries, bucketing files into subdirectories of numPlsPerDir
// files each, following §4.3's "Merge" rotation rule.
type PostingsFileWriter struct {
	outDir           string
	plLimit          uint32
	numPlsPerDir     uint32
	plCacheThreshold uint32

	curFileID uint32
	curOffset uint32
	curFile   *os.File

	plsToCache []uint32
}

// NewPostingsFileWriter opens file id 0 under outDir/pl_<dir>/pl_<id>.bin.
func NewPostingsFileWriter(outDir string, plLimit, numPlsPerDir, plCacheThreshold uint32) (*PostingsFileWriter, error) {
	if plLimit == 0 {
		plLimit = math.MaxUint32
	}
	if numPlsPerDir == 0 {
		numPlsPerDir = 1000
	}
	w := &PostingsFileWriter{
		outDir:           outDir,
		plLimit:          plLimit,
		numPlsPerDir:     numPlsPerDir,
		plCacheThreshold: plCacheThreshold,
	}
	if err := w.openFile(0); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *PostingsFileWriter) path(fileID uint32) string {
	dir := filepath.Join(w.outDir, fmt.Sprintf("pl_%d", fileID/w.numPlsPerDir))
	return filepath.Join(dir, fmt.Sprintf("pl_%d.bin", fileID))
}

func (w *PostingsFileWriter) openFile(fileID uint32) error {
	p := w.path(fileID)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	w.curFile = f
	w.curFileID = fileID
	w.curOffset = 0
	return nil
}

// WriteTerm writes one term's aggregated postings payload, rotating to
// a new file first if appending it would exceed pl_limit. It returns
// the file id and byte offset the payload landed at, and whether a
// rotation happened immediately before this write. The dictionary's
// file-rotation sentinel row does not depend on this flag: dict.Encode
// derives it from the jump in file id.
func (w *PostingsFileWriter) WriteTerm(payload []byte) (fileID, offset uint32, rotated bool, err error) {
	if w.curOffset > 0 && uint64(w.curOffset)+uint64(len(payload)) > uint64(w.plLimit) {
		if err := w.rotate(); err != nil {
			return 0, 0, false, err
		}
		rotated = true
	}

	n, err := w.curFile.Write(payload)
	if err != nil {
		return 0, 0, false, err
	}

	fileID = w.curFileID
	offset = w.curOffset
	w.curOffset += uint32(n)
	return fileID, offset, rotated, nil
}

func (w *PostingsFileWriter) rotate() error {
	w.recordCacheEligibility()
	if err := w.curFile.Close(); err != nil {
		return err
	}
	return w.openFile(w.curFileID + 1)
}

func (w *PostingsFileWriter) recordCacheEligibility() {
	if w.curOffset >= w.plCacheThreshold {
		w.plsToCache = append(w.plsToCache, w.curFileID)
	}
}

// Close flushes the final file and returns the ids of every postings
// file whose finalised size met pl_cache_threshold.
func (w *PostingsFileWriter) Close() ([]uint32, error) {
	w.recordCacheEligibility()
	if err := w.curFile.Close(); err != nil {
		return nil, err
	}
	return w.plsToCache, nil
}
