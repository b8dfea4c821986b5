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

// Package metadata implements the metadata bundle (C14): a single
// buffer holding the dictionary table, the invalidation bitmap, and
// doc-info statistics (enum/numeric columns, average field lengths),
// each reachable via an offset recorded in a small fixed header.
//
// The front-coded dictionary *string* stream is kept in its own
// companion file (dictionary_string.bin, per the on-disk layout in
// spec §6) rather than folded into this buffer.
package metadata

import (
	"encoding/binary"
	"math"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/codec"
	"github.com/arcsearch/spimi/errs"
)

const headerSize = 12

// DocInfo is the per-corpus statistics block: document counts, average
// and per-document field lengths (for BM25 normalisation), and the
// enum/numeric column data needed to render result rows without
// touching the field store.
type DocInfo struct {
	NumDocs      uint32
	DocIDCounter uint32
	AvgLens      map[uint8]float64
	FieldLens    map[uint8][]uint32 // fieldID -> per-doc token count, indexed by doc id
	EnumValues   map[uint8][]uint32 // fieldID -> per-doc value, indexed by doc id
	NumericVals  map[uint8][]int64  // fieldID -> per-doc value, indexed by doc id
}

// FieldLen implements exec.DocLengths directly over a decoded Bundle's
// DocInfo, sparing callers a separate lookup structure.
func (d DocInfo) FieldLen(docID uint32, fieldID uint8) uint32 {
	vals, ok := d.FieldLens[fieldID]
	if !ok || int(docID) >= len(vals) {
		return 0
	}
	return vals[docID]
}

// Bundle is the fully decoded metadata.bin contents.
type Bundle struct {
	DictTable        []byte
	InvalidationVec  []byte
	DocInfo          DocInfo
}

// Encode lays the three regions out back to back after the fixed
// header and returns the complete buffer.
func Encode(dictTable, invalidationVec []byte, info DocInfo) []byte {
	docInfoBytes := encodeDocInfo(info)

	offDict := uint32(headerSize)
	offInval := offDict + uint32(len(dictTable))
	offDocInfo := offInval + uint32(len(invalidationVec))

	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], offDict)
	binary.LittleEndian.PutUint32(buf[4:8], offInval)
	binary.LittleEndian.PutUint32(buf[8:12], offDocInfo)

	buf = append(buf, dictTable...)
	buf = append(buf, invalidationVec...)
	buf = append(buf, docInfoBytes...)
	return buf
}

// Decode validates the header offsets against buf's length and splits
// out the three regions.
func Decode(buf []byte) (*Bundle, error) {
	if len(buf) < headerSize {
		return nil, errs.ErrCorruptIndex
	}
	offDict := binary.LittleEndian.Uint32(buf[0:4])
	offInval := binary.LittleEndian.Uint32(buf[4:8])
	offDocInfo := binary.LittleEndian.Uint32(buf[8:12])

	if offDict > uint32(len(buf)) || offInval > uint32(len(buf)) || offDocInfo > uint32(len(buf)) {
		return nil, errs.ErrCorruptIndex
	}
	if !(offDict <= offInval && offInval <= offDocInfo) {
		return nil, errs.ErrCorruptIndex
	}

	dictTable := buf[offDict:offInval]
	invalVec := buf[offInval:offDocInfo]
	docInfo, err := decodeDocInfo(buf[offDocInfo:])
	if err != nil {
		return nil, err
	}

	return &Bundle{DictTable: dictTable, InvalidationVec: invalVec, DocInfo: *docInfo}, nil
}

func encodeDocInfo(info DocInfo) []byte {
	var out []byte
	out = codec.AppendUvarint(out, uint64(info.NumDocs))
	out = codec.AppendUvarint(out, uint64(info.DocIDCounter))

	out = codec.AppendUvarint(out, uint64(len(info.AvgLens)))
	for fid := uint8(0); ; fid++ {
		v, ok := info.AvgLens[fid]
		if ok {
			out = append(out, fid)
			var bits [8]byte
			binary.LittleEndian.PutUint64(bits[:], math.Float64bits(v))
			out = append(out, bits[:]...)
		}
		if int(fid) == 255 {
			break
		}
	}

	out = codec.AppendUvarint(out, uint64(len(info.FieldLens)))
	for fid, vals := range info.FieldLens {
		out = append(out, fid)
		out = codec.AppendUvarint(out, uint64(len(vals)))
		w := codec.NewPackedWriter()
		for _, v := range vals {
			w.Write(0, uint64(v))
		}
		col := w.Bytes(0)
		out = codec.AppendUvarint(out, uint64(len(col)))
		out = append(out, col...)
	}

	out = codec.AppendUvarint(out, uint64(len(info.EnumValues)))
	for fid, vals := range info.EnumValues {
		out = append(out, fid)
		out = codec.AppendUvarint(out, uint64(len(vals)))
		w := codec.NewPackedWriter()
		for _, v := range vals {
			w.Write(0, uint64(v))
		}
		col := w.Bytes(0)
		out = codec.AppendUvarint(out, uint64(len(col)))
		out = append(out, col...)
	}

	out = codec.AppendUvarint(out, uint64(len(info.NumericVals)))
	for fid, vals := range info.NumericVals {
		min := int64(0)
		if len(vals) > 0 {
			min = vals[0]
			for _, v := range vals {
				if v < min {
					min = v
				}
			}
		}
		out = append(out, fid)
		var minBuf [8]byte
		binary.LittleEndian.PutUint64(minBuf[:], uint64(min))
		out = append(out, minBuf[:]...)
		out = codec.AppendUvarint(out, uint64(len(vals)))
		w := codec.NewPackedWriter()
		for _, v := range vals {
			w.Write(0, uint64(v-min))
		}
		col := w.Bytes(0)
		out = codec.AppendUvarint(out, uint64(len(col)))
		out = append(out, col...)
	}

	return out
}

func decodeDocInfo(buf []byte) (*DocInfo, error) {
	info := &DocInfo{AvgLens: map[uint8]float64{}, FieldLens: map[uint8][]uint32{}, EnumValues: map[uint8][]uint32{}, NumericVals: map[uint8][]int64{}}

	numDocs, n := codec.Uvarint(buf)
	if n == 0 {
		return nil, errs.ErrCorruptIndex
	}
	buf = buf[n:]
	info.NumDocs = uint32(numDocs)

	docIDCounter, n := codec.Uvarint(buf)
	if n == 0 {
		return nil, errs.ErrCorruptIndex
	}
	buf = buf[n:]
	info.DocIDCounter = uint32(docIDCounter)

	numAvg, n := codec.Uvarint(buf)
	if n == 0 && len(buf) > 0 {
		return nil, errs.ErrCorruptIndex
	}
	buf = buf[n:]
	for i := uint64(0); i < numAvg; i++ {
		if len(buf) < 9 {
			return nil, errs.ErrCorruptIndex
		}
		fid := buf[0]
		v := math.Float64frombits(binary.LittleEndian.Uint64(buf[1:9]))
		info.AvgLens[fid] = v
		buf = buf[9:]
	}

	numFieldLens, n := codec.Uvarint(buf)
	buf = buf[n:]
	for i := uint64(0); i < numFieldLens; i++ {
		if len(buf) < 1 {
			return nil, errs.ErrCorruptIndex
		}
		fid := buf[0]
		buf = buf[1:]
		count, n := codec.Uvarint(buf)
		buf = buf[n:]
		colLen, n := codec.Uvarint(buf)
		buf = buf[n:]
		if uint64(len(buf)) < colLen {
			return nil, errs.ErrCorruptIndex
		}
		r := codec.NewPackedReader(buf[:colLen])
		buf = buf[colLen:]
		vals := make([]uint32, 0, count)
		for j := uint64(0); j < count; j++ {
			v, ok := r.Next()
			if !ok {
				return nil, errs.ErrCorruptIndex
			}
			vals = append(vals, uint32(v))
		}
		info.FieldLens[fid] = vals
	}

	numEnum, n := codec.Uvarint(buf)
	buf = buf[n:]
	for i := uint64(0); i < numEnum; i++ {
		if len(buf) < 1 {
			return nil, errs.ErrCorruptIndex
		}
		fid := buf[0]
		buf = buf[1:]
		count, n := codec.Uvarint(buf)
		buf = buf[n:]
		colLen, n := codec.Uvarint(buf)
		buf = buf[n:]
		if uint64(len(buf)) < colLen {
			return nil, errs.ErrCorruptIndex
		}
		r := codec.NewPackedReader(buf[:colLen])
		buf = buf[colLen:]
		vals := make([]uint32, 0, count)
		for j := uint64(0); j < count; j++ {
			v, ok := r.Next()
			if !ok {
				return nil, errs.ErrCorruptIndex
			}
			vals = append(vals, uint32(v))
		}
		info.EnumValues[fid] = vals
	}

	numNum, n := codec.Uvarint(buf)
	buf = buf[n:]
	for i := uint64(0); i < numNum; i++ {
		if len(buf) < 9 {
			return nil, errs.ErrCorruptIndex
		}
		fid := buf[0]
		min := int64(binary.LittleEndian.Uint64(buf[1:9]))
		buf = buf[9:]
		count, n := codec.Uvarint(buf)
		buf = buf[n:]
		colLen, n := codec.Uvarint(buf)
		buf = buf[n:]
		if uint64(len(buf)) < colLen {
			return nil, errs.ErrCorruptIndex
		}
		r := codec.NewPackedReader(buf[:colLen])
		buf = buf[colLen:]
		vals := make([]int64, 0, count)
		for j := uint64(0); j < count; j++ {
			v, ok := r.Next()
			if !ok {
				return nil, errs.ErrCorruptIndex
			}
			vals = append(vals, min+int64(v))
		}
		info.NumericVals[fid] = vals
	}

	return info, nil
}

// BuildDocInfo assembles a DocInfo from the running corpus Stats and
// the full per-doc catalog.DocInfo slice (used at full-merge time,
// when every document's stats are available in memory).
func BuildDocInfo(stats *catalog.Stats, cat *catalog.Catalog, docIDCounter uint32, docs []catalog.DocInfo) DocInfo {
	info := DocInfo{
		NumDocs:      stats.NumDocs,
		DocIDCounter: docIDCounter,
		AvgLens:      map[uint8]float64{},
		FieldLens:    map[uint8][]uint32{},
		EnumValues:   map[uint8][]uint32{},
		NumericVals:  map[uint8][]int64{},
	}
	for _, f := range cat.Fields {
		if f.Weight > 0 {
			info.AvgLens[f.ID] = stats.AvgLen(f.ID)
			vals := make([]uint32, docIDCounter)
			for _, d := range docs {
				vals[d.DocID] = d.FieldLens[f.ID]
			}
			info.FieldLens[f.ID] = vals
		}
	}

	for _, f := range cat.Fields {
		if f.Storage == catalog.StorageEnum {
			vals := make([]uint32, docIDCounter)
			for _, d := range docs {
				vals[d.DocID] = d.EnumValues[f.ID]
			}
			info.EnumValues[f.ID] = vals
		}
	}
	for _, f := range cat.Fields {
		if f.Storage == catalog.StorageNumeric {
			vals := make([]int64, docIDCounter)
			for _, d := range docs {
				vals[d.DocID] = d.NumericVals[f.ID]
			}
			info.NumericVals[f.ID] = vals
		}
	}
	return info
}
