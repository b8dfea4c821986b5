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

// Package catalog holds the document/field catalog (C3): field ids,
// scoring weights, BM25 parameters, storage kind, enum ids, and the
// per-doc field-length statistics BM25 normalisation needs.
package catalog

import "sort"

// Storage describes how a field's source text is retained, if at all.
type Storage int

const (
	StorageNone Storage = iota
	StorageText
	StorageEnum
	StorageNumeric
)

// FieldConfig is the user-facing, unordered description of one field
// from fields_config.fields in the JSON config.
type FieldConfig struct {
	Name    string
	Storage Storage
	Weight  float32
	K       float32
	B       float32
}

// Field is a resolved catalog entry: a unique name, a byte field_id
// assigned in descending-weight (ties by name) order, and its scoring
// and storage properties.
type Field struct {
	ID      uint8
	Name    string
	Weight  float32
	K       float32
	B       float32
	Storage Storage
	EnumID  int // -1 unless Storage == StorageEnum
}

// Catalog is the immutable, ordered field table for one index.
type Catalog struct {
	Fields     []Field
	byName     map[string]int
	numScored  int
	numEnums   int
}

// Build assigns field ids to configs in the order required by the
// invariant: descending weight, ties broken by name ascending. This
// also determines on-disk ordering, so the result must be deterministic
// for a given input set.
func Build(configs []FieldConfig) *Catalog {
	sorted := make([]FieldConfig, len(configs))
	copy(sorted, configs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight > sorted[j].Weight
		}
		return sorted[i].Name < sorted[j].Name
	})

	c := &Catalog{byName: make(map[string]int, len(sorted))}
	enumID := 0
	for i, fc := range sorted {
		f := Field{
			ID:      uint8(i),
			Name:    fc.Name,
			Weight:  fc.Weight,
			K:       fc.K,
			B:       fc.B,
			Storage: fc.Storage,
			EnumID:  -1,
		}
		if fc.Weight > 0 {
			c.numScored++
		}
		if fc.Storage == StorageEnum {
			f.EnumID = enumID
			enumID++
		}
		c.Fields = append(c.Fields, f)
		c.byName[fc.Name] = i
	}
	c.numEnums = enumID
	return c
}

// FromFields rebuilds a Catalog from an already-assigned field list,
// the form the search runtime loads back out of output_config.json.
// Unlike Build, it trusts the incoming IDs rather than re-deriving
// them, since they were already chosen once by a prior indexing run.
func FromFields(fields []Field) *Catalog {
	c := &Catalog{byName: make(map[string]int, len(fields)), Fields: fields}
	maxEnum := -1
	for i, f := range fields {
		c.byName[f.Name] = i
		if f.Weight > 0 {
			c.numScored++
		}
		if f.Storage == StorageEnum && f.EnumID > maxEnum {
			maxEnum = f.EnumID
		}
	}
	c.numEnums = maxEnum + 1
	return c
}

// ByName resolves a field by its config name.
func (c *Catalog) ByName(name string) (Field, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Field{}, false
	}
	return c.Fields[i], true
}

// ByID resolves a field by its assigned id.
func (c *Catalog) ByID(id uint8) (Field, bool) {
	if int(id) >= len(c.Fields) {
		return Field{}, false
	}
	return c.Fields[id], true
}

// NumScoredFields returns the count of fields with weight > 0, used by
// the soft-disjunction scorer's `num_scored_fields - 1` divisor.
func (c *Catalog) NumScoredFields() int {
	return c.numScored
}

// NumEnums returns the number of enum-storage fields.
func (c *Catalog) NumEnums() int {
	return c.numEnums
}

// DocInfo accumulates the per-doc statistics the search runtime needs:
// field lengths (token counts) indexed by field id, enum values, and
// numeric values. Lengths feed BM25's avg_len(f) normalisation.
type DocInfo struct {
	DocID       uint32
	FieldLens   map[uint8]uint32
	EnumValues  map[uint8]uint32
	NumericVals map[uint8]int64
}

// Stats is the running aggregate of field-length totals used to derive
// avg_len(f) across the whole corpus, plus per-field numeric minima for
// delta-encoding numeric columns.
type Stats struct {
	NumDocs      uint32
	lenTotals    map[uint8]uint64
	lenCounts    map[uint8]uint32
	numericMins  map[uint8]int64
	numericSeen  map[uint8]bool
}

// NewStats returns an empty running aggregate.
func NewStats() *Stats {
	return &Stats{
		lenTotals:   make(map[uint8]uint64),
		lenCounts:   make(map[uint8]uint32),
		numericMins: make(map[uint8]int64),
		numericSeen: make(map[uint8]bool),
	}
}

// Add folds one document's stats into the running aggregate.
func (s *Stats) Add(d DocInfo) {
	s.NumDocs++
	for fid, l := range d.FieldLens {
		s.lenTotals[fid] += uint64(l)
		s.lenCounts[fid]++
	}
	for fid, v := range d.NumericVals {
		if !s.numericSeen[fid] || v < s.numericMins[fid] {
			s.numericMins[fid] = v
			s.numericSeen[fid] = true
		}
	}
}

// AvgLen returns the corpus-wide average token length of field fid.
func (s *Stats) AvgLen(fid uint8) float64 {
	count := s.lenCounts[fid]
	if count == 0 {
		return 0
	}
	return float64(s.lenTotals[fid]) / float64(count)
}

// Min returns the minimum observed numeric value for field fid, used
// to delta-encode the numeric column.
func (s *Stats) Min(fid uint8) int64 {
	return s.numericMins[fid]
}
