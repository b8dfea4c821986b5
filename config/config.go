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

// Package config implements the JSON-based index configuration (§6):
// size presets, the field catalog, and the knobs that size SPIMI
// blocks, postings files, and field-store chunking.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/arcsearch/spimi/catalog"
	"github.com/arcsearch/spimi/errs"
)

// Preset names a built-in size tier; each fills in the field-store,
// postings, and caching defaults sized for that corpus scale.
type Preset string

const (
	PresetSmall  Preset = "small"
	PresetMedium Preset = "medium"
	PresetLarge  Preset = "large"
)

// FieldSpec is one entry of fields_config.fields. A null value in the
// JSON document (an entry with no body) resolves to every field
// default below.
type FieldSpec struct {
	Storage string  `json:"storage"` // "none" | "text" | "enum" | "numeric"
	Weight  float32 `json:"weight"`
	K       float32 `json:"k"`
	B       float32 `json:"b"`
}

// FieldsConfig is the fields_config object: field-store chunking plus
// the name-keyed field catalog.
type FieldsConfig struct {
	NumDocsPerStore     uint32                `json:"num_docs_per_store"`
	NumStoresPerDir     uint32                `json:"num_stores_per_dir"`
	CacheAllFieldStores *bool                 `json:"cache_all_field_stores"`
	Fields              map[string]*FieldSpec `json:"fields"`
}

// IndexingConfig is the indexing_config object: SPIMI block sizing,
// postings-file limits, and the source-tree loader selection.
type IndexingConfig struct {
	NumThreads       int                        `json:"num_threads"`
	NumDocsPerBlock  uint32                     `json:"num_docs_per_block"`
	PLLimit          uint32                     `json:"pl_limit"`
	PLCacheThreshold uint32                     `json:"pl_cache_threshold"`
	NumPlsPerDir     uint32                     `json:"num_pls_per_dir"`
	WithPositions    *bool                      `json:"with_positions"`
	Exclude          []string                   `json:"exclude"`
	Include          []string                   `json:"include"`
	Loaders          map[string]json.RawMessage `json:"loaders"`
}

// LangConfig is the lang_config object: the tokenizer/normalizer
// language and any language-specific options. Both are kept as parsed;
// indexing always uses the ascii tokenizer and reads no option.
type LangConfig struct {
	Lang    string                     `json:"lang"`
	Options map[string]json.RawMessage `json:"options"`
}

// Config is the full JSON configuration document.
type Config struct {
	Preset         Preset         `json:"preset"`
	FieldsConfig   FieldsConfig   `json:"fields_config"`
	IndexingConfig IndexingConfig `json:"indexing_config"`
	LangConfig     LangConfig     `json:"lang_config"`

	// LogLevel is set from the --log-level CLI flag, never from the
	// JSON document; it has no wire-format key.
	LogLevel string `json:"-"`
}

// presetDefaults holds the handful of knobs each preset documents an
// override for; every other knob uses the single base default set in
// fillDefaults regardless of preset.
var presetDefaults = map[Preset]struct {
	numDocsPerStore     uint32
	numStoresPerDir     uint32
	cacheAllFieldStores bool
	plLimit             uint32
	plCacheThreshold    uint32
}{
	// small: one big field-store file, all cached, unlimited pl_limit.
	PresetSmall: {
		numDocsPerStore:     math.MaxUint32,
		numStoresPerDir:     1,
		cacheAllFieldStores: true,
		plLimit:             math.MaxUint32,
		plCacheThreshold:    0,
	},
	// medium: ~4MB pl_limit, no per-field caching.
	PresetMedium: {
		numDocsPerStore:     100_000_000,
		numStoresPerDir:     1000,
		cacheAllFieldStores: false,
		plLimit:             4 << 20,
		plCacheThreshold:    math.MaxUint32,
	},
	// large: 75000-byte pl_limit, 1MB pl-cache threshold, field stores
	// split one document per store.
	PresetLarge: {
		numDocsPerStore:     1,
		numStoresPerDir:     1000,
		cacheAllFieldStores: false,
		plLimit:             75_000,
		plCacheThreshold:    1 << 20,
	},
}

// Load reads and validates a Config from r, filling any zero-valued
// field from its preset's defaults (preset "small" if unset, per §6).
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigInvalid, err)
	}
	if c.Preset == "" {
		c.Preset = PresetSmall
	}
	def, ok := presetDefaults[c.Preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", errs.ErrConfigInvalid, c.Preset)
	}
	fillDefaults(&c, def)
	if c.IndexingConfig.NumThreads <= 0 {
		c.IndexingConfig.NumThreads = runtime.NumCPU() - 1
		if c.IndexingConfig.NumThreads < 1 {
			c.IndexingConfig.NumThreads = 1
		}
	}
	if c.LangConfig.Lang == "" {
		c.LangConfig.Lang = "ascii"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.FieldsConfig.Fields) == 0 {
		return nil, fmt.Errorf("%w: fields_config.fields must not be empty", errs.ErrConfigInvalid)
	}
	return &c, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigInvalid, err)
	}
	defer f.Close()
	return Load(f)
}

func fillDefaults(c *Config, def struct {
	numDocsPerStore     uint32
	numStoresPerDir     uint32
	cacheAllFieldStores bool
	plLimit             uint32
	plCacheThreshold    uint32
}) {
	if c.FieldsConfig.NumDocsPerStore == 0 {
		c.FieldsConfig.NumDocsPerStore = def.numDocsPerStore
	}
	if c.FieldsConfig.NumStoresPerDir == 0 {
		c.FieldsConfig.NumStoresPerDir = def.numStoresPerDir
	}
	if c.FieldsConfig.CacheAllFieldStores == nil {
		v := def.cacheAllFieldStores
		c.FieldsConfig.CacheAllFieldStores = &v
	}
	if c.IndexingConfig.PLLimit == 0 {
		c.IndexingConfig.PLLimit = def.plLimit
	}
	if c.IndexingConfig.PLCacheThreshold == 0 {
		c.IndexingConfig.PLCacheThreshold = def.plCacheThreshold
	}
	if c.IndexingConfig.NumDocsPerBlock == 0 {
		c.IndexingConfig.NumDocsPerBlock = 1000
	}
	if c.IndexingConfig.NumPlsPerDir == 0 {
		c.IndexingConfig.NumPlsPerDir = 1000
	}
	if c.IndexingConfig.WithPositions == nil {
		t := true
		c.IndexingConfig.WithPositions = &t
	}
}

// BuildCatalog resolves the JSON fields_config into a catalog.Catalog.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	specs := make([]catalog.FieldConfig, 0, len(c.FieldsConfig.Fields))
	for name, fs := range c.FieldsConfig.Fields {
		if fs == nil {
			fs = &FieldSpec{}
		}
		storage, err := parseStorage(fs.Storage)
		if err != nil {
			return nil, err
		}
		k, b := fs.K, fs.B
		if k == 0 {
			k = 1.2
		}
		if b == 0 {
			b = 0.75
		}
		specs = append(specs, catalog.FieldConfig{
			Name:    name,
			Storage: storage,
			Weight:  fs.Weight,
			K:       k,
			B:       b,
		})
	}
	return catalog.Build(specs), nil
}

// OutputConfig is the serialized runtime config + resolved field
// catalog written to output_config.json (§6 on-disk layout) at the end
// of a run, so the search runtime can reopen an index without access
// to the original fields_config JSON.
type OutputConfig struct {
	Preset           Preset `json:"preset"`
	NumPlsPerDir     uint32 `json:"num_pls_per_dir"`
	PLCacheThreshold uint32 `json:"pl_cache_threshold"`
	NumDocsPerStore  uint32 `json:"num_docs_per_store"`
	NumStoresPerDir  uint32 `json:"num_stores_per_dir"`
	// PLsToCache lists the postings-file ids whose finalised size met
	// PLCacheThreshold, so the search runtime can pin them in its LRU
	// at load time instead of waiting for a cold-cache first query.
	PLsToCache []uint32        `json:"pls_to_cache"`
	Fields     []catalog.Field `json:"fields"`
}

// BuildOutputConfig captures the settings a search-time reopen needs
// from a completed run's Config and resolved Catalog.
func BuildOutputConfig(c *Config, cat *catalog.Catalog, plsToCache []uint32) OutputConfig {
	return OutputConfig{
		Preset:           c.Preset,
		NumPlsPerDir:     c.IndexingConfig.NumPlsPerDir,
		PLCacheThreshold: c.IndexingConfig.PLCacheThreshold,
		NumDocsPerStore:  c.FieldsConfig.NumDocsPerStore,
		NumStoresPerDir:  c.FieldsConfig.NumStoresPerDir,
		PLsToCache:       plsToCache,
		Fields:           cat.Fields,
	}
}

// Save writes oc as compact JSON to path.
func (oc OutputConfig) Save(path string) error {
	data, err := json.Marshal(oc)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadOutputConfig reads output_config.json back from path.
func LoadOutputConfig(path string) (*OutputConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFatal, err)
	}
	var oc OutputConfig
	if err := json.Unmarshal(data, &oc); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptIndex, err)
	}
	return &oc, nil
}

// Catalog reconstructs the catalog.Catalog this output config
// describes, trusting the field ids a prior run already assigned.
func (oc OutputConfig) Catalog() *catalog.Catalog {
	return catalog.FromFields(oc.Fields)
}

func parseStorage(s string) (catalog.Storage, error) {
	switch s {
	case "", "none":
		return catalog.StorageNone, nil
	case "text":
		return catalog.StorageText, nil
	case "enum":
		return catalog.StorageEnum, nil
	case "numeric":
		return catalog.StorageNumeric, nil
	default:
		return 0, fmt.Errorf("%w: unknown field storage %q", errs.ErrConfigInvalid, s)
	}
}
