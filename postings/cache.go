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

package postings

import (
	lru "github.com/hashicorp/golang-lru"
)

// CacheCapacity is the fixed number of raw postings files kept warm
// between queries.
const CacheCapacity = 8

// Fetcher loads the raw bytes of one postings file by id. Callers
// supply a filesystem- or bundle-backed implementation.
type Fetcher interface {
	Fetch(plID uint32) ([]byte, error)
}

// Cache is an LRU of raw postings-file bytes, avoiding repeated disk
// reads for hot files across queries.
type Cache struct {
	fetcher Fetcher
	lru     *lru.Cache
}

// NewCache wraps fetcher with an LRU of CacheCapacity raw files.
func NewCache(fetcher Fetcher) *Cache {
	c, err := lru.New(CacheCapacity)
	if err != nil {
		// Only fails for a non-positive size, which CacheCapacity never is.
		panic(err)
	}
	return &Cache{fetcher: fetcher, lru: c}
}

// Get returns postings file plID's raw bytes, fetching and caching on
// a miss.
func (c *Cache) Get(plID uint32) ([]byte, error) {
	if v, ok := c.lru.Get(plID); ok {
		return v.([]byte), nil
	}
	data, err := c.fetcher.Fetch(plID)
	if err != nil {
		return nil, err
	}
	c.lru.Add(plID, data)
	return data, nil
}

// Pin loads a postings file into the cache ahead of any query, used for
// the pl_cache_threshold files at index load. A pinned entry is an
// ordinary LRU entry and is evicted under the same policy as any other.
func (c *Cache) Pin(plID uint32, data []byte) {
	c.lru.Add(plID, data)
}
