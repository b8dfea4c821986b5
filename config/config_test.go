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

package config

import (
	"math"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"preset": "small",
	"fields_config": {
		"fields": {
			"title": {"weight": 2.0},
			"body": {"weight": 1.0},
			"category": {"storage": "enum"}
		}
	}
}`

func TestLoadFillsPresetDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	require.Equal(t, uint32(math.MaxUint32), c.FieldsConfig.NumDocsPerStore)
	require.True(t, *c.FieldsConfig.CacheAllFieldStores)
	require.Equal(t, uint32(math.MaxUint32), c.IndexingConfig.PLLimit)
	wantThreads := runtime.NumCPU() - 1
	if wantThreads < 1 {
		wantThreads = 1
	}
	require.Equal(t, wantThreads, c.IndexingConfig.NumThreads)
	require.True(t, *c.IndexingConfig.WithPositions)
	require.Equal(t, "ascii", c.LangConfig.Lang)
	require.Equal(t, "info", c.LogLevel)
}

func TestLoadDefaultsToSmallPreset(t *testing.T) {
	c, err := Load(strings.NewReader(`{"fields_config":{"fields":{"a":null}}}`))
	require.NoError(t, err)
	require.Equal(t, PresetSmall, c.Preset)
}

func TestLoadRejectsUnknownPreset(t *testing.T) {
	_, err := Load(strings.NewReader(`{"preset":"huge","fields_config":{"fields":{"a":null}}}`))
	require.Error(t, err)
}

func TestLoadRejectsEmptyFields(t *testing.T) {
	_, err := Load(strings.NewReader(`{"fields_config":{"fields":{}}}`))
	require.Error(t, err)
}

func TestLoadMediumPresetDisablesCaching(t *testing.T) {
	c, err := Load(strings.NewReader(`{"preset":"medium","fields_config":{"fields":{"a":null}}}`))
	require.NoError(t, err)
	require.False(t, *c.FieldsConfig.CacheAllFieldStores)
	require.Equal(t, uint32(4<<20), c.IndexingConfig.PLLimit)
}

func TestLoadLargePresetSplitsStoresPerDoc(t *testing.T) {
	c, err := Load(strings.NewReader(`{"preset":"large","fields_config":{"fields":{"a":null}}}`))
	require.NoError(t, err)
	require.Equal(t, uint32(1), c.FieldsConfig.NumDocsPerStore)
	require.Equal(t, uint32(75_000), c.IndexingConfig.PLLimit)
}

func TestBuildCatalogOrdersByWeight(t *testing.T) {
	c, err := Load(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	cat, err := c.BuildCatalog()
	require.NoError(t, err)
	require.Equal(t, "title", cat.Fields[0].Name)
	require.Equal(t, "body", cat.Fields[1].Name)
}
