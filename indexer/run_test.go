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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/dict"
	"github.com/arcsearch/spimi/metadata"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(strings.NewReader(`{
		"preset": "small",
		"fields_config": {
			"fields": {
				"title": {"storage": "text", "weight": 2.0},
				"body": {"storage": "text", "weight": 1.0}
			}
		}
	}`))
	require.NoError(t, err)
	cfg.IndexingConfig.NumDocsPerBlock = 2
	return cfg
}

func writeSourceDoc(t *testing.T, sourceDir, name, title, body string) {
	t.Helper()
	path := filepath.Join(sourceDir, name)
	content := `{"title":"` + title + `","body":"` + body + `"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readBundle(t *testing.T, outDir string) *metadata.Bundle {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(outDir, "metadata.bin"))
	require.NoError(t, err)
	bundle, err := metadata.Decode(raw)
	require.NoError(t, err)
	return bundle
}

func readDictTable(t *testing.T, outDir string, bundle *metadata.Bundle) *dict.Table {
	t.Helper()
	stringStream, err := os.ReadFile(filepath.Join(outDir, "dictionary_string.bin"))
	require.NoError(t, err)
	entries, err := dict.Decode(stringStream, bundle.DictTable)
	require.NoError(t, err)
	return dict.NewTable(entries, bundle.DocInfo.NumDocs)
}

func TestRunFullBuildProducesIndex(t *testing.T) {
	sourceDir := t.TempDir()
	outDir := t.TempDir()

	writeSourceDoc(t, sourceDir, "alpha.json", "first report", "contents about rockets")
	writeSourceDoc(t, sourceDir, "beta.json", "second report", "contents about turtles")

	err := Run(RunOptions{
		SourceDir: sourceDir,
		OutputDir: outDir,
		Config:    testConfig(t),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(outDir, "metadata.bin"))
	require.FileExists(t, filepath.Join(outDir, "dictionary_string.bin"))
	require.FileExists(t, filepath.Join(outDir, "_incremental_info.json"))

	bundle := readBundle(t, outDir)
	require.Equal(t, uint32(2), bundle.DocInfo.NumDocs)

	table := readDictTable(t, outDir, bundle)
	_, ok := table.TermInfo("rockets")
	require.True(t, ok)
	_, ok = table.TermInfo("turtles")
	require.True(t, ok)
}

func TestRunIncrementalInvalidatesChangedFile(t *testing.T) {
	sourceDir := t.TempDir()
	outDir := t.TempDir()

	writeSourceDoc(t, sourceDir, "alpha.json", "first report", "contents about rockets")
	writeSourceDoc(t, sourceDir, "beta.json", "second report", "contents about turtles")

	baseOpts := RunOptions{
		SourceDir:              sourceDir,
		OutputDir:              outDir,
		Config:                 testConfig(t),
		Logger:                 zap.NewNop(),
		Incremental:            true,
		IncrementalContentHash: true,
		PreserveOutputFolder:   true,
	}

	require.NoError(t, Run(baseOpts))

	bundleBefore := readBundle(t, outDir)
	require.Equal(t, uint32(2), bundleBefore.DocInfo.NumDocs)

	// Rewrite alpha.json with different content; beta.json is untouched.
	writeSourceDoc(t, sourceDir, "alpha.json", "first report revised", "contents about satellites")

	require.NoError(t, Run(baseOpts))

	bundleAfter := readBundle(t, outDir)
	// Two surviving docs (one carried over from beta, one freshly
	// indexed from the revised alpha) plus the invalidated original
	// alpha doc id still counted in the doc id space.
	require.GreaterOrEqual(t, bundleAfter.DocInfo.DocIDCounter, uint32(2))

	table := readDictTable(t, outDir, bundleAfter)
	_, ok := table.TermInfo("satellites")
	require.True(t, ok, "revised term should be indexed")
	_, ok = table.TermInfo("turtles")
	require.True(t, ok, "untouched file's terms should survive via carry-over")
}

func TestRunIncrementalInvalidatesRemovedFile(t *testing.T) {
	sourceDir := t.TempDir()
	outDir := t.TempDir()

	writeSourceDoc(t, sourceDir, "alpha.json", "first report", "contents about rockets")
	writeSourceDoc(t, sourceDir, "beta.json", "second report", "contents about turtles")

	baseOpts := RunOptions{
		SourceDir:              sourceDir,
		OutputDir:              outDir,
		Config:                 testConfig(t),
		Logger:                 zap.NewNop(),
		Incremental:            true,
		IncrementalContentHash: true,
		PreserveOutputFolder:   true,
	}
	require.NoError(t, Run(baseOpts))

	require.NoError(t, os.Remove(filepath.Join(sourceDir, "alpha.json")))
	require.NoError(t, Run(baseOpts))

	bundle := readBundle(t, outDir)
	table := readDictTable(t, outDir, bundle)
	_, ok := table.TermInfo("rockets")
	require.False(t, ok, "removed file's terms should not survive")
	_, ok = table.TermInfo("turtles")
	require.True(t, ok, "untouched file's terms should survive")
}
