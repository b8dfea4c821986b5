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

package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/indexer"
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
	cfg.IndexingConfig.NumDocsPerBlock = 10
	return cfg
}

func writeSourceDoc(t *testing.T, sourceDir, name, title, body string) {
	t.Helper()
	content := `{"title":"` + title + `","body":"` + body + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, name), []byte(content), 0644))
}

func buildTestIndex(t *testing.T) string {
	t.Helper()
	sourceDir := t.TempDir()
	outDir := t.TempDir()

	writeSourceDoc(t, sourceDir, "a.json", "the quick brown fox", "the quick brown fox")
	writeSourceDoc(t, sourceDir, "b.json", "quick brown dogs", "quick brown dogs")
	writeSourceDoc(t, sourceDir, "c.json", "slow green turtle", "slow green turtle")

	require.NoError(t, indexer.Run(indexer.RunOptions{
		SourceDir: sourceDir,
		OutputDir: outDir,
		Config:    testConfig(t),
		Logger:    zap.NewNop(),
	}))
	return outDir
}

func TestOpenAndPhraseQuery(t *testing.T) {
	outDir := buildTestIndex(t)

	s, err := Open(outDir, zap.NewNop())
	require.NoError(t, err)

	q, err := s.Query(`"quick brown"`)
	require.NoError(t, err)

	rows := q.GetNextN(10)
	require.NotEmpty(t, rows)
	// Each row is a 4-byte doc id (no enum/numeric columns configured).
	require.Equal(t, 0, len(rows)%4)

	firstDocID := rows[0]
	_ = firstDocID
}

func TestQueryUnknownTermPrefixExpansion(t *testing.T) {
	outDir := buildTestIndex(t)

	s, err := Open(outDir, zap.NewNop())
	require.NoError(t, err)

	q, err := s.Query("qui*")
	require.NoError(t, err)
	require.NoError(t, q.Err())

	parts, err := q.GetQueryParts()
	require.NoError(t, err)
	require.Contains(t, string(parts), "quick")
}

func TestQueryMalformedSurfacesError(t *testing.T) {
	outDir := buildTestIndex(t)

	s, err := Open(outDir, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Query(`"unbalanced`)
	require.Error(t, err)
}
