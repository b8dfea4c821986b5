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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcsearch/spimi/errs"
)

func TestLoadJSONFileSingleObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"hello","body":"world"}`), 0644))

	docs, err := LoadJSONFile(dir, path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "a.json", docs[0].RelPath)
	require.Equal(t, "hello", docs[0].Fields["title"])
}

func TestLoadJSONFileArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "b.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"one"},{"title":"two"}]`), 0644))

	docs, err := LoadJSONFile(dir, path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "sub/b.json", docs[0].RelPath)
	require.Equal(t, "one", docs[0].Fields["title"])
	require.Equal(t, "two", docs[1].Fields["title"])
}

func TestLoadJSONFileSkipsNonJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := LoadJSONFile(dir, path)
	require.ErrorIs(t, err, errs.ErrLoaderSkipped)
}

func TestWalkSourceFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.json", "a.json", "m.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0644))
	}

	files, err := WalkSourceFiles(dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, filepath.Join(dir, "a.json"), files[0])
	require.Equal(t, filepath.Join(dir, "m.json"), files[1])
	require.Equal(t, filepath.Join(dir, "z.json"), files[2])
}

func TestWalkSourceFilesExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "draft.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0644))
	}

	files, err := WalkSourceFiles(dir, nil, []string{"draft.json"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, filepath.Join(dir, "a.json"), files[0])
	require.Equal(t, filepath.Join(dir, "b.json"), files[1])
}

func TestWalkSourceFilesIncludeGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0644))
	}

	files, err := WalkSourceFiles(dir, []string{"*.json"}, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
}
