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

package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleTerms(t *testing.T) {
	root, err := Parse("hello world")
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	require.Equal(t, "hello", root.Children[0].Term)
	require.Equal(t, "world", root.Children[1].Term)
}

func TestParseFieldScope(t *testing.T) {
	root, err := Parse("title:golang")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	require.Equal(t, "title", root.Children[0].Field)
	require.Equal(t, "golang", root.Children[0].Term)
}

func TestParsePhrase(t *testing.T) {
	root, err := Parse(`"quick brown fox"`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	require.Equal(t, NodePhrase, root.Children[0].Kind)
	require.Equal(t, []string{"quick", "brown", "fox"}, root.Children[0].Phrase)
}

func TestParsePrefixWildcard(t *testing.T) {
	root, err := Parse("data*")
	require.NoError(t, err)
	require.True(t, root.Children[0].Prefix)
	require.Equal(t, "data", root.Children[0].Term)
}

func TestParseModifiers(t *testing.T) {
	root, err := Parse("+must -mustnot ~invert")
	require.NoError(t, err)
	require.Equal(t, ModMust, root.Children[0].Modifier)
	require.Equal(t, ModMustNot, root.Children[1].Modifier)
	require.True(t, root.Children[2].Invert)
}

func TestParseGroup(t *testing.T) {
	root, err := Parse("(a b) -c")
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	require.Equal(t, NodeGroup, root.Children[0].Kind)
	require.Len(t, root.Children[0].Children, 2)
	require.Equal(t, ModMustNot, root.Children[1].Modifier)
}

func TestParseUnterminatedGroupErrors(t *testing.T) {
	_, err := Parse("(a b")
	require.Error(t, err)
}

func TestParseUnterminatedPhraseErrors(t *testing.T) {
	_, err := Parse(`"unbalanced`)
	require.Error(t, err)
}

type fakeLookup map[string][2]uint32

func (f fakeLookup) DocFreq(term string) (uint32, uint32, bool) {
	v, ok := f[term]
	if !ok {
		return 0, 0, false
	}
	return v[0], v[1], true
}

func TestMarkStopWordsStaticList(t *testing.T) {
	root, err := Parse("the cat")
	require.NoError(t, err)
	MarkStopWords(root, nil)
	require.True(t, root.Children[0].StopWord)
	require.False(t, root.Children[1].StopWord)
}

func TestMarkStopWordsIDFThreshold(t *testing.T) {
	root, err := Parse("common rare")
	require.NoError(t, err)
	lookup := fakeLookup{
		"common": {9000, 10000},
		"rare":   {2, 10000},
	}
	MarkStopWords(root, lookup)
	require.True(t, root.Children[0].StopWord)
	require.False(t, root.Children[1].StopWord)
}
