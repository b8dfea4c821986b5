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

package spelling

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcsearch/spimi/dict"
)

// fakeDict pairs each term with a doc_freq for exercising the tiebreak;
// terms with no explicit weight default to doc_freq 1.
type fakeDict map[string]uint32

func (f fakeDict) TermFreqs() []dict.TermFreq {
	out := make([]dict.TermFreq, 0, len(f))
	for term, df := range f {
		out = append(out, dict.TermFreq{Term: term, DocFreq: df})
	}
	return out
}

func flatDict(terms ...string) fakeDict {
	f := make(fakeDict, len(terms))
	for _, term := range terms {
		f[term] = 1
	}
	return f
}

func TestCorrectFindsCloseMatch(t *testing.T) {
	c := NewCorrector(flatDict("golang", "python", "rust"))
	got, ok := c.Correct("golnag")
	require.True(t, ok)
	require.Equal(t, "golang", got)
}

func TestCorrectNoMatchWithinBudget(t *testing.T) {
	c := NewCorrector(flatDict("golang", "python", "rust"))
	_, ok := c.Correct("zzzzzzzzzzzz")
	require.False(t, ok)
}

func TestCorrectCachesResult(t *testing.T) {
	c := NewCorrector(flatDict("golang"))
	got1, ok1 := c.Correct("golnag")
	got2, ok2 := c.Correct("golnag")
	require.Equal(t, ok1, ok2)
	require.Equal(t, got1, got2)
}

func TestCorrectBreaksTiesByDocFreq(t *testing.T) {
	// "cart" and "cast" are both edit-distance 1 from "cant"; the
	// candidate with the higher doc_freq must win, deterministically
	// regardless of map iteration order.
	c := NewCorrector(fakeDict{"cart": 5, "cast": 50})
	got, ok := c.Correct("cant")
	require.True(t, ok)
	require.Equal(t, "cast", got)
}

func TestCorrectBreaksTiesByDocFreqReversed(t *testing.T) {
	c := NewCorrector(fakeDict{"cart": 50, "cast": 5})
	got, ok := c.Correct("cant")
	require.True(t, ok)
	require.Equal(t, "cart", got)
}

func TestMaxEditDistanceScalesWithLength(t *testing.T) {
	require.Equal(t, 1, maxEditDistance(3))
	require.Equal(t, 2, maxEditDistance(7))
	require.Equal(t, 3, maxEditDistance(12))
}

func TestPrefixExpand(t *testing.T) {
	idx := NewPrefixIndex([]string{"cat", "car", "dog", "card", "care"})
	got := idx.Expand("car", 0)
	require.Equal(t, []string{"car", "card", "care"}, got)
}

func TestPrefixExpandLimit(t *testing.T) {
	idx := NewPrefixIndex([]string{"cat", "car", "card", "care"})
	got := idx.Expand("car", 2)
	require.Len(t, got, 2)
}
