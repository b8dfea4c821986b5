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

package exec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldScoreMonotonicIncreasingTF(t *testing.T) {
	stat := FieldStat{Weight: 1, K: 1.2, B: 0.75, AvgLen: 10}
	s1 := FieldScore(1, 10, stat)
	s2 := FieldScore(2, 10, stat)
	s3 := FieldScore(3, 10, stat)
	require.Less(t, s1, s2)
	require.Less(t, s2, s3)
}

func TestFieldScoreMonotonicDecreasingLength(t *testing.T) {
	stat := FieldStat{Weight: 1, K: 1.2, B: 0.75, AvgLen: 10}
	s1 := FieldScore(2, 10, stat)
	s2 := FieldScore(2, 20, stat)
	require.Greater(t, s1, s2)
}

func TestTermContributionSoftDisjunction(t *testing.T) {
	scores := []float64{1.0, 0.2, 0.2}
	c := TermContribution(scores, 3, 1.0, 1.0)
	require.InDelta(t, 0.7*1.0+0.3*(0.4/2), c, 1e-9)
}

func TestIDFDecreasesWithDocFreq(t *testing.T) {
	require.Greater(t, IDF(1, 1000), IDF(500, 1000))
}

func TestTopKBoundsSize(t *testing.T) {
	tk := NewTopK(2)
	tk.Offer(Scored{DocID: 1, Score: 5})
	tk.Offer(Scored{DocID: 2, Score: 1})
	tk.Offer(Scored{DocID: 3, Score: 9})
	res := tk.Results()
	require.Len(t, res, 2)
	require.Equal(t, uint32(3), res[0].DocID)
	require.Equal(t, uint32(1), res[1].DocID)
}

func TestPaginatorStreamsBatches(t *testing.T) {
	p := NewPaginator([]Scored{{DocID: 1}, {DocID: 2}, {DocID: 3}})
	first := p.Next(2)
	require.Len(t, first, 2)
	second := p.Next(2)
	require.Len(t, second, 1)
	require.Nil(t, p.Next(2))
}

func TestProximityScalingBoundedAndCollapsesPastMaxWindow(t *testing.T) {
	hits := []PositionHit{{TermIdx: 0, Pos: 10}, {TermIdx: 1, Pos: 11}}
	w := MinWindow(hits, 2)
	require.True(t, w.Found)
	factor := ScalingFactor(w, 2)
	require.Greater(t, factor, 1.0)
	require.LessOrEqual(t, factor, 1+proximityScalingBase/ProximitySaturation)

	far := []PositionHit{{TermIdx: 0, Pos: 0}, {TermIdx: 1, Pos: 1000}}
	wf := MinWindow(far, 2)
	require.Equal(t, 1.0, ScalingFactor(wf, 2))
}

func TestMinWindowFindsTightestSpan(t *testing.T) {
	hits := []PositionHit{
		{TermIdx: 0, Pos: 0},
		{TermIdx: 1, Pos: 50},
		{TermIdx: 0, Pos: 60},
		{TermIdx: 1, Pos: 61},
	}
	w := MinWindow(hits, 2)
	require.True(t, w.Found)
	require.Equal(t, uint32(1), w.WindowLen)
}
