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

import "sort"

// Proximity-ranking constants (spec-named).
const (
	MissedTermsPenalty  = 4.0
	ProximitySaturation = 4.0
	// proximityScalingBase is the unscaled proximity_scaling value
	// before the missed-terms penalty divides it down; not itself
	// spec-named, chosen so the maximum bonus (all terms present,
	// zero-length window) is a modest 1x score boost.
	proximityScalingBase = 4.0
	// MaxWindowLen bounds how wide a window proximity ranking will
	// consider; beyond it the match is treated as too diffuse to carry
	// any proximity signal (factor == 1).
	MaxWindowLen = 64
)

// PositionHit is one term occurrence at a document position, tagged
// with which query term (by index into the query's positional-term
// list) it satisfies.
type PositionHit struct {
	TermIdx int
	Pos     uint32
}

// WindowResult summarises the minimum window found.
type WindowResult struct {
	Found        bool
	WindowLen    uint32
	DistinctTerms int
}

// MinWindow finds, across hits (need not be pre-sorted), the smallest
// window of positions containing at least minDistinct distinct query
// terms. Ties in window length keep the first found.
func MinWindow(hits []PositionHit, minDistinct int) WindowResult {
	if len(hits) == 0 || minDistinct <= 0 {
		return WindowResult{}
	}
	sorted := make([]PositionHit, len(hits))
	copy(sorted, hits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	counts := map[int]int{}
	distinct := 0
	best := WindowResult{}
	left := 0

	for right := 0; right < len(sorted); right++ {
		t := sorted[right].TermIdx
		if counts[t] == 0 {
			distinct++
		}
		counts[t]++

		for distinct >= minDistinct {
			windowLen := sorted[right].Pos - sorted[left].Pos
			if !best.Found || windowLen < best.WindowLen {
				best = WindowResult{Found: true, WindowLen: windowLen, DistinctTerms: distinct}
			}
			lt := sorted[left].TermIdx
			counts[lt]--
			if counts[lt] == 0 {
				distinct--
			}
			left++
		}
	}
	return best
}

// ScalingFactor converts a MinWindow result plus the total number of
// positional query terms into the multiplicative score boost: 1 when
// no qualifying window was found or the window exceeds MaxWindowLen,
// otherwise strictly greater than 1 and at most
// 1 + proximityScalingBase/ProximitySaturation.
func ScalingFactor(w WindowResult, numQueryTerms int) float64 {
	if !w.Found || w.WindowLen > MaxWindowLen {
		return 1.0
	}
	missed := numQueryTerms - w.DistinctTerms
	if missed < 0 {
		missed = 0
	}
	proximityScaling := proximityScalingBase / (1 + MissedTermsPenalty*float64(missed))
	return 1 + proximityScaling/(ProximitySaturation+float64(w.WindowLen))
}
