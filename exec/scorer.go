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

// Package exec implements the query executor (C12): merged postings
// iteration across terms, BM25 scoring with soft field disjunction,
// proximity/phrase re-ranking, and a bounded top-k heap.
package exec

import "math"

// Soft-disjunction mixing weights: the best-scoring field dominates,
// the remaining fields contribute a damped average.
const (
	softDisjunctionMax  = 0.7
	softDisjunctionRest = 0.3
)

// IDF computes ln(1 + (N - df + 0.5) / (df + 0.5)).
func IDF(df, totalDocs uint32) float64 {
	return math.Log(1 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
}

// FieldStat is the per-field scoring configuration and corpus
// normalisation constant the BM25 formula needs.
type FieldStat struct {
	Weight float32
	K      float32
	B      float32
	AvgLen float64
}

// FieldScore computes score_f for one field occurrence: tf docLen
// tokens in a field whose corpus average length is stat.AvgLen.
func FieldScore(tf uint32, docLen uint32, stat FieldStat) float64 {
	if tf == 0 {
		return 0
	}
	avg := stat.AvgLen
	if avg == 0 {
		avg = 1
	}
	k, b := float64(stat.K), float64(stat.B)
	num := float64(tf) * (k + 1)
	denom := float64(tf) + k*(1-b+b*(float64(docLen)/avg))
	if denom == 0 {
		return 0
	}
	return (num / denom) * float64(stat.Weight)
}

// TermContribution folds per-field scores into one term's contribution
// to a document's final score via soft disjunction: the top field
// dominates (weight 0.7), the rest average in at a damped weight
// (0.3), then idf and the query-side term weight scale the result.
func TermContribution(fieldScores []float64, numScoredFields int, idf, termWeight float64) float64 {
	if len(fieldScores) == 0 {
		return 0
	}
	max := fieldScores[0]
	sum := 0.0
	for _, s := range fieldScores {
		if s > max {
			max = s
		}
		sum += s
	}
	rest := sum - max
	var restAvg float64
	if numScoredFields > 1 {
		restAvg = rest / float64(numScoredFields-1)
	}
	return (softDisjunctionMax*max + softDisjunctionRest*restAvg) * idf * termWeight
}
