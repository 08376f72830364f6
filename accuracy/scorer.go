// Copyright 2026 gorse Project Authors
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

package accuracy

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
)

// Scorer scores a ranked list of items against the items relevant to a user.
type Scorer func(targetSet mapset.Set[string], rankList []string) float64

// ScoreNDCG means Normalized Discounted Cumulative Gain with binary relevance.
func ScoreNDCG(targetSet mapset.Set[string], rankList []string) float64 {
	// DCG = \sum^{N}_{i=1} \frac {2^{rel_i}-1} {\ln(i+1)}
	dcg := 0.0
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			dcg += 1.0 / math.Log(float64(i)+2.0)
		}
	}
	if dcg == 0 {
		return 0
	}
	// IDCG = \sum^{min(|REL|,N)}_{i=1} \frac {1} {\ln(i+1)}
	idcg := 0.0
	for i := 0; i < targetSet.Cardinality() && i < len(rankList); i++ {
		idcg += 1.0 / math.Log(float64(i)+2.0)
	}
	return dcg / idcg
}

// ScorePrecision is the fraction of relevant items among the recommended items.
//
//	\frac{|relevant documents| \cap |retrieved documents|} {|{retrieved documents}|}
func ScorePrecision(targetSet mapset.Set[string], rankList []string) float64 {
	if len(rankList) == 0 {
		return 0
	}
	return float64(hits(targetSet, rankList)) / float64(len(rankList))
}

// ScoreRecall is the fraction of relevant items that have been recommended over the
// total amount of relevant items.
//
//	\frac{|relevant documents| \cap |retrieved documents|} {|{relevant documents}|}
func ScoreRecall(targetSet mapset.Set[string], rankList []string) float64 {
	if targetSet.Cardinality() == 0 {
		return 0
	}
	return float64(hits(targetSet, rankList)) / float64(targetSet.Cardinality())
}

// ScoreHR means Hit Ratio.
func ScoreHR(targetSet mapset.Set[string], rankList []string) float64 {
	if hits(targetSet, rankList) > 0 {
		return 1
	}
	return 0
}

// ScoreMAP means Mean Average Precision.
func ScoreMAP(targetSet mapset.Set[string], rankList []string) float64 {
	if targetSet.Cardinality() == 0 {
		return 0
	}
	sumPrecision := 0.0
	hit := 0
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
			sumPrecision += float64(hit) / float64(i+1)
		}
	}
	return sumPrecision / float64(targetSet.Cardinality())
}

// ScoreMRR means Mean Reciprocal Rank. The reciprocal rank of a list is the
// multiplicative inverse of the position of the first relevant item.
//
//	MRR = \frac{1}{Q} \sum^{|Q|}_{i=1} \frac{1}{rank_i}
func ScoreMRR(targetSet mapset.Set[string], rankList []string) float64 {
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			return 1 / float64(i+1)
		}
	}
	return 0
}

func hits(targetSet mapset.Set[string], rankList []string) int {
	hit := 0
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
		}
	}
	return hit
}

// Scorers maps metric names to scorers.
var Scorers = map[string]Scorer{
	"NDCG":      ScoreNDCG,
	"Precision": ScorePrecision,
	"Recall":    ScoreRecall,
	"HR":        ScoreHR,
	"MAP":       ScoreMAP,
	"MRR":       ScoreMRR,
}
