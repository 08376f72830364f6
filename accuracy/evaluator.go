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
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/recsyseval/common/log"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientRecommendations means no cutoff is shorter than every recommendation list.
const ErrInsufficientRecommendations = errors.ConstError("recommendation lists are too short")

// DefaultAts are the cutoffs evaluated when none is given.
var DefaultAts = []int{5, 10}

// FindRelevantItems groups the items of a (user, item) table by user. Items keep the
// order of the table.
func FindRelevantItems(target *dataframe.DataFrame) (map[string][]string, error) {
	if err := dataframe.RequireColumns(target, dataframe.ColumnUser, dataframe.ColumnItem); err != nil {
		return nil, errors.Trace(err)
	}
	users, err := target.Strings(dataframe.ColumnUser)
	if err != nil {
		return nil, errors.Trace(err)
	}
	items, err := target.Strings(dataframe.ColumnItem)
	if err != nil {
		return nil, errors.Trace(err)
	}
	relevant := make(map[string][]string)
	for i, user := range users {
		relevant[user] = append(relevant[user], items[i])
	}
	return relevant, nil
}

// RelevantItemsFrame converts relevant items to a (user, pos_items) table sorted by user.
func RelevantItemsFrame(relevant map[string][]string) *dataframe.DataFrame {
	df := dataframe.Empty(dataframe.ColumnUser, dataframe.ColumnPosItems)
	users := lo.Keys(relevant)
	sort.Strings(users)
	for _, user := range users {
		_ = df.Append(user, relevant[user])
	}
	return df
}

// rankLists groups recommendations by user, ordered by rank.
func rankLists(topN *dataframe.DataFrame) (map[string][]string, error) {
	topN, err := dataframe.Validate(topN, dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank)
	if err != nil {
		return nil, errors.Trace(err)
	}
	users, _ := topN.Strings(dataframe.ColumnUser)
	items, _ := topN.Strings(dataframe.ColumnItem)
	ranks, _ := topN.Floats(dataframe.ColumnRank)
	order := lo.Range(topN.Len())
	sort.SliceStable(order, func(i, j int) bool {
		return ranks[order[i]] < ranks[order[j]]
	})
	lists := make(map[string][]string)
	for _, i := range order {
		lists[users[i]] = append(lists[users[i]], items[i])
	}
	return lists, nil
}

// calculableAts returns the cutoffs not exceeding the shortest recommendation list.
func calculableAts(lists map[string][]string, ats []int) ([]int, error) {
	if len(lists) == 0 {
		return nil, errors.Annotatef(ErrInsufficientRecommendations, "no recommendation for cutoffs %v", ats)
	}
	shortest := lo.Min(lo.MapToSlice(lists, func(_ string, items []string) int { return len(items) }))
	calculable, skipped := lo.FilterReject(ats, func(k int, _ int) bool {
		return k <= shortest
	})
	if len(calculable) == 0 {
		return nil, errors.Annotatef(ErrInsufficientRecommendations,
			"the shortest list has %d items but cutoffs are %v", shortest, ats)
	}
	if len(skipped) > 0 {
		log.Logger().Warn("cutoffs won't be calculated",
			zap.Ints("ats", skipped), zap.Int("shortest", shortest))
	}
	return calculable, nil
}

// Evaluate scores the recommendation lists of every user at each cutoff. topN is a
// (user, item, rank) table and relevant maps users to their relevant items. Only users
// having both recommendations and relevant items are scored. The result has a user
// column and one column per cutoff named name@k. Cutoffs longer than the shortest list
// are skipped.
func Evaluate(topN *dataframe.DataFrame, relevant map[string][]string, name string, scorer Scorer, ats ...int) (*dataframe.DataFrame, error) {
	if len(ats) == 0 {
		ats = DefaultAts
	}
	lists, err := rankLists(topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ats, err = calculableAts(lists, ats)
	if err != nil {
		return nil, errors.Trace(err)
	}

	users := lo.Filter(lo.Keys(lists), func(user string, _ int) bool {
		_, ok := relevant[user]
		return ok
	})
	sort.Strings(users)
	names := append([]string{dataframe.ColumnUser}, lo.Map(ats, func(k int, _ int) string {
		return fmt.Sprintf("%s@%d", name, k)
	})...)
	result := dataframe.Empty(names...)
	for _, user := range users {
		targetSet := mapset.NewSet(relevant[user]...)
		row := []any{user}
		for _, k := range ats {
			row = append(row, scorer(targetSet, lists[user][:k]))
		}
		if err = result.Append(row...); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

// NDCG computes NDCG@k of every user.
func NDCG(topN *dataframe.DataFrame, relevant map[string][]string, ats ...int) (*dataframe.DataFrame, error) {
	return Evaluate(topN, relevant, "NDCG", ScoreNDCG, ats...)
}

// Precision computes Precision@k of every user.
func Precision(topN *dataframe.DataFrame, relevant map[string][]string, ats ...int) (*dataframe.DataFrame, error) {
	return Evaluate(topN, relevant, "Precision", ScorePrecision, ats...)
}

// Recall computes Recall@k of every user.
func Recall(topN *dataframe.DataFrame, relevant map[string][]string, ats ...int) (*dataframe.DataFrame, error) {
	return Evaluate(topN, relevant, "Recall", ScoreRecall, ats...)
}

// Mean averages every score column over users.
func Mean(scores *dataframe.DataFrame) (map[string]float64, error) {
	means := make(map[string]float64)
	for _, name := range scores.Columns() {
		if name == dataframe.ColumnUser {
			continue
		}
		values, err := scores.Floats(name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		means[name] = stat.Mean(values, nil)
	}
	return means, nil
}
