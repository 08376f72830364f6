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

package beyond

import (
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Popularity definitions of Novelty.
const (
	PopularityGroup      = dataframe.ColumnGroup
	PopularityPercentage = dataframe.ColumnPercentage
)

// Coverage is the fraction of the catalog recommended to at least one user.
func Coverage(topN *dataframe.DataFrame, items []string) (float64, error) {
	if err := dataframe.RequireColumns(topN, dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank); err != nil {
		return 0, errors.Trace(err)
	}
	if len(items) == 0 {
		return 0, errors.NotValidf("empty catalog")
	}
	recommended, err := topN.Strings(dataframe.ColumnItem)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return float64(mapset.NewSet(recommended...).Cardinality()) / float64(len(items)), nil
}

// Novelty is the mean self-information -log2(popularity) of recommended items, first
// averaged over the list of every user, then over users. The popularity column is
// either the group of items (PopularityGroup) or their share of interactions
// (PopularityPercentage). An empty popularity defaults to PopularityGroup.
func Novelty(topN *dataframe.DataFrame, popularity string) (float64, error) {
	if popularity == "" {
		popularity = PopularityGroup
	}
	if err := dataframe.RequireColumns(topN, dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, popularity); err != nil {
		return 0, errors.Trace(err)
	}
	users, err := topN.Strings(dataframe.ColumnUser)
	if err != nil {
		return 0, errors.Trace(err)
	}
	values, err := topN.Floats(popularity)
	if err != nil {
		return 0, errors.Trace(err)
	}
	information := make(map[string][]float64)
	for i, user := range users {
		information[user] = append(information[user], -math.Log2(values[i]))
	}
	keys := lo.Keys(information)
	sort.Strings(keys)
	means := lo.Map(keys, func(user string, _ int) float64 {
		return stat.Mean(information[user], nil)
	})
	return stat.Mean(means, nil), nil
}
