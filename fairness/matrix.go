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

package fairness

import (
	"math"

	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

var distributionColumns = []string{
	dataframe.ColumnUser,
	dataframe.ColumnItem,
	dataframe.ColumnRank,
	dataframe.ColumnGroup,
}

// Row is a recommendation of an item to a user. Rank holds the position in the list
// until it is replaced by a weight.
type Row struct {
	User  string
	Item  string
	Rank  float64
	Group string
}

type rowKey struct {
	User  string
	Item  string
	Group string
}

func (r Row) key() rowKey {
	return rowKey{User: r.User, Item: r.Item, Group: r.Group}
}

// Matrix is a distribution over (user, item, group) triples.
type Matrix []Row

// NewMatrix validates a (user, item, rank, group) table and converts it to a Matrix.
func NewMatrix(df *dataframe.DataFrame) (Matrix, error) {
	df, err := dataframe.Validate(df, distributionColumns...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	users, _ := df.Strings(dataframe.ColumnUser)
	items, _ := df.Strings(dataframe.ColumnItem)
	ranks, _ := df.Floats(dataframe.ColumnRank)
	groups, _ := df.Strings(dataframe.ColumnGroup)
	m := make(Matrix, df.Len())
	for i := range m {
		m[i] = Row{User: users[i], Item: items[i], Rank: ranks[i], Group: groups[i]}
	}
	return m, nil
}

// DataFrame converts the matrix to a (user, item, rank, group) table.
func (m Matrix) DataFrame() *dataframe.DataFrame {
	df := dataframe.Empty(distributionColumns...)
	for _, r := range m {
		_ = df.Append(r.User, r.Item, r.Rank, r.Group)
	}
	return df
}

// Weights returns the rank column.
func (m Matrix) Weights() []float64 {
	return lo.Map(m, func(r Row, _ int) float64 { return r.Rank })
}

// Exposure replaces every rank with the positional exposure 1/log2(1+rank).
func (m Matrix) Exposure() Matrix {
	return lo.Map(m, func(r Row, _ int) Row {
		r.Rank = 1 / math.Log2(1+r.Rank)
		return r
	})
}

// Probability normalizes weights to sum to one over the whole matrix. The result is
// NaN everywhere if the weights sum to zero.
func (m Matrix) Probability() Matrix {
	total := floats.Sum(m.Weights())
	return lo.Map(m, func(r Row, _ int) Row {
		r.Rank /= total
		return r
	})
}

// Effectiveness weights the exposure of every recommendation by its relevance. The
// exposure of m and the weights of rel are joined on (user, item, group) keeping rows
// of both sides. A missing weight on either side counts as zero.
func (m Matrix) Effectiveness(rel Matrix) Matrix {
	exposure := m.Exposure()
	relevance := lo.GroupBy(lo.Range(len(rel)), func(i int) rowKey {
		return rel[i].key()
	})
	const missing = 0.0
	matched := make([]bool, len(rel))
	var result Matrix
	for _, r := range exposure {
		indices, ok := relevance[r.key()]
		if !ok {
			result = append(result, Row{User: r.User, Item: r.Item, Rank: r.Rank * missing, Group: r.Group})
			continue
		}
		for _, i := range indices {
			matched[i] = true
			result = append(result, Row{User: r.User, Item: r.Item, Rank: r.Rank * rel[i].Rank, Group: r.Group})
		}
	}
	for i, r := range rel {
		if !matched[i] {
			result = append(result, Row{User: r.User, Item: r.Item, Rank: missing * r.Rank, Group: r.Group})
		}
	}
	return result
}

// sumBy sums weights sharing the same key.
func (m Matrix) sumBy(key func(Row) string) map[string]float64 {
	sums := make(map[string]float64)
	for _, r := range m {
		sums[key(r)] += r.Rank
	}
	return sums
}

// ExpMatrix computes the exposure matrix of recommendation lists.
func ExpMatrix(topN *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	m, err := NewMatrix(topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.Exposure().DataFrame(), nil
}

// ProbMatrix computes the probability distribution of recommendation lists.
func ProbMatrix(topN *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	m, err := NewMatrix(topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.Probability().DataFrame(), nil
}

// EffMatrix computes the effectiveness matrix of recommendation lists given relevant
// items for users. Both tables must be in the form (user, item, rank, group).
func EffMatrix(topN, rel *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	m, err := NewMatrix(topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r, err := NewMatrix(rel)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return m.Effectiveness(r).DataFrame(), nil
}
