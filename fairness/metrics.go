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
	"sort"

	"github.com/gorse-io/recsyseval/common/log"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrInvalidFlag means the segmented actor of MutualInformation is neither user nor item.
const ErrInvalidFlag = errors.ConstError("flag must be user or item")

type options struct {
	strictLog bool
}

// Option configures a fairness metric.
type Option func(*options)

// WithStrictLog propagates undefined terms such as 0*log(0). By default they are
// dropped from sums, so groups or pairs with zero probability contribute nothing.
func WithStrictLog() Option {
	return func(o *options) {
		o.strictLog = true
	}
}

func newOptions(opts []Option) *options {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// xlog2 computes x*log2(y). A NaN term counts as zero unless strict.
func (o *options) xlog2(x, y float64) float64 {
	v := x * math.Log2(y)
	if math.IsNaN(v) && !o.strictLog {
		return 0
	}
	return v
}

// ParseFlag parses the segmented actor of MutualInformation.
func ParseFlag(s string) (dataframe.Axis, error) {
	axis, err := dataframe.ParseAxis(s)
	if err != nil {
		return axis, errors.Annotatef(ErrInvalidFlag, "flag %q", s)
	}
	return axis, nil
}

// distribution builds the probability distribution of recommendations. Without
// relevance, weights are either raw ranks or exposures.
func distribution(topN, rel *dataframe.DataFrame, exposure bool) (Matrix, error) {
	m, err := NewMatrix(topN)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if rel != nil {
		r, err := NewMatrix(rel)
		if err != nil {
			return nil, errors.Trace(err)
		}
		m = m.Effectiveness(r)
	} else if exposure {
		m = m.Exposure()
	}
	return m.Probability(), nil
}

func groupOf(r Row) string {
	return r.Group
}

// Sum adds up contributions in sorted group order.
func Sum(contributions map[string]float64) float64 {
	keys := lo.Keys(contributions)
	sort.Strings(keys)
	return lo.SumBy(keys, func(k string) float64 { return contributions[k] })
}

// EntropyByGroup computes the contribution -p*log2(p) of every group, where p is the
// probability mass recommended to the group. If rel is nil, the rank column is used
// as weight directly. Otherwise weights come from the effectiveness matrix.
func EntropyByGroup(topN, rel *dataframe.DataFrame, opts ...Option) (map[string]float64, error) {
	o := newOptions(opts)
	m, err := distribution(topN, rel, false)
	if err != nil {
		return nil, errors.Trace(err)
	}
	groups := m.sumBy(groupOf)
	return lo.MapValues(groups, func(p float64, _ string) float64 {
		return -o.xlog2(p, p)
	}), nil
}

// Entropy computes the entropy of the distribution of recommendations over groups.
// Higher entropy means a more even spread.
func Entropy(topN, rel *dataframe.DataFrame, opts ...Option) (float64, error) {
	groups, err := EntropyByGroup(topN, rel, opts...)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return Sum(groups), nil
}

// KullbackLeiblerByGroup computes the contribution p*log2(p/q) of every group, where
// p is the probability mass recommended to the group and q is its target
// representation. Weights are exposures, or effectiveness if rel is given. Groups
// absent from the target are skipped.
func KullbackLeiblerByGroup(topN, target, rel *dataframe.DataFrame, opts ...Option) (map[string]float64, error) {
	o := newOptions(opts)
	if err := dataframe.RequireColumns(topN, distributionColumns...); err != nil {
		return nil, errors.Trace(err)
	}
	target, err := dataframe.Validate(target, dataframe.ColumnGroup, dataframe.ColumnTargetRepresentation)
	if err != nil {
		return nil, errors.Trace(err)
	}
	m, err := distribution(topN, rel, true)
	if err != nil {
		return nil, errors.Trace(err)
	}

	targetGroups, _ := target.Strings(dataframe.ColumnGroup)
	targetValues, _ := target.Floats(dataframe.ColumnTargetRepresentation)
	groups := m.sumBy(groupOf)
	divergences := make(map[string]float64, len(groups))
	for i, group := range targetGroups {
		p, ok := groups[group]
		if !ok {
			continue
		}
		divergences[group] += o.xlog2(p, p/targetValues[i])
	}
	if dropped := lo.Without(lo.Keys(groups), targetGroups...); len(dropped) > 0 {
		log.Logger().Debug("groups without target representation",
			zap.Strings("groups", dropped))
	}
	return divergences, nil
}

// KullbackLeibler computes the divergence of the distribution of recommendations over
// groups from a target representation. Zero means the recommendations match the target.
func KullbackLeibler(topN, target, rel *dataframe.DataFrame, opts ...Option) (float64, error) {
	divergences, err := KullbackLeiblerByGroup(topN, target, rel, opts...)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return Sum(divergences), nil
}

// MutualInformation computes the mutual information between the groups of the flagged
// actor and the other actor. With users flagged, it measures how much the items
// recommended depend on the user group. Weights are exposures, or effectiveness if rel
// is given. Only observed pairs with positive probability contribute.
func MutualInformation(topN *dataframe.DataFrame, flag dataframe.Axis, rel *dataframe.DataFrame, opts ...Option) (float64, error) {
	o := newOptions(opts)
	if !flag.Valid() {
		return 0, errors.Annotatef(ErrInvalidFlag, "flag %d", flag)
	}
	m, err := distribution(topN, rel, true)
	if err != nil {
		return 0, errors.Trace(err)
	}

	other := flag.Other()
	x := func(r Row) string {
		if other == dataframe.Item {
			return r.Item
		}
		return r.User
	}
	type pair struct {
		x     string
		group string
	}
	joint := make(map[pair]float64)
	for _, r := range m {
		joint[pair{x: x(r), group: r.Group}] += r.Rank
	}
	px := m.sumBy(x)
	py := m.sumBy(groupOf)

	pairs := lo.Keys(joint)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].x != pairs[j].x {
			return pairs[i].x < pairs[j].x
		}
		return pairs[i].group < pairs[j].group
	})
	var mi float64
	for _, k := range pairs {
		pxy := joint[k]
		mi += o.xlog2(pxy, pxy/(px[k.x]*py[k.group]))
	}
	return mi, nil
}
