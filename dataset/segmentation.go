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

package dataset

import (
	"math"
	"sort"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/recsyseval/common/log"
	"github.com/gorse-io/recsyseval/common/util"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

const (
	// ErrUnsupportedSegmentation means the number of proportions is not 1, 2 or 3.
	ErrUnsupportedSegmentation = errors.ConstError("number of supported groups is between 1 and 3")
	// ErrInvalidProportions means proportions do not sum to 1.
	ErrInvalidProportions = errors.ConstError("proportions don't cover all the items/users")
	// ErrInvalidFillValue means the fill value is also a genuine feature value.
	ErrInvalidFillValue = errors.ConstError("invalid fill value")
	// ErrInvalidGroupAxis means the segmentation axis is neither user nor item.
	ErrInvalidGroupAxis = dataframe.ErrInvalidGroupAxis
)

// tieBreakRange is the exclusive upper bound of the jitter added to user activity
// before ranking.
const tieBreakRange = 10

type segmentOptions struct {
	proportions    []float64
	minInteraction int
	groupBy        dataframe.Axis
	rng            *util.RandomGenerator
}

// SegmentOption configures a segmentation.
type SegmentOption func(*segmentOptions)

// WithProportions sets the share of every group.
func WithProportions(proportions ...float64) SegmentOption {
	return func(o *segmentOptions) {
		o.proportions = proportions
	}
}

// WithMinInteraction sets the interaction threshold of entities taking part in ranking.
func WithMinInteraction(minInteraction int) SegmentOption {
	return func(o *segmentOptions) {
		o.minInteraction = minInteraction
	}
}

// WithGroupBy sets the segmented actor.
func WithGroupBy(axis dataframe.Axis) SegmentOption {
	return func(o *segmentOptions) {
		o.groupBy = axis
	}
}

// WithSeed seeds the tie-break of ActivitySegmentation.
func WithSeed(seed int64) SegmentOption {
	return func(o *segmentOptions) {
		rng := util.NewRandomGenerator(seed)
		o.rng = &rng
	}
}

// WithRandomGenerator sets the random source of the tie-break of ActivitySegmentation.
func WithRandomGenerator(rng util.RandomGenerator) SegmentOption {
	return func(o *segmentOptions) {
		o.rng = &rng
	}
}

func newSegmentOptions(defaultProportions []float64, opts []SegmentOption) *segmentOptions {
	o := &segmentOptions{
		proportions: defaultProportions,
		groupBy:     dataframe.Item,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		rng := util.NewRandomGenerator(0)
		o.rng = &rng
	}
	return o
}

// checkProportions validates the number of groups and their sum. The sum is rounded
// to one decimal to tolerate floating point error.
func checkProportions(proportions []float64) error {
	if len(proportions) != 2 && len(proportions) != 3 {
		return errors.Annotatef(ErrUnsupportedSegmentation, "got %d proportions", len(proportions))
	}
	if sum := math.Round(floats.Sum(proportions)*10) / 10; sum != 1 {
		return errors.Annotatef(ErrInvalidProportions, "proportions %v sum to %v", proportions, floats.Sum(proportions))
	}
	return nil
}

// rint rounds half to even.
func rint(x float64) int {
	return int(math.RoundToEven(x))
}

// defaultGroup is the label of entities which fall behind every threshold.
func defaultGroup(proportions []float64) string {
	return strconv.Itoa(len(proportions))
}

// InteractionSegmentation segments items (or users) by their cumulative number of
// interactions. Entities are sorted by interaction count and the running sum is
// compared with the thresholds
//
//	short = rint(p0 * n)
//	mid   = rint(p1 * n) + short
//
// where n is the number of interactions of entities having more than the minimum
// number of interactions. Entities whose running sum is below short are in group "1"
// (short head), below mid in group "2" (mid tail) and the rest in the last group.
// Entities at or below the minimum number of interactions always fall in the last
// group. A single proportion returns the dataset unchanged.
//
// Defaults: proportions [0.8, 0.2], no minimum, items.
func InteractionSegmentation(df *dataframe.DataFrame, opts ...SegmentOption) (*dataframe.DataFrame, error) {
	o := newSegmentOptions([]float64{0.8, 0.2}, opts)
	if len(o.proportions) == 1 {
		return df.Copy(), nil
	}
	if err := checkProportions(o.proportions); err != nil {
		return nil, errors.Trace(err)
	}
	if !o.groupBy.Valid() {
		return nil, errors.Annotatef(ErrInvalidGroupAxis, "axis %d", o.groupBy)
	}
	column := o.groupBy.String()
	entities, err := df.Strings(column)
	if err != nil {
		return nil, errors.Trace(err)
	}

	type entityCount struct {
		id    string
		count int
	}
	dict := CountStrings(entities)
	counts := lo.Map(dict.Keys(), func(id string, i int) entityCount {
		return entityCount{id: id, count: dict.Freq(i)}
	})
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].id < counts[j].id
	})

	ranked := lo.Filter(counts, func(e entityCount, _ int) bool {
		return e.count > o.minInteraction
	})
	numInteractions := lo.SumBy(ranked, func(e entityCount) int { return e.count })
	shortThreshold := rint(o.proportions[0] * float64(numInteractions))
	midThreshold := rint(o.proportions[1]*float64(numInteractions)) + shortThreshold
	log.Logger().Debug("interaction segmentation",
		zap.String("group_by", column),
		zap.Int("n_entities", len(counts)),
		zap.Int("n_interactions", numInteractions),
		zap.Int("short_threshold", shortThreshold),
		zap.Int("mid_threshold", midThreshold))

	groups := make(map[string]string, len(ranked))
	cumulativeSum := 0
	for _, e := range ranked {
		cumulativeSum += e.count
		if cumulativeSum < shortThreshold {
			groups[e.id] = "1"
		} else if cumulativeSum < midThreshold {
			groups[e.id] = "2"
		}
	}

	result := dataframe.Empty(column, dataframe.ColumnGroup)
	for _, e := range counts {
		group, ok := groups[e.id]
		if !ok {
			group = defaultGroup(o.proportions)
		}
		if err = result.Append(e.id, group); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

// ActivitySegmentation segments users by their number of interactions. Users with
// fewer than the minimum number of interactions are dropped. Ties are broken by adding
// a random integer in [0, 10) to every count before ranking, so groups of tied users
// depend on the random generator (seed 0 unless WithSeed or WithRandomGenerator is
// given). With N ranked users,
//
//	first  = max(rint(p0 * N), 1)
//	second = rint(p1 * N) + rint(p0 * N)
//
// users ranked at or above first are in group "1", above second in group "2" and the
// rest in the last group. A single proportion returns the dataset unchanged.
//
// Defaults: proportions [0.1, 0.9], no minimum.
func ActivitySegmentation(df *dataframe.DataFrame, opts ...SegmentOption) (*dataframe.DataFrame, error) {
	o := newSegmentOptions([]float64{0.1, 0.9}, opts)
	if len(o.proportions) == 1 {
		return df.Copy(), nil
	}
	if err := checkProportions(o.proportions); err != nil {
		return nil, errors.Trace(err)
	}
	users, err := df.Strings(dataframe.ColumnUser)
	if err != nil {
		return nil, errors.Trace(err)
	}

	dict := CountStrings(users)
	active := lo.Filter(lo.Range(dict.Count()), func(id int, _ int) bool {
		return dict.Freq(id) >= o.minInteraction
	})
	activity := o.rng.Jitter(lo.Map(active, func(id int, _ int) int { return dict.Freq(id) }), tieBreakRange)
	order := lo.Range(len(active))
	sort.SliceStable(order, func(i, j int) bool {
		return activity[order[i]] > activity[order[j]]
	})

	numUsers := len(active)
	firstThreshold := rint(o.proportions[0] * float64(numUsers))
	secondThreshold := rint(o.proportions[1]*float64(numUsers)) + firstThreshold
	firstThreshold = max(firstThreshold, 1)
	log.Logger().Debug("activity segmentation",
		zap.Int("n_users", numUsers),
		zap.Int("first_threshold", firstThreshold),
		zap.Int("second_threshold", secondThreshold))

	result := dataframe.Empty(dataframe.ColumnUser, dataframe.ColumnGroup)
	for position, k := range order {
		rank := position + 1
		group := defaultGroup(o.proportions)
		if rank <= firstThreshold {
			group = "1"
		} else if rank < secondThreshold {
			group = "2"
		}
		user, _ := dict.String(active[k])
		if err = result.Append(user, group); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

// PopularityPercentage computes the share of interactions of every item (or user).
// Unlike the other segmentations it produces a continuous score in column
// "percentage" instead of a group label.
func PopularityPercentage(df *dataframe.DataFrame, opts ...SegmentOption) (*dataframe.DataFrame, error) {
	o := newSegmentOptions(nil, opts)
	if !o.groupBy.Valid() {
		return nil, errors.Annotatef(ErrInvalidGroupAxis, "axis %d", o.groupBy)
	}
	column := o.groupBy.String()
	entities, err := df.Strings(column)
	if err != nil {
		return nil, errors.Trace(err)
	}
	dict := CountStrings(entities)
	total := float64(dict.Total())
	result := dataframe.Empty(column, dataframe.ColumnPercentage)
	for id, entity := range dict.Keys() {
		if err = result.Append(entity, float64(dict.Freq(id))/total); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}

type featureOptions struct {
	fillValue any
}

// FeatureOption configures DiscreteFeatureSegmentation.
type FeatureOption func(*featureOptions)

// WithFillValue sets the value replacing missing features. It must not be a genuine
// feature value.
func WithFillValue(fillValue any) FeatureOption {
	return func(o *featureOptions) {
		o.fillValue = fillValue
	}
}

// DiscreteFeatureSegmentation segments users or items by a categorical feature. The
// table has two columns: the entity id and the feature. Missing features are replaced
// by the fill value (-1 by default) and every distinct feature value is mapped to an
// integer code in column "group". Entities sharing a code share a feature value; the
// codes themselves carry no meaning.
func DiscreteFeatureSegmentation(feature *dataframe.DataFrame, opts ...FeatureOption) (*dataframe.DataFrame, error) {
	o := &featureOptions{fillValue: -1}
	for _, opt := range opts {
		opt(o)
	}
	columns := feature.Columns()
	if len(columns) != 2 {
		return nil, errors.NotValidf("feature table with columns %v, expect [id, feature]", columns)
	}
	entityColumn, featureColumn := columns[0], columns[1]
	values := feature.Column(featureColumn)

	fill := cast.ToString(o.fillValue)
	genuine := mapset.NewSet[string]()
	for _, v := range values {
		if v != nil {
			genuine.Add(cast.ToString(v))
		}
	}
	if genuine.Contains(fill) {
		return nil, errors.Annotatef(ErrInvalidFillValue,
			"feature contains %v as value, please select another fill value", o.fillValue)
	}

	labels := lo.Map(values, func(v any, _ int) string {
		if v == nil {
			return fill
		}
		return cast.ToString(v)
	})
	categories := lo.Uniq(labels)
	sort.Strings(categories)
	codes := make(map[string]int, len(categories))
	for code, category := range categories {
		codes[category] = code
	}

	result := dataframe.Empty(entityColumn, dataframe.ColumnGroup)
	for i, entity := range feature.Column(entityColumn) {
		if err := result.Append(entity, codes[labels[i]]); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return result, nil
}
