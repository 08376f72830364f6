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
	"strconv"
	"testing"

	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const delta = 1e-5

var columns = []string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank}

func newRecommendations(rows [][]any) *dataframe.DataFrame {
	return dataframe.New(columns, rows...)
}

type FairnessTestSuite struct {
	suite.Suite
	itemGroups    *dataframe.DataFrame
	userGroups    *dataframe.DataFrame
	firstExample  *dataframe.DataFrame
	secondExample *dataframe.DataFrame
	relevance     *dataframe.DataFrame
}

func (suite *FairnessTestSuite) SetupTest() {
	suite.itemGroups = dataframe.New([]string{dataframe.ColumnItem, dataframe.ColumnGroup},
		[]any{"1", "1"}, []any{"2", "1"},
		[]any{"3", "2"}, []any{"4", "2"}, []any{"5", "2"},
		[]any{"6", "3"}, []any{"7", "3"}, []any{"8", "3"}, []any{"9", "3"}, []any{"10", "3"})
	suite.userGroups = dataframe.New([]string{dataframe.ColumnUser, dataframe.ColumnGroup},
		[]any{"1", "1"}, []any{"2", "1"},
		[]any{"3", "2"}, []any{"4", "2"}, []any{"5", "2"}, []any{"6", "2"})
	suite.firstExample = newRecommendations([][]any{
		{"1", "3", 1}, {"1", "4", 1}, {"1", "6", 1}, {"1", "7", 1}, {"1", "8", 1},
		{"2", "1", 1}, {"2", "2", 1}, {"2", "5", 1}, {"2", "6", 1}, {"2", "7", 1},
		{"3", "2", 1}, {"3", "3", 1}, {"3", "6", 1}, {"3", "9", 1}, {"3", "10", 1},
		{"4", "1", 1}, {"4", "3", 1}, {"4", "6", 1}, {"4", "7", 1}, {"4", "9", 1},
		{"5", "1", 1}, {"5", "3", 1}, {"5", "5", 1}, {"5", "7", 1}, {"5", "9", 1},
		{"6", "2", 1}, {"6", "3", 1}, {"6", "5", 1}, {"6", "9", 1}, {"6", "10", 1},
	})
	suite.secondExample = newRecommendations([][]any{
		{"1", "1", 1}, {"1", "3", 6}, {"1", "4", 3}, {"1", "5", 4}, {"1", "8", 5}, {"1", "9", 2},
		{"2", "2", 6}, {"2", "3", 5}, {"2", "6", 4}, {"2", "7", 3}, {"2", "8", 2}, {"2", "9", 1},
		{"3", "2", 1}, {"3", "3", 2}, {"3", "4", 3}, {"3", "7", 4}, {"3", "8", 5}, {"3", "9", 6},
		{"4", "1", 4}, {"4", "3", 5}, {"4", "4", 6}, {"4", "7", 3}, {"4", "8", 2}, {"4", "9", 1},
		{"5", "1", 6}, {"5", "3", 2}, {"5", "5", 3}, {"5", "6", 4}, {"5", "8", 5}, {"5", "9", 1},
		{"6", "2", 3}, {"6", "3", 5}, {"6", "5", 4}, {"6", "6", 6}, {"6", "8", 2}, {"6", "9", 1},
	})
	suite.relevance = newRecommendations([][]any{
		{"1", "2", 1}, {"1", "9", 1},
		{"2", "6", 1}, {"2", "7", 1},
		{"3", "1", 1}, {"3", "7", 1}, {"3", "9", 1},
		{"4", "3", 1}, {"4", "7", 1},
		{"6", "2", 1}, {"6", "9", 1},
	})
}

func (suite *FairnessTestSuite) merge(left, right *dataframe.DataFrame, on string) *dataframe.DataFrame {
	df, err := dataframe.Merge(left, right, on)
	suite.NoError(err)
	return df
}

func (suite *FairnessTestSuite) target(values ...float64) *dataframe.DataFrame {
	df := dataframe.Empty(dataframe.ColumnGroup, dataframe.ColumnTargetRepresentation)
	for i, v := range values {
		suite.NoError(df.Append(strconv.Itoa(i+1), v))
	}
	return df
}

func (suite *FairnessTestSuite) assertGroups(expected, actual map[string]float64) {
	suite.Len(actual, len(expected))
	for group, value := range expected {
		suite.Contains(actual, group)
		suite.InDelta(value, actual[group], delta, "group %s", group)
	}
}

func (suite *FairnessTestSuite) TestEntropy_UserExposure() {
	topN := suite.merge(suite.firstExample, suite.userGroups, dataframe.ColumnUser)
	groups, err := EntropyByGroup(topN, nil)
	suite.NoError(err)
	suite.assertGroups(map[string]float64{"1": 0.528321, "2": 0.389975}, groups)
	entropy, err := Entropy(topN, nil)
	suite.NoError(err)
	suite.InDelta(0.918296, entropy, delta)
}

func (suite *FairnessTestSuite) TestEntropy_ItemExposure() {
	topN := suite.merge(suite.firstExample, suite.itemGroups, dataframe.ColumnItem)
	groups, err := EntropyByGroup(topN, nil)
	suite.NoError(err)
	suite.assertGroups(map[string]float64{"1": 0.464386, "2": 0.521090, "3": 0.5}, groups)
	entropy, err := Entropy(topN, nil)
	suite.NoError(err)
	suite.InDelta(1.485475, entropy, delta)
}

func (suite *FairnessTestSuite) TestEntropy_RawRanks() {
	topN := suite.merge(suite.secondExample, suite.itemGroups, dataframe.ColumnItem)
	entropy, err := Entropy(topN, nil)
	suite.NoError(err)
	suite.InDelta(1.478934, entropy, delta)
}

func (suite *FairnessTestSuite) TestEntropy_ItemEffectiveness() {
	topN := suite.merge(suite.secondExample, suite.itemGroups, dataframe.ColumnItem)
	rel := suite.merge(suite.relevance, suite.itemGroups, dataframe.ColumnItem)
	groups, err := EntropyByGroup(topN, rel)
	suite.NoError(err)
	suite.assertGroups(map[string]float64{"1": 0.342475, "2": 0.295213, "3": 0.243146}, groups)
	entropy, err := Entropy(topN, rel)
	suite.NoError(err)
	suite.InDelta(0.880833, entropy, delta)
}

func (suite *FairnessTestSuite) TestEntropy_Inputs() {
	groups, err := EntropyByGroup(suite.merge(suite.firstExample, suite.userGroups, dataframe.ColumnUser), nil)
	suite.NoError(err)
	// inputs are not modified
	suite.Equal([]string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank}, suite.firstExample.Columns())
	suite.Len(groups, 2)

	_, err = Entropy(suite.firstExample, nil)
	suite.True(errors.Is(err, dataframe.ErrMissingColumns))
}

func (suite *FairnessTestSuite) TestKullbackLeibler_UserEffectiveness() {
	topN := suite.merge(suite.secondExample, suite.userGroups, dataframe.ColumnUser)
	rel := suite.merge(suite.relevance, suite.userGroups, dataframe.ColumnUser)
	groups, err := KullbackLeiblerByGroup(topN, suite.target(0.5, 0.5), rel)
	suite.NoError(err)
	suite.assertGroups(map[string]float64{"1": -0.198011, "2": 0.283312}, groups)
	divergence, err := KullbackLeibler(topN, suite.target(0.5, 0.5), rel)
	suite.NoError(err)
	suite.InDelta(0.085302, divergence, delta)
}

func (suite *FairnessTestSuite) TestKullbackLeibler_ItemExposure() {
	topN := suite.merge(suite.firstExample, suite.itemGroups, dataframe.ColumnItem)
	groups, err := KullbackLeiblerByGroup(topN, suite.target(0.2, 0.3, 0.5), nil)
	suite.NoError(err)
	suite.assertGroups(map[string]float64{"1": 0, "2": 0, "3": 0}, groups)

	topN = suite.merge(suite.secondExample, suite.itemGroups, dataframe.ColumnItem)
	divergence, err := KullbackLeibler(topN, suite.target(0.2, 0.3, 0.5), nil)
	suite.NoError(err)
	suite.InDelta(0.004412, divergence, delta)
}

func (suite *FairnessTestSuite) TestKullbackLeibler_MissingTarget() {
	topN := suite.merge(suite.firstExample, suite.itemGroups, dataframe.ColumnItem)
	groups, err := KullbackLeiblerByGroup(topN, suite.target(0.2, 0.3), nil)
	suite.NoError(err)
	suite.Len(groups, 2)
	suite.NotContains(groups, "3")

	_, err = KullbackLeibler(topN, dataframe.Empty(dataframe.ColumnGroup), nil)
	suite.True(errors.Is(err, dataframe.ErrMissingColumns))
}

func (suite *FairnessTestSuite) TestMutualInformation() {
	topN := suite.merge(suite.firstExample, suite.userGroups, dataframe.ColumnUser)
	mi, err := MutualInformation(topN, dataframe.User, nil)
	suite.NoError(err)
	suite.InDelta(0.25582, mi, delta)

	topN = suite.merge(suite.firstExample, suite.itemGroups, dataframe.ColumnItem)
	mi, err = MutualInformation(topN, dataframe.Item, nil)
	suite.NoError(err)
	suite.InDelta(0.10570, mi, delta)

	topN = suite.merge(suite.secondExample, suite.itemGroups, dataframe.ColumnItem)
	mi, err = MutualInformation(topN, dataframe.Item, nil)
	suite.NoError(err)
	suite.InDelta(0.088128, mi, delta)
	suite.GreaterOrEqual(mi, 0.0)
}

func (suite *FairnessTestSuite) TestMutualInformation_ItemEffectiveness() {
	topN := suite.merge(suite.secondExample, suite.itemGroups, dataframe.ColumnItem)
	rel := suite.merge(suite.relevance, suite.itemGroups, dataframe.ColumnItem)
	// user 5 has no relevant item, so some pairs carry zero probability
	mi, err := MutualInformation(topN, dataframe.Item, rel)
	suite.NoError(err)
	suite.InDelta(0.404869, mi, delta)
	mi, err = MutualInformation(topN, dataframe.Item, rel, WithStrictLog())
	suite.NoError(err)
	suite.True(math.IsNaN(mi))
}

func (suite *FairnessTestSuite) TestMutualInformation_InvalidFlag() {
	_, err := ParseFlag("ratings")
	suite.True(errors.Is(err, ErrInvalidFlag))
	topN := suite.merge(suite.firstExample, suite.itemGroups, dataframe.ColumnItem)
	_, err = MutualInformation(topN, dataframe.Axis(-1), nil)
	suite.True(errors.Is(err, ErrInvalidFlag))
	flag, err := ParseFlag("item")
	suite.NoError(err)
	suite.Equal(dataframe.Item, flag)
}

func TestFairness(t *testing.T) {
	suite.Run(t, new(FairnessTestSuite))
}

func TestStrictLog(t *testing.T) {
	topN := dataframe.New([]string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, dataframe.ColumnGroup},
		[]any{"1", "1", 1, "a"},
		[]any{"1", "2", 2, "b"})
	rel := dataframe.New([]string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, dataframe.ColumnGroup},
		[]any{"1", "2", 1, "b"})

	entropy, err := Entropy(topN, rel)
	assert.NoError(t, err)
	assert.InDelta(t, 0, entropy, delta)
	entropy, err = Entropy(topN, rel, WithStrictLog())
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(entropy))

	target := dataframe.New([]string{dataframe.ColumnGroup, dataframe.ColumnTargetRepresentation},
		[]any{"a", 0.5}, []any{"b", 0.5})
	divergence, err := KullbackLeibler(topN, target, rel)
	assert.NoError(t, err)
	assert.InDelta(t, 1, divergence, delta)
	divergence, err = KullbackLeibler(topN, target, rel, WithStrictLog())
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(divergence))
}

func TestExpMatrix(t *testing.T) {
	topN := dataframe.New([]string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, dataframe.ColumnGroup},
		[]any{"1", "1", 1, "a"},
		[]any{"1", "2", 3, "b"},
		[]any{"1", "3", "7", "b"})
	exposure, err := ExpMatrix(topN)
	assert.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.5, 1.0 / 3}, lo.Must(exposure.Floats(dataframe.ColumnRank)), 1e-9)
	// input is untouched
	assert.Equal(t, []any{1, 3, "7"}, topN.Column(dataframe.ColumnRank))

	probability, err := ProbMatrix(exposure)
	assert.NoError(t, err)
	assert.InDelta(t, 1, lo.Sum(lo.Must(probability.Floats(dataframe.ColumnRank))), 1e-9)

	_, err = ExpMatrix(dataframe.Empty(dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank))
	assert.True(t, errors.Is(err, dataframe.ErrMissingColumns))
	_, err = ProbMatrix(dataframe.New([]string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, dataframe.ColumnGroup},
		[]any{"1", "1", "first", "a"}))
	assert.True(t, errors.Is(err, dataframe.ErrInvalidValue))
}

func TestEffMatrix(t *testing.T) {
	names := []string{dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank, dataframe.ColumnGroup}
	topN := dataframe.New(names,
		[]any{"1", "1", 1, "a"},
		[]any{"1", "2", 3, "a"})
	rel := dataframe.New(names,
		[]any{"1", "2", 2, "a"},
		[]any{"2", "1", 1, "a"})
	eff, err := EffMatrix(topN, rel)
	assert.NoError(t, err)
	assert.Equal(t, names, eff.Columns())
	m, err := NewMatrix(eff)
	assert.NoError(t, err)
	assert.ElementsMatch(t, Matrix{
		{User: "1", Item: "1", Rank: 0, Group: "a"},
		{User: "1", Item: "2", Rank: 1, Group: "a"},
		{User: "2", Item: "1", Rank: 0, Group: "a"},
	}, m)

	_, err = EffMatrix(topN, dataframe.Empty(dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank))
	assert.True(t, errors.Is(err, dataframe.ErrMissingColumns))
}

func TestMatrix_Probability(t *testing.T) {
	m := Matrix{{User: "1", Item: "1", Rank: 1, Group: "a"}, {User: "1", Item: "2", Rank: 3, Group: "b"}}
	assert.Equal(t, []float64{0.25, 0.75}, m.Probability().Weights())
	assert.Equal(t, []float64{1, 3}, m.Weights())
	assert.True(t, lo.EveryBy(Matrix{{Rank: 0}}.Probability().Weights(), math.IsNaN))
}

func TestSum(t *testing.T) {
	contributions := map[string]float64{"3": 0.3, "1": 0.1, "2": 0.2}
	assert.Equal(t, 0.1+0.2+0.3, Sum(contributions))
	assert.Zero(t, Sum(nil))
}
