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

package dataframe

import (
	"math"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataFrame(t *testing.T) {
	df := New([]string{"user", "item", "rank"},
		[]any{"1", "2", 1},
		[]any{"1", "3", 2},
		[]any{"2", "3", nil})
	assert.Equal(t, 3, df.Len())
	assert.Equal(t, []string{"user", "item", "rank"}, df.Columns())
	assert.True(t, df.HasColumns("user", "rank"))
	assert.False(t, df.HasColumns("user", "group"))
	assert.Equal(t, map[string]any{"user": "1", "item": "3", "rank": 2}, df.Row(1))

	users, err := df.Strings("user")
	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "1", "2"}, users)
	ranks, err := df.Floats("rank")
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, ranks[:2])
	assert.True(t, math.IsNaN(ranks[2]))
	_, err = df.Floats("group")
	assert.True(t, errors.Is(err, ErrMissingColumns))

	assert.Panics(t, func() {
		New([]string{"user", "item"}, []any{"1"})
	})
}

func TestDataFrame_Mutations(t *testing.T) {
	df := New([]string{"user", "item"}, []any{"1", "2"}, []any{"2", "3"})
	cp := df.Copy()
	assert.NoError(t, cp.Append("3", "4"))
	assert.Equal(t, 2, df.Len())
	assert.Equal(t, 3, cp.Len())
	assert.Error(t, cp.Append("3"))

	assert.Nil(t, cp.Column("group"))

	filtered := cp.Filter(func(i int) bool { return i != 1 })
	assert.Equal(t, []any{"1", "3"}, filtered.Column("user"))

	empty := Empty("user", "user", "item")
	assert.Equal(t, []string{"user", "item"}, empty.Columns())
	assert.Equal(t, 0, empty.Len())

	_, err := FromRows([]string{"a", "a"}, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	df := New([]string{"user", "item", "rank", "extra"},
		[]any{1, 10, "1", 3},
		[]any{2, "11", 2, nil})
	validated, err := Validate(df, "user", "item", "rank")
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2"}, validated.Column("user"))
	assert.Equal(t, []any{"10", "11"}, validated.Column("item"))
	assert.Equal(t, []any{1.0, 2.0}, validated.Column("rank"))
	assert.Equal(t, []any{3, nil}, validated.Column("extra"))
	// input untouched
	assert.Equal(t, []any{1, 2}, df.Column("user"))

	_, err = Validate(df, "user", "item", "rank", "group")
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "[user item rank group]")

	_, err = Validate(New([]string{"rank"}, []any{"first"}), "rank")
	assert.True(t, errors.Is(err, ErrInvalidValue))

	_, err = Validate(nil, "user")
	assert.True(t, errors.Is(err, ErrMissingColumns))
}

func TestParseAxis(t *testing.T) {
	axis, err := ParseAxis("user")
	assert.NoError(t, err)
	assert.Equal(t, User, axis)
	assert.Equal(t, Item, axis.Other())
	axis, err = ParseAxis("item")
	assert.NoError(t, err)
	assert.Equal(t, Item, axis)
	assert.Equal(t, "item", axis.String())
	_, err = ParseAxis("users")
	assert.True(t, errors.Is(err, ErrInvalidGroupAxis))
	assert.False(t, Axis(7).Valid())
	assert.Equal(t, "unknown", Axis(7).String())

	var flagValue Axis
	assert.NoError(t, flagValue.Set("item"))
	assert.Equal(t, Item, flagValue)
	assert.Error(t, flagValue.Set("ratings"))
	assert.Equal(t, "axis", flagValue.Type())
}

func TestMerge(t *testing.T) {
	recommendations := New([]string{"user", "item", "rank"},
		[]any{"1", "1", 1},
		[]any{"1", "2", 2},
		[]any{"2", "3", 1},
		[]any{"2", "9", 2})
	groups := New([]string{"item", "group"},
		[]any{1, "1"},
		[]any{"2", "1"},
		[]any{"3", "2"})
	merged, err := Merge(recommendations, groups, "item")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "item", "rank", "group"}, merged.Columns())
	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []any{"1", "1", "2"}, merged.Column("group"))

	// duplicated non-key columns
	other := New([]string{"item", "rank"}, []any{"1", 5}, []any{"1", 6})
	merged, err = Merge(recommendations, other, "item")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "item", "rank_x", "rank_y"}, merged.Columns())
	assert.Equal(t, []any{5, 6}, merged.Column("rank_y"))

	_, err = Merge(recommendations, groups, "group")
	assert.True(t, errors.Is(err, ErrMissingColumns))
	_, err = Merge(recommendations, groups)
	assert.Error(t, err)
}
