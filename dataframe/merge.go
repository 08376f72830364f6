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
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Merge performs an inner join of left and right on the given columns. Keys are
// compared by their string form, so "1" matches 1. Non-key columns present in both
// tables get the suffixes _x (left) and _y (right). Every matching pair of rows
// produces one output row.
func Merge(left, right *DataFrame, on ...string) (*DataFrame, error) {
	if len(on) == 0 {
		return nil, errors.NotValidf("empty join keys")
	}
	if err := RequireColumns(left, on...); err != nil {
		return nil, errors.Trace(err)
	}
	if err := RequireColumns(right, on...); err != nil {
		return nil, errors.Trace(err)
	}

	// output layout
	leftNames := lo.Map(left.names, func(name string, _ int) string {
		if !lo.Contains(on, name) && right.HasColumns(name) {
			return name + "_x"
		}
		return name
	})
	rightOnly := lo.Filter(right.names, func(name string, _ int) bool {
		return !lo.Contains(on, name)
	})
	rightNames := lo.Map(rightOnly, func(name string, _ int) string {
		if left.HasColumns(name) {
			return name + "_y"
		}
		return name
	})
	merged := Empty(append(leftNames, rightNames...)...)

	// index right rows by key
	index := make(map[string][]int)
	for i := 0; i < right.length; i++ {
		key := joinKey(right, on, i)
		index[key] = append(index[key], i)
	}
	for i := 0; i < left.length; i++ {
		for _, j := range index[joinKey(left, on, i)] {
			for k, name := range left.names {
				merged.columns[leftNames[k]] = append(merged.columns[leftNames[k]], left.columns[name][i])
			}
			for k, name := range rightOnly {
				merged.columns[rightNames[k]] = append(merged.columns[rightNames[k]], right.columns[name][j])
			}
			merged.length++
		}
	}
	return merged, nil
}

func joinKey(df *DataFrame, on []string, i int) string {
	parts := make([]string, len(on))
	for k, name := range on {
		parts[k] = cast.ToString(df.columns[name][i])
	}
	return strings.Join(parts, "\x00")
}
