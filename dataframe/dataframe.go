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
	"fmt"
	"math"
	"slices"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

// Canonical column names.
const (
	ColumnUser                 = "user"
	ColumnItem                 = "item"
	ColumnRank                 = "rank"
	ColumnGroup                = "group"
	ColumnTargetRepresentation = "target_representation"
	ColumnPercentage           = "percentage"
	ColumnPosItems             = "pos_items"
)

// DataFrame is an in-memory table stored column by column. A nil cell is a missing
// value. Row order carries no meaning for any operation in this module.
type DataFrame struct {
	names   []string
	columns map[string][]any
	length  int
}

// New creates a DataFrame from column names and rows. It panics if a row does not
// have one cell per column.
func New(names []string, rows ...[]any) *DataFrame {
	df, err := FromRows(names, rows)
	if err != nil {
		panic(err)
	}
	return df
}

// FromRows creates a DataFrame from column names and rows.
func FromRows(names []string, rows [][]any) (*DataFrame, error) {
	df := Empty(names...)
	if len(df.names) != len(names) {
		return nil, errors.NotValidf("duplicated column names %v", names)
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, errors.NotValidf("row %d has %d cells but %d columns", i, len(row), len(names))
		}
		for j, name := range names {
			df.columns[name] = append(df.columns[name], row[j])
		}
	}
	df.length = len(rows)
	return df, nil
}

// Empty creates a DataFrame with columns but no rows.
func Empty(names ...string) *DataFrame {
	df := &DataFrame{columns: make(map[string][]any, len(names))}
	for _, name := range names {
		if _, exist := df.columns[name]; exist {
			continue
		}
		df.names = append(df.names, name)
		df.columns[name] = []any{}
	}
	return df
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	return df.length
}

// Columns returns column names in insertion order.
func (df *DataFrame) Columns() []string {
	return slices.Clone(df.names)
}

// HasColumns returns true if the DataFrame contains every name.
func (df *DataFrame) HasColumns(names ...string) bool {
	for _, name := range names {
		if _, exist := df.columns[name]; !exist {
			return false
		}
	}
	return true
}

// Column returns a copy of the cells in a column, or nil if the column is absent.
func (df *DataFrame) Column(name string) []any {
	values, exist := df.columns[name]
	if !exist {
		return nil
	}
	return slices.Clone(values)
}

// Row returns the cells of the i-th row keyed by column name.
func (df *DataFrame) Row(i int) map[string]any {
	row := make(map[string]any, len(df.names))
	for _, name := range df.names {
		row[name] = df.columns[name][i]
	}
	return row
}

// Append adds one row in column order.
func (df *DataFrame) Append(row ...any) error {
	if len(row) != len(df.names) {
		return errors.NotValidf("row has %d cells but %d columns", len(row), len(df.names))
	}
	for j, name := range df.names {
		df.columns[name] = append(df.columns[name], row[j])
	}
	df.length++
	return nil
}

// Copy returns a shallow copy. Cells are shared but columns are not.
func (df *DataFrame) Copy() *DataFrame {
	cp := &DataFrame{
		names:   slices.Clone(df.names),
		columns: make(map[string][]any, len(df.columns)),
		length:  df.length,
	}
	for name, values := range df.columns {
		cp.columns[name] = slices.Clone(values)
	}
	return cp
}

// Filter returns the rows for which keep returns true.
func (df *DataFrame) Filter(keep func(i int) bool) *DataFrame {
	filtered := Empty(df.names...)
	for i := 0; i < df.length; i++ {
		if keep(i) {
			for _, name := range df.names {
				filtered.columns[name] = append(filtered.columns[name], df.columns[name][i])
			}
			filtered.length++
		}
	}
	return filtered
}

// Strings returns a column as strings. Missing cells become empty strings.
func (df *DataFrame) Strings(name string) ([]string, error) {
	values, exist := df.columns[name]
	if !exist {
		return nil, errors.Annotatef(ErrMissingColumns, "column %s", name)
	}
	ret := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errors.NotValidf("cell %v in column %s", v, name)
		}
		ret[i] = s
	}
	return ret, nil
}

// Floats returns a column as float64. Missing cells become NaN.
func (df *DataFrame) Floats(name string) ([]float64, error) {
	values, exist := df.columns[name]
	if !exist {
		return nil, errors.Annotatef(ErrMissingColumns, "column %s", name)
	}
	ret := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			ret[i] = math.NaN()
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, errors.NotValidf("cell %v in column %s", v, name)
		}
		ret[i] = f
	}
	return ret, nil
}

func (df *DataFrame) String() string {
	return fmt.Sprintf("DataFrame%v[%d rows]", df.names, df.length)
}
