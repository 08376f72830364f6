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

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

const (
	// ErrMissingColumns means a table lacks a required column.
	ErrMissingColumns = errors.ConstError("dataframe does not contain columns")
	// ErrInvalidValue means a cell cannot be coerced to the canonical type of its column.
	ErrInvalidValue = errors.NotValid
)

type kind int

const (
	kindString kind = iota
	kindFloat
)

var canonicalKinds = map[string]kind{
	ColumnUser:                 kindString,
	ColumnItem:                 kindString,
	ColumnRank:                 kindFloat,
	ColumnGroup:                kindString,
	ColumnTargetRepresentation: kindFloat,
}

// RequireColumns fails with ErrMissingColumns if any name is not a column of df.
// The error message lists every required column and the columns found.
func RequireColumns(df *DataFrame, names ...string) error {
	if df == nil {
		return errors.Annotatef(ErrMissingColumns, "required %v, found none", names)
	}
	if !df.HasColumns(names...) {
		return errors.Annotatef(ErrMissingColumns, "required %v, found %v", names, df.names)
	}
	return nil
}

// Validate checks that df contains the required columns and returns a copy with the
// known columns coerced to their canonical types:
//
//	user, item, group             -> string
//	rank, target_representation   -> float64
//
// Other columns are copied untouched. Missing cells stay missing for string columns
// and become NaN for float columns.
func Validate(df *DataFrame, required ...string) (*DataFrame, error) {
	if err := RequireColumns(df, required...); err != nil {
		return nil, errors.Trace(err)
	}
	coerced := df.Copy()
	for _, name := range coerced.names {
		k, known := canonicalKinds[name]
		if !known {
			continue
		}
		values := coerced.columns[name]
		for i, v := range values {
			switch k {
			case kindString:
				if v == nil {
					continue
				}
				if _, ok := v.(string); ok {
					continue
				}
				s, err := cast.ToStringE(v)
				if err != nil {
					return nil, errors.NotValidf("cell %v in column %s", v, name)
				}
				values[i] = s
			case kindFloat:
				if v == nil {
					values[i] = math.NaN()
					continue
				}
				f, err := cast.ToFloat64E(v)
				if err != nil {
					return nil, errors.NotValidf("cell %v in column %s", v, name)
				}
				values[i] = f
			}
		}
	}
	return coerced, nil
}
