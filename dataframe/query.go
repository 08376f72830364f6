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
	"github.com/expr-lang/expr"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Query keeps the rows for which a boolean expression holds. Columns are variables of
// the expression, e.g. "rank <= 5 && group != '3'". Cells are used as stored, so
// numeric comparisons need a validated table. Types of variables are taken from the
// first row.
func Query(df *DataFrame, filter string) (*DataFrame, error) {
	env := lo.SliceToMap(df.names, func(name string) (string, any) {
		if df.length == 0 {
			return name, nil
		}
		return name, df.columns[name][0]
	})
	program, err := expr.Compile(filter, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, errors.Annotatef(err, "invalid filter %q", filter)
	}
	keep := make([]bool, df.length)
	for i := range keep {
		result, err := expr.Run(program, df.Row(i))
		if err != nil {
			return nil, errors.Annotatef(err, "evaluate filter %q on row %d", filter, i)
		}
		keep[i], _ = result.(bool)
	}
	return df.Filter(func(i int) bool { return keep[i] }), nil
}
