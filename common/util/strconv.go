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

package util

import (
	"strconv"
	"strings"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/exp/constraints"
)

func ParseFloat[T constraints.Float](s string) (T, error) {
	var zero T
	v, err := strconv.ParseFloat(strings.TrimSpace(s), int(unsafe.Sizeof(zero))*8)
	return T(v), err
}

// ParseFloatMap parses every value of a map.
func ParseFloatMap[T constraints.Float](m map[string]string) (map[string]T, error) {
	ret := make(map[string]T, len(m))
	for k, s := range m {
		v, err := ParseFloat[T](s)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid value of %s", k)
		}
		ret[k] = v
	}
	return ret, nil
}
