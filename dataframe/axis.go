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
)

// ErrInvalidGroupAxis means an axis is neither user nor item.
const ErrInvalidGroupAxis = errors.ConstError("invalid group axis")

// Axis selects the actor of a recommendation scenario.
type Axis int

const (
	User Axis = iota
	Item
)

// ParseAxis converts "user" or "item" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.TrimSpace(s) {
	case ColumnUser:
		return User, nil
	case ColumnItem:
		return Item, nil
	default:
		return 0, errors.Annotatef(ErrInvalidGroupAxis, "%q is neither user nor item", s)
	}
}

// Valid returns true for User and Item.
func (a Axis) Valid() bool {
	return a == User || a == Item
}

// Other returns the opposite axis.
func (a Axis) Other() Axis {
	if a == User {
		return Item
	}
	return User
}

// String returns the column name of the axis.
func (a Axis) String() string {
	switch a {
	case User:
		return ColumnUser
	case Item:
		return ColumnItem
	default:
		return "unknown"
	}
}

// Set implements pflag.Value.
func (a *Axis) Set(s string) error {
	axis, err := ParseAxis(s)
	if err != nil {
		return err
	}
	*a = axis
	return nil
}

// Type implements pflag.Value.
func (a *Axis) Type() string {
	return "axis"
}
