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

package main

import (
	"github.com/gorse-io/recsyseval/beyond"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var beyondCommand = &cobra.Command{
	Use:   "beyond",
	Short: "Evaluate beyond-accuracy properties of recommendations",
}

var coverageCommand = &cobra.Command{
	Use:   "coverage <top-n.csv> <items.csv>",
	Short: "Fraction of the catalog recommended to at least one user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, err := readRecommendations(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		catalog, err := readFrame(cmd, args[1])
		if err != nil {
			return errors.Trace(err)
		}
		items, err := catalog.Strings(dataframe.ColumnItem)
		if err != nil {
			return errors.Trace(err)
		}
		coverage, err := beyond.Coverage(topN, items)
		if err != nil {
			return errors.Trace(err)
		}
		return writeValues(cmd, "metric", map[string]float64{"coverage": coverage})
	},
}

var noveltyCommand = &cobra.Command{
	Use:   "novelty <top-n.csv> <popularity.csv>",
	Short: "Mean self-information of recommended items",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, err := readRecommendations(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		popularity, err := readFrame(cmd, args[1])
		if err != nil {
			return errors.Trace(err)
		}
		if topN, err = dataframe.Merge(topN, popularity, dataframe.ColumnItem); err != nil {
			return errors.Trace(err)
		}
		definition := globalConfig.Beyond.Popularity
		if cmd.Flags().Changed("popularity") {
			definition, _ = cmd.Flags().GetString("popularity")
		}
		novelty, err := beyond.Novelty(topN, definition)
		if err != nil {
			return errors.Trace(err)
		}
		return writeValues(cmd, "metric", map[string]float64{"novelty": novelty})
	},
}

func init() {
	noveltyCommand.Flags().String("popularity", beyond.PopularityGroup, "popularity column (group or percentage)")
	beyondCommand.AddCommand(coverageCommand, noveltyCommand)
	rootCommand.AddCommand(beyondCommand)
}
