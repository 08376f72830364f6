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
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/gorse-io/recsyseval/dataset"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var segmentCommand = &cobra.Command{
	Use:   "segment",
	Short: "Segment users or items into groups",
}

var interactionCommand = &cobra.Command{
	Use:   "interaction <interactions.csv>",
	Short: "Segment items (or users) by their cumulative number of interactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegmentation(cmd, args[0], dataset.InteractionSegmentation)
	},
}

var activityCommand = &cobra.Command{
	Use:   "activity <interactions.csv>",
	Short: "Segment users by their number of interactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegmentation(cmd, args[0], dataset.ActivitySegmentation)
	},
}

var popularityCommand = &cobra.Command{
	Use:   "popularity <interactions.csv>",
	Short: "Compute the share of interactions of every item (or user)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegmentation(cmd, args[0], dataset.PopularityPercentage)
	},
}

var featureCommand = &cobra.Command{
	Use:   "feature <features.csv>",
	Short: "Segment users or items by a discrete feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := readFrame(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		fillValue := globalConfig.Segment.FillValue
		if cmd.Flags().Changed("fill-na") {
			fillValue, _ = cmd.Flags().GetString("fill-na")
		}
		segments, err := dataset.DiscreteFeatureSegmentation(feature, dataset.WithFillValue(fillValue))
		if err != nil {
			return errors.Trace(err)
		}
		return writeFrame(cmd, segments)
	},
}

func init() {
	segmentCommand.PersistentFlags().Float64Slice("proportions", nil, "proportions of groups")
	segmentCommand.PersistentFlags().Int("min-interaction", 0, "minimum number of interactions")
	segmentCommand.PersistentFlags().String("group-by", "item", "segmented actor (user or item)")
	segmentCommand.PersistentFlags().Int64("seed", 0, "random seed of tie-break")
	featureCommand.Flags().String("fill-na", "-1", "value of missing features")
	segmentCommand.AddCommand(interactionCommand, activityCommand, popularityCommand, featureCommand)
	rootCommand.AddCommand(segmentCommand)
}

func runSegmentation(cmd *cobra.Command, path string,
	segment func(*dataframe.DataFrame, ...dataset.SegmentOption) (*dataframe.DataFrame, error)) error {
	interactions, err := readFrame(cmd, path)
	if err != nil {
		return errors.Trace(err)
	}
	opts, err := segmentOptions(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	segments, err := segment(interactions, opts...)
	if err != nil {
		return errors.Trace(err)
	}
	return writeFrame(cmd, segments)
}

// segmentOptions merges command line flags into the configuration.
func segmentOptions(cmd *cobra.Command) ([]dataset.SegmentOption, error) {
	conf := globalConfig.Segment
	flags := cmd.Flags()
	if flags.Changed("proportions") {
		conf.Proportions, _ = flags.GetFloat64Slice("proportions")
	}
	if flags.Changed("min-interaction") {
		conf.MinInteraction, _ = flags.GetInt("min-interaction")
	}
	if flags.Changed("group-by") {
		conf.GroupBy, _ = flags.GetString("group-by")
	}
	if flags.Changed("seed") {
		conf.Seed, _ = flags.GetInt64("seed")
	}
	groupBy, err := dataframe.ParseAxis(conf.GroupBy)
	if err != nil {
		return nil, errors.Trace(err)
	}
	opts := []dataset.SegmentOption{
		dataset.WithMinInteraction(conf.MinInteraction),
		dataset.WithGroupBy(groupBy),
		dataset.WithSeed(conf.Seed),
	}
	if len(conf.Proportions) > 0 {
		opts = append(opts, dataset.WithProportions(conf.Proportions...))
	}
	return opts, nil
}
