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
	"github.com/gorse-io/recsyseval/common/util"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/gorse-io/recsyseval/fairness"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var fairnessCommand = &cobra.Command{
	Use:   "fairness",
	Short: "Evaluate how recommendations are distributed over groups",
}

var entropyCommand = &cobra.Command{
	Use:   "entropy <top-n.csv> [groups.csv]",
	Short: "Entropy of recommendations over groups",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, rel, err := readGroupedRecommendations(cmd, args)
		if err != nil {
			return errors.Trace(err)
		}
		groups, err := fairness.EntropyByGroup(topN, rel, fairnessOptions(cmd)...)
		if err != nil {
			return errors.Trace(err)
		}
		return writeMetric(cmd, "entropy", groups)
	},
}

var klCommand = &cobra.Command{
	Use:   "kl <top-n.csv> [groups.csv] --target group=value,...",
	Short: "Kullback-Leibler divergence of recommendations from a target representation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, rel, err := readGroupedRecommendations(cmd, args)
		if err != nil {
			return errors.Trace(err)
		}
		targetFlag, _ := cmd.Flags().GetStringToString("target")
		targetValues, err := util.ParseFloatMap[float64](targetFlag)
		if err != nil {
			return errors.Trace(err)
		}
		target := dataframe.Empty(dataframe.ColumnGroup, dataframe.ColumnTargetRepresentation)
		for group, value := range targetValues {
			if err = target.Append(group, value); err != nil {
				return errors.Trace(err)
			}
		}
		groups, err := fairness.KullbackLeiblerByGroup(topN, target, rel, fairnessOptions(cmd)...)
		if err != nil {
			return errors.Trace(err)
		}
		return writeMetric(cmd, "kl", groups)
	},
}

var miCommand = &cobra.Command{
	Use:   "mi <top-n.csv> [groups.csv]",
	Short: "Mutual information between groups of the flagged actor and the other actor",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, rel, err := readGroupedRecommendations(cmd, args)
		if err != nil {
			return errors.Trace(err)
		}
		flagName := globalConfig.Fairness.Flag
		if cmd.Flags().Changed("flag") {
			flagName, _ = cmd.Flags().GetString("flag")
		}
		flag, err := fairness.ParseFlag(flagName)
		if err != nil {
			return errors.Trace(err)
		}
		mi, err := fairness.MutualInformation(topN, flag, rel, fairnessOptions(cmd)...)
		if err != nil {
			return errors.Trace(err)
		}
		return writeValues(cmd, "metric", map[string]float64{"mi": mi})
	},
}

func init() {
	fairnessCommand.PersistentFlags().String("rel", "", "relevant items (user, item, rank) enabling effectiveness weights")
	fairnessCommand.PersistentFlags().Bool("strict-log", false, "propagate NaN terms such as 0*log(0) instead of dropping them")
	klCommand.Flags().StringToString("target", nil, "target representation of groups")
	_ = klCommand.MarkFlagRequired("target")
	miCommand.Flags().String("flag", "item", "segmented actor (user or item)")
	fairnessCommand.AddCommand(entropyCommand, klCommand, miCommand)
	rootCommand.AddCommand(fairnessCommand)
}

func fairnessOptions(cmd *cobra.Command) []fairness.Option {
	strictLog := globalConfig.Fairness.StrictLog
	if cmd.Flags().Changed("strict-log") {
		strictLog, _ = cmd.Flags().GetBool("strict-log")
	}
	if strictLog {
		return []fairness.Option{fairness.WithStrictLog()}
	}
	return nil
}

// readGroupedRecommendations reads recommendations and relevant items, then attaches
// groups of users or items to both. Without a group table, recommendations must
// already carry a group column.
func readGroupedRecommendations(cmd *cobra.Command, args []string) (topN, rel *dataframe.DataFrame, err error) {
	if topN, err = readRecommendations(cmd, args[0]); err != nil {
		return nil, nil, errors.Trace(err)
	}
	if relPath, _ := cmd.Flags().GetString("rel"); relPath != "" {
		if rel, err = readFrame(cmd, relPath); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	if len(args) < 2 {
		return topN, rel, nil
	}
	groups, err := readFrame(cmd, args[1])
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if err = dataframe.RequireColumns(groups, dataframe.ColumnGroup); err != nil {
		return nil, nil, errors.Trace(err)
	}
	on := lo.Ternary(groups.HasColumns(dataframe.ColumnUser), dataframe.ColumnUser, dataframe.ColumnItem)
	if topN, err = dataframe.Merge(topN, groups, on); err != nil {
		return nil, nil, errors.Trace(err)
	}
	if rel != nil {
		if rel, err = dataframe.Merge(rel, groups, on); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	return topN, rel, nil
}

// writeMetric prints the contribution of every group followed by the total.
func writeMetric(cmd *cobra.Command, name string, groups map[string]float64) error {
	values := lo.MapKeys(groups, func(_ float64, group string) string {
		return "group " + group
	})
	values[name] = fairness.Sum(groups)
	return writeValues(cmd, "metric", values)
}
