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
	"github.com/gorse-io/recsyseval/accuracy"
	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var accuracyCommand = &cobra.Command{
	Use:   "accuracy <top-n.csv> <test.csv>",
	Short: "Evaluate recommendations against held-out interactions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topN, err := readRecommendations(cmd, args[0])
		if err != nil {
			return errors.Trace(err)
		}
		test, err := readFrame(cmd, args[1])
		if err != nil {
			return errors.Trace(err)
		}
		relevant, err := accuracy.FindRelevantItems(test)
		if err != nil {
			return errors.Trace(err)
		}

		conf := globalConfig.Accuracy
		if cmd.Flags().Changed("at") {
			conf.Ats, _ = cmd.Flags().GetIntSlice("at")
		}
		if cmd.Flags().Changed("metric") {
			conf.Metrics, _ = cmd.Flags().GetStringSlice("metric")
		}
		var scores *dataframe.DataFrame
		for _, name := range conf.Metrics {
			scorer, exist := accuracy.Scorers[name]
			if !exist {
				return errors.NotFoundf("metric %s", name)
			}
			metricScores, err := accuracy.Evaluate(topN, relevant, name, scorer, conf.Ats...)
			if err != nil {
				return errors.Trace(err)
			}
			if scores == nil {
				scores = metricScores
			} else if scores, err = dataframe.Merge(scores, metricScores, dataframe.ColumnUser); err != nil {
				return errors.Trace(err)
			}
		}
		if scores == nil {
			return errors.NotValidf("empty metrics")
		}

		if perUser, _ := cmd.Flags().GetBool("per-user"); perUser {
			if scores, err = dataframe.Merge(scores, accuracy.RelevantItemsFrame(relevant), dataframe.ColumnUser); err != nil {
				return errors.Trace(err)
			}
			return writeFrame(cmd, scores)
		}
		means, err := accuracy.Mean(scores)
		if err != nil {
			return errors.Trace(err)
		}
		return writeValues(cmd, "metric", means)
	},
}

func init() {
	accuracyCommand.Flags().IntSlice("at", nil, "cutoffs of recommendation lists")
	accuracyCommand.Flags().StringSlice("metric", nil, "accuracy metrics (NDCG, Precision, Recall, HR, MAP, MRR)")
	accuracyCommand.Flags().Bool("per-user", false, "print scores and relevant items of every user")
	rootCommand.AddCommand(accuracyCommand)
}
