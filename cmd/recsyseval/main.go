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
	"fmt"

	"github.com/gorse-io/recsyseval/cmd/version"
	"github.com/gorse-io/recsyseval/common/log"
	"github.com/gorse-io/recsyseval/config"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var globalConfig = config.GetDefaultConfig()

var rootCommand = &cobra.Command{
	Use:   "recsyseval",
	Short: "Evaluate fairness, accuracy and beyond-accuracy metrics of recommendations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON && !debug {
			log.CloseLogger()
		}

		// load config
		configPath, _ := cmd.Flags().GetString("config")
		if configPath != "" {
			log.Logger().Debug("load config", zap.String("config", configPath))
		}
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			return errors.Trace(err)
		}
		if cmd.Flags().Changed("sep") {
			conf.Input.Separator, _ = cmd.Flags().GetString("sep")
		}
		globalConfig = conf
		return nil
	},
	SilenceUsage: true,
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show the version of recsyseval",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("sep", ",", "separator of CSV files")
	rootCommand.PersistentFlags().Bool("json", false, "print results as JSON")
	rootCommand.PersistentFlags().StringP("output", "o", "", "write result tables to a CSV file")
	rootCommand.PersistentFlags().String("filter", "", "keep recommendations matching an expression, e.g. \"rank <= 5\"")
	rootCommand.PersistentFlags().Bool("progress", false, "show progress of reading input files")
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
