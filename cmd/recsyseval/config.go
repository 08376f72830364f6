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
	"github.com/gorse-io/recsyseval/config"
	"github.com/invopop/jsonschema"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var showConfigCommand = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeJSON(cmd.OutOrStdout(), globalConfig)
	},
}

var schemaCommand = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := jsonschema.Reflector{
			FieldNameTag:               "mapstructure",
			RequiredFromJSONSchemaTags: true,
		}
		return errors.Trace(writeJSON(cmd.OutOrStdout(), reflector.Reflect(&config.Config{})))
	},
}

func init() {
	configCommand.AddCommand(showConfigCommand, schemaCommand)
	rootCommand.AddCommand(configCommand)
}
