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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gorse-io/recsyseval/dataframe"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// readFrame reads a CSV file with a header row.
func readFrame(cmd *cobra.Command, path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var reader io.Reader = file
	if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
		stat, err := file.Stat()
		if err != nil {
			return nil, errors.Trace(err)
		}
		pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "reading "+path))
		reader = &pbReader
	}
	df, err := dataframe.ReadCSV(reader, globalConfig.Input.Separator)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read %s", path)
	}
	return df, nil
}

// readRecommendations reads a (user, item, rank, ...) table and applies --filter.
func readRecommendations(cmd *cobra.Command, path string) (*dataframe.DataFrame, error) {
	df, err := readFrame(cmd, path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	df, err = dataframe.Validate(df, dataframe.ColumnUser, dataframe.ColumnItem, dataframe.ColumnRank)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid recommendations in %s", path)
	}
	if filter, _ := cmd.Flags().GetString("filter"); filter != "" {
		if df, err = dataframe.Query(df, filter); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return df, nil
}

// writeFrame prints a table, or writes it to the --output file.
func writeFrame(cmd *cobra.Command, df *dataframe.DataFrame) error {
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		file, err := os.Create(output)
		if err != nil {
			return errors.Trace(err)
		}
		defer file.Close()
		return dataframe.WriteCSV(file, df, globalConfig.Input.Separator)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		rows := lo.Map(lo.Range(df.Len()), func(i int, _ int) map[string]any {
			return lo.MapValues(df.Row(i), func(v any, _ string) any { return jsonValue(v) })
		})
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header(df.Columns())
	for i := 0; i < df.Len(); i++ {
		row := df.Row(i)
		if err := table.Append(lo.Map(df.Columns(), func(name string, _ int) string {
			return formatCell(row[name])
		})); err != nil {
			return errors.Trace(err)
		}
	}
	return table.Render()
}

// writeValues prints named values sorted by name.
func writeValues(cmd *cobra.Command, header string, values map[string]float64) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), lo.MapValues(values, func(v float64, _ string) any {
			return jsonValue(v)
		}))
	}
	keys := lo.Keys(values)
	sort.Strings(keys)
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{header, "value"})
	for _, key := range keys {
		if err := table.Append([]string{key, formatCell(values[key])}); err != nil {
			return errors.Trace(err)
		}
	}
	return table.Render()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Trace(encoder.Encode(v))
}

// jsonValue replaces NaN and infinities, which JSON cannot represent, with null.
func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.6f", v)
	case []string:
		return fmt.Sprint(v)
	default:
		return cast.ToString(v)
	}
}
