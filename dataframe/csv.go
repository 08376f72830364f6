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
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

// ReadCSVFile loads a DataFrame from a CSV file with a header line.
func ReadCSVFile(path, sep string) (*DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	df, err := ReadCSV(file, sep)
	if err != nil {
		return nil, errors.Annotatef(err, "read %s", path)
	}
	return df, nil
}

// ReadCSV loads a DataFrame from CSV text. The first line is the header. Cells are
// kept as strings and empty cells are missing values; use Validate to coerce them.
func ReadCSV(r io.Reader, sep string) (*DataFrame, error) {
	var (
		df      *DataFrame
		readErr error
	)
	sc := bufio.NewScanner(r)
	err := ReadLines(sc, sep, func(lineNumber int, fields []string) bool {
		if lineNumber == 0 {
			names := make([]string, len(fields))
			for i, field := range fields {
				names[i] = strings.TrimSpace(field)
			}
			df = Empty(names...)
			if len(df.names) != len(names) {
				readErr = errors.NotValidf("duplicated columns in header %v", names)
				return false
			}
			return true
		}
		if len(fields) == 1 && fields[0] == "" {
			// skip blank lines
			return true
		}
		if len(fields) != len(df.names) {
			readErr = errors.NotValidf("line %d has %d fields but the header has %d", lineNumber+1, len(fields), len(df.names))
			return false
		}
		row := make([]any, len(fields))
		for i, field := range fields {
			if field != "" {
				row[i] = field
			}
		}
		readErr = df.Append(row...)
		return readErr == nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if readErr != nil {
		return nil, errors.Trace(readErr)
	}
	if df == nil {
		return nil, errors.NotValidf("empty csv without header")
	}
	return df, nil
}

// WriteCSV writes a DataFrame as CSV text with a header line.
func WriteCSV(w io.Writer, df *DataFrame, sep string) error {
	writer := bufio.NewWriter(w)
	line := make([]string, len(df.names))
	for i, name := range df.names {
		line[i] = Escape(name)
	}
	if _, err := writer.WriteString(strings.Join(line, sep) + "\n"); err != nil {
		return errors.Trace(err)
	}
	for i := 0; i < df.length; i++ {
		for j, name := range df.names {
			line[j] = Escape(cellString(df.columns[name][i]))
		}
		if _, err := writer.WriteString(strings.Join(line, sep) + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(writer.Flush())
}

// cellString formats a cell. Lists are joined by spaces.
func cellString(v any) string {
	if values, ok := v.([]string); ok {
		return strings.Join(values, " ")
	}
	return cast.ToString(v)
}

// Escape text for csv.
func Escape(text string) string {
	// check if need escape
	if !strings.Contains(text, ",") &&
		!strings.Contains(text, "\"") &&
		!strings.Contains(text, "\n") &&
		!strings.Contains(text, "\r") {
		return text
	}
	// start to encode
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parse fields of each line for csv file.
func ReadLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		line := []rune(sc.Text())
		if quoted {
			builder.WriteString("\r\n")
		}
		for i := 0; i < len(line); i++ {
			if string(line[i]) == sep && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		lineCount++
	}
	return sc.Err()
}
