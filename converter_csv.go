// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
)

// CsvConverter renders comma and tab separated files as a markdown table.
// The first record is the header.
type CsvConverter struct{}

// NewCsvConverter creates a new CsvConverter.
func NewCsvConverter() *CsvConverter {
	return &CsvConverter{}
}

func (c *CsvConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".csv", ".tsv")
}

func (c *CsvConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(decodeText(data, opts.Charset)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if opts.FileExtension == ".tsv" {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	return &DocumentConverterResult{Markdown: renderMarkdownTable(records)}, nil
}

// renderMarkdownTable renders rows as a markdown table. The first row is the
// header and fixes the column count; short rows are padded, long rows cut.
func renderMarkdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}
	cols := len(records[0])

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = escapeTableCell(row[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(records[0])
	b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, row := range records[1:] {
		writeRow(row)
	}
	return b.String()
}

var tableCellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeTableCell(s string) string {
	return tableCellReplacer.Replace(strings.TrimSpace(s))
}
