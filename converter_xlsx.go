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
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxConverter handles XLSX workbooks, one markdown table per sheet.
type XlsxConverter struct {
	markitdown *MarkItDown
}

// NewXlsxConverter creates a new XlsxConverter.
func NewXlsxConverter(m *MarkItDown) *XlsxConverter {
	return &XlsxConverter{markitdown: m}
}

func (c *XlsxConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".xlsx"
}

func (c *XlsxConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var sheets []sheetTable
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, sheetTable{name: name, rows: rows})
	}

	var title string
	if props, err := f.GetDocProps(); err == nil {
		title = strings.TrimSpace(props.Title)
	}

	return &DocumentConverterResult{
		Markdown: renderSheets(sheets),
		Title:    title,
	}, nil
}

type sheetTable struct {
	name string
	rows [][]string
}

// renderSheets writes each non-empty sheet as a "## name" heading followed
// by its table.
func renderSheets(sheets []sheetTable) string {
	var b strings.Builder
	for _, s := range sheets {
		if len(s.rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", s.name)
		b.WriteString(renderMarkdownTable(padRows(s.rows)))
		b.WriteString("\n")
	}
	return b.String()
}

// padRows widens the header to the widest row, since spreadsheet rows are
// ragged and renderMarkdownTable sizes columns from the header.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if len(rows[0]) == width {
		return rows
	}
	header := make([]string, width)
	copy(header, rows[0])
	out := append([][]string{header}, rows[1:]...)
	return out
}
