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

	"github.com/extrame/xls"
)

// XlsConverter handles legacy BIFF8 workbooks.
type XlsConverter struct{}

// NewXlsConverter creates a new XlsConverter.
func NewXlsConverter() *XlsConverter {
	return &XlsConverter{}
}

func (c *XlsConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".xls"
}

func (c *XlsConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	// extrame/xls only opens paths.
	path, cleanup, err := src.Materialize(".xls")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var sheets []sheetTable
	for i := 0; i < wb.NumSheets(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for col := 0; col < row.LastCol(); col++ {
				cells = append(cells, row.Col(col))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, sheetTable{name: name, rows: rows})
	}

	return &DocumentConverterResult{Markdown: renderSheets(sheets)}, nil
}
