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

//go:build nopdfium

package markitdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFPages reads the text of every page row by row. An empty word
// inside a row marks a word boundary.
func extractPDFPages(ctx context.Context, data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}

		var text strings.Builder
		for _, row := range rows {
			var line strings.Builder
			gap := false
			for _, word := range row.Content {
				if word.S == "" {
					gap = true
					continue
				}
				if gap && line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
					line.WriteByte(' ')
				}
				line.WriteString(word.S)
				gap = false
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				text.WriteString(s)
				text.WriteByte('\n')
			}
		}
		pages = append(pages, text.String())
	}
	return pages, nil
}
