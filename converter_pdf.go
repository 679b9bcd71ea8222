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
	"strings"
)

const pdfNoTextPlaceholder = "[No readable text content found in PDF]"

// PdfConverter extracts the text layer of PDF files, page by page. The
// extraction backend is PDFium (WebAssembly) by default and the pure-Go
// ledongthuc/pdf reader when built with the nopdfium tag.
type PdfConverter struct{}

// NewPdfConverter creates a new PdfConverter.
func NewPdfConverter() *PdfConverter {
	return &PdfConverter{}
}

func (c *PdfConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".pdf"
}

func (c *PdfConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}

	pages, err := extractPDFPages(ctx, data)
	if err != nil {
		return nil, err
	}

	var md strings.Builder
	for _, page := range pages {
		if page = strings.TrimSpace(page); page != "" {
			md.WriteString(page)
			md.WriteString("\n\n")
		}
	}
	if md.Len() == 0 {
		return &DocumentConverterResult{Markdown: pdfNoTextPlaceholder}, nil
	}
	return &DocumentConverterResult{Markdown: md.String()}, nil
}
