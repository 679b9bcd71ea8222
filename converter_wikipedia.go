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
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reWikipediaURL = regexp.MustCompile(`^https?://[a-zA-Z]{2,3}\.wikipedia\.org/`)

// WikipediaConverter renders only the article body of Wikipedia pages,
// headed by the article title.
type WikipediaConverter struct {
	markitdown *MarkItDown
}

// NewWikipediaConverter creates a new WikipediaConverter.
func NewWikipediaConverter(m *MarkItDown) *WikipediaConverter {
	return &WikipediaConverter{markitdown: m}
}

func (c *WikipediaConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".html", ".htm") && reWikipediaURL.MatchString(opts.URL)
}

func (c *WikipediaConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	doc, err := loadHTMLDocument(src, opts)
	if err != nil {
		return nil, err
	}
	htmlConv := NewHTMLConverter(c.markitdown)

	body := doc.Find("div#mw-content-text").First()
	if body.Length() == 0 {
		return htmlConv.convertDocument(doc, doc.Selection)
	}

	title := findText(doc, "title")
	if t := findText(doc, "span.mw-page-title-main"); t != "" {
		title = t
	}

	res, err := htmlConv.convertDocument(doc, body)
	if err != nil {
		return nil, err
	}
	return &DocumentConverterResult{
		Title:    title,
		Markdown: "# " + title + "\n\n" + res.Markdown,
	}, nil
}

// findText returns the trimmed text of the first match of selector.
func findText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
