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
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reBingSearchURL = regexp.MustCompile(`^https://www\.bing\.com/search\?q=`)

// BingSerpConverter extracts the organic results of a Bing results page.
type BingSerpConverter struct {
	markitdown *MarkItDown
}

// NewBingSerpConverter creates a new BingSerpConverter.
func NewBingSerpConverter(m *MarkItDown) *BingSerpConverter {
	return &BingSerpConverter{markitdown: m}
}

func (c *BingSerpConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".html", ".htm") && reBingSearchURL.MatchString(opts.URL)
}

func (c *BingSerpConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	doc, err := loadHTMLDocument(src, opts)
	if err != nil {
		return nil, err
	}

	var query string
	if u, err := url.Parse(opts.URL); err == nil {
		query = u.Query().Get("q")
	}

	doc.Find(".tptt").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	doc.Find(".algoSlug_icon").Remove()

	var results []string
	var convErr error
	doc.Find(".b_algo").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		result.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if target := bingRedirectTarget(a.AttrOr("href", "")); target != "" {
				a.SetAttr("href", target)
			}
		})
		fragment, err := goquery.OuterHtml(result)
		if err != nil {
			convErr = err
			return false
		}
		md, err := convertHTMLToMarkdown(fragment)
		if err != nil {
			convErr = err
			return false
		}
		var lines []string
		for _, line := range strings.Split(md, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		results = append(results, strings.Join(lines, "\n"))
		return true
	})
	if convErr != nil {
		return nil, fmt.Errorf("convert search result: %w", convErr)
	}

	return &DocumentConverterResult{
		Title:    findText(doc, "title"),
		Markdown: fmt.Sprintf("## A Bing search for '%s' found the following results:\n\n%s", query, strings.Join(results, "\n\n")),
	}, nil
}

// bingRedirectTarget decodes the destination of a Bing click-tracking link.
// The u parameter carries a two-character prefix followed by unpadded
// base64.
func bingRedirectTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	encoded := u.Query().Get("u")
	if len(encoded) <= 2 {
		return ""
	}
	payload := strings.TrimRight(strings.TrimSpace(encoded[2:]), "=")
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(payload); err == nil {
			return string(decoded)
		}
	}
	return ""
}
