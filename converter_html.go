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
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTMLConverter handles HTML files. It is also the rendering backend of
// every converter that produces HTML first (DOCX, EPUB, the web-page
// specializations).
type HTMLConverter struct {
	markitdown *MarkItDown
}

// NewHTMLConverter creates a new HTMLConverter.
func NewHTMLConverter(m *MarkItDown) *HTMLConverter {
	return &HTMLConverter{markitdown: m}
}

func (c *HTMLConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".html", ".htm", ".xhtml")
}

func (c *HTMLConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	doc, err := loadHTMLDocument(src, opts)
	if err != nil {
		return nil, err
	}
	return c.convertDocument(doc, doc.Selection)
}

// ConvertString converts an HTML string to markdown. The title is taken from
// the <title> element; scripts and styles are dropped before rendering.
func (c *HTMLConverter) ConvertString(htmlStr string) (*DocumentConverterResult, error) {
	root, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	return c.convertDocument(doc, doc.Selection)
}

// loadHTMLDocument reads and parses an HTML source. The encoding comes from
// the response charset, then from the document's own declaration, then
// from detection.
func loadHTMLDocument(src Source, opts ConverterOptions) (*goquery.Document, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}

	var text string
	if opts.Charset == "" {
		// windows-1252 is the fallback when nothing is declared; detection
		// does better there.
		if enc, name, certain := charset.DetermineEncoding(data, opts.MIMEType); certain || name != "windows-1252" {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				text = string(decoded)
			}
		}
	}
	if text == "" {
		text = decodeText(data, opts.Charset)
	}

	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// convertDocument renders the body of sel (or sel itself) and takes the
// title from doc.
func (c *HTMLConverter) convertDocument(doc *goquery.Document, sel *goquery.Selection) (*DocumentConverterResult, error) {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	sel.Find("script, style").Remove()
	if body := sel.Find("body"); body.Length() > 0 {
		sel = body.First()
	}

	fragment, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil, fmt.Errorf("render HTML: %w", err)
	}
	md, err := convertHTMLToMarkdown(fragment)
	if err != nil {
		return nil, fmt.Errorf("convert HTML to markdown: %w", err)
	}
	if c.markitdown == nil || !c.markitdown.keepDataURIs {
		md = truncateDataURIs(md)
	}

	return &DocumentConverterResult{
		Markdown: md,
		Title:    title,
	}, nil
}

// convertHTMLToMarkdown converts HTML to markdown using html-to-markdown.
func convertHTMLToMarkdown(htmlStr string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(htmlStr)
}

var reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)

// truncateDataURIs shortens base64 data URIs to data:mime/type;base64...
func truncateDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}
