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
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSConverter handles RSS and Atom feeds. Generic XML is accepted too and
// declined after parsing when it is not a feed.
type RSSConverter struct {
	markitdown *MarkItDown
}

// NewRSSConverter creates a new RSSConverter.
func NewRSSConverter(m *MarkItDown) *RSSConverter {
	return &RSSConverter{markitdown: m}
}

func (c *RSSConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".rss", ".atom", ".xml")
}

func (c *RSSConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	feed, err := gofeed.NewParser().ParseWithContext(r, ctx)
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", c.renderContent(feed.Description))
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}
		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published on: %s\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated on: %s\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content != "" {
			b.WriteString(c.renderContent(content))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return &DocumentConverterResult{
		Markdown: b.String(),
		Title:    feed.Title,
	}, nil
}

// renderContent converts embedded HTML to markdown and leaves plain text alone.
func (c *RSSConverter) renderContent(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	res, err := NewHTMLConverter(c.markitdown).ConvertString(s)
	if err != nil {
		return s
	}
	return res.Markdown
}
