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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const youTubeWatchPrefix = "https://www.youtube.com/watch?"

// TranscriptFetcher fetches the transcript of a YouTube video as plain text.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID, language string) (string, error)
}

// YouTubeConverter summarizes a YouTube watch page: title, view count,
// keywords, runtime, description and, when enabled, the transcript.
type YouTubeConverter struct {
	markitdown *MarkItDown
}

// NewYouTubeConverter creates a new YouTubeConverter.
func NewYouTubeConverter(m *MarkItDown) *YouTubeConverter {
	return &YouTubeConverter{markitdown: m}
}

func (c *YouTubeConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".html", ".htm") && strings.HasPrefix(opts.URL, youTubeWatchPrefix)
}

func (c *YouTubeConverter) Convert(ctx context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	doc, err := loadHTMLDocument(src, opts)
	if err != nil {
		return nil, err
	}

	pageTitle := findText(doc, "title")
	meta := map[string]string{"title": pageTitle}
	doc.Find("meta").Each(func(_ int, m *goquery.Selection) {
		content := m.AttrOr("content", "")
		if content == "" {
			return
		}
		for _, attr := range []string{"itemprop", "property", "name"} {
			if key, ok := m.Attr(attr); ok {
				meta[key] = content
				return
			}
		}
	})
	if desc := youTubeInitialDescription(doc); desc != "" {
		meta["description"] = desc
	}

	var b strings.Builder
	b.WriteString("# YouTube\n")
	title := firstValue(meta, "title", "og:title", "name")
	if title != "" {
		fmt.Fprintf(&b, "\n## %s\n", title)
	}

	var stats strings.Builder
	for _, field := range []struct{ label, key string }{
		{"Views", "interactionCount"},
		{"Keywords", "keywords"},
		{"Runtime", "duration"},
	} {
		if v := meta[field.key]; v != "" {
			fmt.Fprintf(&stats, "- **%s:** %s\n", field.label, v)
		}
	}
	if stats.Len() > 0 {
		fmt.Fprintf(&b, "\n### Video Metadata\n%s\n", stats.String())
	}

	if desc := firstValue(meta, "description", "og:description"); desc != "" {
		fmt.Fprintf(&b, "\n### Description\n%s\n", desc)
	}

	if opts.EnableYouTubeTranscript {
		if transcript := c.transcript(ctx, opts); transcript != "" {
			fmt.Fprintf(&b, "\n### Transcript\n%s\n", transcript)
		}
	}

	if title == "" {
		title = pageTitle
	}
	return &DocumentConverterResult{
		Title:    title,
		Markdown: b.String(),
	}, nil
}

// transcript returns "" when the video has none or it cannot be fetched;
// a missing transcript does not fail the page.
func (c *YouTubeConverter) transcript(ctx context.Context, opts ConverterOptions) string {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return ""
	}
	videoID := u.Query().Get("v")
	if videoID == "" {
		return ""
	}
	lang := opts.YouTubeTranscriptLanguage
	if lang == "" {
		lang = "en"
	}

	var fetcher TranscriptFetcher
	if c.markitdown != nil {
		fetcher = c.markitdown.transcripts
	}
	if fetcher == nil {
		fetcher = NewTimedTextFetcher(opts.HTTPClient)
	}

	text, err := fetcher.FetchTranscript(ctx, videoID, lang)
	if err != nil {
		if c.markitdown != nil {
			c.markitdown.logger.Debug("youtube transcript unavailable", zap.String("video", videoID), zap.Error(err))
		}
		return ""
	}
	return text
}

// youTubeInitialDescription reads the full description from the
// ytInitialData blob embedded in the page.
func youTubeInitialDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		if !strings.Contains(content, "ytInitialData") {
			return true
		}
		line, _, _ := strings.Cut(content, "\n")
		start, end := strings.Index(line, "{"), strings.LastIndex(line, "}")
		if start >= 0 && end > start {
			var data any
			if json.Unmarshal([]byte(line[start:end+1]), &data) == nil {
				if body, ok := findJSONKey(data, "attributedDescriptionBodyText").(map[string]any); ok {
					desc, _ = body["content"].(string)
				}
			}
		}
		return false
	})
	return desc
}

// findJSONKey returns the first value stored under key, depth first.
func findJSONKey(v any, key string) any {
	switch t := v.(type) {
	case map[string]any:
		if found, ok := t[key]; ok {
			return found
		}
		for _, child := range t {
			if found := findJSONKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range t {
			if found := findJSONKey(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

func firstValue(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

// TimedTextFetcher reads transcripts from YouTube's timedtext endpoint.
type TimedTextFetcher struct {
	client  *http.Client
	baseURL string
}

// NewTimedTextFetcher creates a fetcher using client, or http.DefaultClient.
func NewTimedTextFetcher(client *http.Client) *TimedTextFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TimedTextFetcher{client: client, baseURL: "https://www.youtube.com/api/timedtext"}
}

func (f *TimedTextFetcher) FetchTranscript(ctx context.Context, videoID, language string) (string, error) {
	q := url.Values{"v": {videoID}, "lang": {language}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build transcript request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	var transcript struct {
		Texts []string `xml:"text"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	parts := make([]string, 0, len(transcript.Texts))
	for _, t := range transcript.Texts {
		if t = strings.TrimSpace(html.UnescapeString(t)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}
