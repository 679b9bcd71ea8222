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
	"math"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// PlainTextConverter handles any extension whose media type is text, plus
// JSON and JSONL.
type PlainTextConverter struct{}

// NewPlainTextConverter creates a new PlainTextConverter.
func NewPlainTextConverter() *PlainTextConverter {
	return &PlainTextConverter{}
}

func (c *PlainTextConverter) Accepts(opts ConverterOptions) bool {
	if extensionIn(opts.FileExtension, ".json", ".jsonl", ".md", ".markdown") {
		return true
	}
	return strings.HasPrefix(mimeForExtension(opts.FileExtension), "text/")
}

func (c *PlainTextConverter) Convert(ctx context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return &DocumentConverterResult{
		Markdown: decodeText(data, opts.Charset),
	}, nil
}

// decodeText decodes data to UTF-8 using the charset hint when it is known,
// and charset detection otherwise.
func decodeText(data []byte, charset string) string {
	if charset != "" {
		if enc := lookupEncoding(charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}
	return decodeWithDetection(data)
}

// decodeWithDetection detects the encoding of data and decodes it to UTF-8.
func decodeWithDetection(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}

	// chardet often ranks a Latin charset above the right CJK one, so every
	// candidate is decoded and scored instead of trusting the first.
	best, bestScore := "", math.MinInt
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if score := scoreDecodedText(text, r.Confidence); score > bestScore {
			best, bestScore = text, score
		}
	}
	if best == "" {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return best
}

// scoreDecodedText rates how plausible a decoding is. Replacement and
// control characters are penalized; kana and the CJK block are rewarded
// because mis-decoded CJK tends to land in Latin-1 symbols instead.
func scoreDecodedText(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == '\uFFFD':
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0x3040 && r <= 0x30FF, r >= 0xFF00 && r <= 0xFFEF:
			score += 3
		case r >= 0x4E00 && r <= 0x9FFF:
			score += 2
		case r >= 0x80 && r <= 0xBF:
			score -= 2
		case r < 0x80:
			score++
		}
	}
	return score
}

// charsetAliases maps names produced by chardet or used by Windows tooling
// onto WHATWG labels understood by htmlindex.
var charsetAliases = map[string]string{
	"cp932":       "shift_jis",
	"sjis":        "shift_jis",
	"windows-31j": "shift_jis",
	"cp936":       "gbk",
	"gb-18030":    "gb18030",
	"cp949":       "euc-kr",
	"cp950":       "big5",
	"ascii":       "utf-8",
	"us-ascii":    "utf-8",
	"utf8":        "utf-8",
}

// lookupEncoding maps a charset name to its decoder, or nil when unknown.
func lookupEncoding(charset string) encoding.Encoding {
	name := strings.ToLower(strings.TrimSpace(charset))
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc
	}
	if strings.HasPrefix(name, "cp") {
		if enc, err := htmlindex.Get("windows-" + strings.TrimPrefix(name, "cp")); err == nil {
			return enc
		}
	}
	return nil
}
