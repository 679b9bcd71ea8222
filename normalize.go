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
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reLineEnding         = regexp.MustCompile(`\r\n?`)
)

// normalizeOutput canonicalizes converter output. It runs once per
// conversion, after dispatch, and is idempotent:
//   - invalid UTF-8 is dropped
//   - \r\n and \r become \n
//   - control characters other than \n and \t are removed
//   - trailing spaces and tabs are stripped from each line
//   - 3+ consecutive newlines collapse to 2
//   - leading and trailing whitespace is trimmed
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reLineEnding.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	// The appended newline lets the last line lose its trailing blanks too.
	s = reTrailingWhitespace.ReplaceAllString(s+"\n", "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
