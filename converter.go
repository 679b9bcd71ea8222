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
	"net/http"
	"strings"
)

// ConverterOptions is the per-call option bag handed to every converter
// trial. It is passed by value; the engine derives a fresh copy for each
// trial instead of mutating the caller's options.
type ConverterOptions struct {
	// FileExtension is the candidate extension being tried (".html").
	// Callers may set it as an override hint; it is mandatory for buffers.
	FileExtension string
	// URL is the originating URL, used by URL-gated converters.
	URL string
	// MIMEType and Charset come from the HTTP response when known. They guide
	// decoding; converters select on FileExtension alone.
	MIMEType string
	Charset  string

	// HTTPClient fetches URLs. Defaults to the engine client.
	HTTPClient *http.Client

	EnableYouTubeTranscript   bool
	YouTubeTranscriptLanguage string

	// LLMModel captions images. LLMPrompt overrides the default prompt.
	LLMModel  Captioner
	LLMPrompt string

	// CleanupExtracted controls removal of archive extraction directories.
	// nil means true.
	CleanupExtracted *bool

	// StyleMap is forwarded to the DOCX converter.
	StyleMap string

	// Extra carries adapter-specific options verbatim.
	Extra map[string]string

	parent  *Registry
	exclude []string
	depth   int
}

// WithExtension returns a copy of o trying ext.
func (o ConverterOptions) WithExtension(ext string) ConverterOptions {
	o.FileExtension = normalizeExtension(ext)
	return o
}

// ParentConverters returns a read-only view of the registry driving the
// current dispatch, or nil when the converter is invoked outside the engine.
func (o ConverterOptions) ParentConverters() *RegistryView {
	if o.parent == nil {
		return nil
	}
	return &RegistryView{registry: o.parent}
}

// Excluded reports whether the capability id is excluded from this trial.
func (o ConverterOptions) Excluded(id string) bool {
	for _, e := range o.exclude {
		if e == id {
			return true
		}
	}
	return false
}

// Depth is the archive nesting level of the current trial.
func (o ConverterOptions) Depth() int {
	return o.depth
}

func (o ConverterOptions) withExclusion(id string) ConverterOptions {
	if o.Excluded(id) {
		return o
	}
	ex := make([]string, len(o.exclude), len(o.exclude)+1)
	copy(ex, o.exclude)
	o.exclude = append(ex, id)
	return o
}

func (o ConverterOptions) cleanupExtracted() bool {
	return o.CleanupExtracted == nil || *o.CleanupExtracted
}

// DocumentConverterResult holds the output of a conversion.
type DocumentConverterResult struct {
	Title    string
	Markdown string
	// TextContent is a deprecated alias of Markdown.
	TextContent string
}

// DocumentConverter is the interface all format converters implement.
//
// A converter that does not apply to a trial returns false from Accepts, or
// (nil, nil) from Convert after inspecting the content. Both mean "no match"
// and are never errors. Convert returns an error only for genuine I/O or
// parse failures.
type DocumentConverter interface {
	// Accepts inspects opts.FileExtension (and opts.URL for URL-gated
	// converters). It must not read the source.
	Accepts(opts ConverterOptions) bool

	Convert(ctx context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error)
}

// normalizeExtension lowercases ext and makes sure it is dot-prefixed.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func extensionIn(ext string, exts ...string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
