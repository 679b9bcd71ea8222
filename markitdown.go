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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultMaxArchiveDepth = 8

// MarkItDown is the main document-to-markdown conversion engine. It is safe
// for concurrent use: the registry is built once in New and never changes.
type MarkItDown struct {
	registry *Registry
	custom   []NamedConverter

	keepDataURIs       bool
	styleMap           string
	logger             *zap.Logger
	httpClient         *http.Client
	captioner          Captioner
	transcriber        Transcriber
	transcripts        TranscriptFetcher
	exiftoolPath       string
	archiveConcurrency int
	maxArchiveDepth    int
}

// New creates a new MarkItDown instance with the given options.
func New(opts ...Option) *MarkItDown {
	m := &MarkItDown{
		logger:          zap.NewNop(),
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		maxArchiveDepth: defaultMaxArchiveDepth,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registry = NewRegistry()
	m.registry.logger = m.logger
	for _, nc := range m.builtinConverters() {
		m.registry.Register(nc.Name, nc.Converter)
	}
	for _, nc := range m.custom {
		m.registry.Register(nc.Name, nc.Converter)
	}
	return m
}

// builtinConverters lists the built-in converters in registration order.
// Registration front-inserts, so each entry outranks the ones above it for
// overlapping extensions.
func (m *MarkItDown) builtinConverters() []NamedConverter {
	return []NamedConverter{
		{"plaintext", NewPlainTextConverter()},
		{"html", NewHTMLConverter(m)},
		{"rss", NewRSSConverter(m)},
		{"wikipedia", NewWikipediaConverter(m)},
		{"youtube", NewYouTubeConverter(m)},
		{"bingserp", NewBingSerpConverter(m)},
		{"docx", NewDocxConverter(m)},
		{"xlsx", NewXlsxConverter(m)},
		{"xls", NewXlsConverter()},
		{"pptx", NewPptxConverter(m)},
		{"csv", NewCsvConverter()},
		{"epub", NewEpubConverter(m)},
		{"odt", NewOdtConverter()},
		{"wav", NewWavConverter(m)},
		{"mp3", NewMp3Converter(m)},
		{"image", NewImageConverter(m)},
		{"ipynb", NewIpynbConverter()},
		{"pdf", NewPdfConverter()},
		{zipConverterID, NewZipConverter(m)},
	}
}

// Registry returns the engine's converters in priority order.
func (m *MarkItDown) Registry() []NamedConverter {
	return m.registry.Converters()
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (m *MarkItDown) Convert(ctx context.Context, source string, opts ConverterOptions) (*DocumentConverterResult, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return m.ConvertURL(ctx, source, opts)
	case strings.HasPrefix(source, "file://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("parse file URL: %w", err)
		}
		return m.ConvertFile(ctx, u.Path, opts)
	}
	return m.ConvertFile(ctx, source, opts)
}

// ConvertFile converts a local file to markdown.
func (m *MarkItDown) ConvertFile(ctx context.Context, path string, opts ConverterOptions) (*DocumentConverterResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	exts, err := resolvePath(path, opts)
	if err != nil {
		return nil, err
	}
	return m.registry.Dispatch(ctx, LocalPath(path), exts, m.withDefaults(opts))
}

// ConvertBuffer converts in-memory content. opts.FileExtension is required;
// no content sniffing is performed.
func (m *MarkItDown) ConvertBuffer(ctx context.Context, data []byte, opts ConverterOptions) (*DocumentConverterResult, error) {
	exts, err := resolveBuffer(opts)
	if err != nil {
		return nil, err
	}
	return m.registry.Dispatch(ctx, Buffer(data), exts, m.withDefaults(opts))
}

// ConvertReader reads r fully and converts it as a buffer.
func (m *MarkItDown) ConvertReader(ctx context.Context, r io.Reader, opts ConverterOptions) (*DocumentConverterResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return m.ConvertBuffer(ctx, buf.Bytes(), opts)
}

// ConvertURL fetches a URL and converts the response to markdown.
func (m *MarkItDown) ConvertURL(ctx context.Context, rawURL string, opts ConverterOptions) (*DocumentConverterResult, error) {
	client := opts.HTTPClient
	if client == nil {
		client = m.httpClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return m.ConvertResponse(ctx, resp, opts)
}

// ConvertResponse converts an HTTP response. The body is streamed into a
// scratch file that is removed before returning. The caller still owns
// resp.Body.
func (m *MarkItDown) ConvertResponse(ctx context.Context, resp *http.Response, opts ConverterOptions) (*DocumentConverterResult, error) {
	if resp == nil || resp.Body == nil {
		return nil, fmt.Errorf("response body is empty")
	}
	if strings.TrimSpace(resp.Header.Get("Content-Type")) == "" {
		return nil, &MissingContentTypeError{URL: responseURL(resp)}
	}

	scratch, err := os.CreateTemp("", "markitdown-response-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	if _, err := io.Copy(scratch, resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	exts, err := resolveResponse(resp, opts, scratch)
	if err != nil {
		return nil, err
	}

	if u := responseURL(resp); u != "" {
		opts.URL = u
	}
	opts.MIMEType, opts.Charset = responseCharset(resp)

	m.logger.Debug("converting response",
		zap.String("url", opts.URL),
		zap.Strings("extensions", exts.List()),
	)
	return m.registry.Dispatch(ctx, LocalPath(scratch.Name()), exts, m.withDefaults(opts))
}

// withDefaults fills per-call options from engine configuration.
func (m *MarkItDown) withDefaults(opts ConverterOptions) ConverterOptions {
	if opts.HTTPClient == nil {
		opts.HTTPClient = m.httpClient
	}
	if opts.LLMModel == nil {
		opts.LLMModel = m.captioner
	}
	if opts.StyleMap == "" {
		opts.StyleMap = m.styleMap
	}
	return opts
}
