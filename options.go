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
	"net/http"

	"go.uber.org/zap"
)

// Option configures a MarkItDown instance.
type Option func(*MarkItDown)

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(m *MarkItDown) {
		m.keepDataURIs = keep
	}
}

// WithStyleMap sets the default style mapping for DOCX conversion. Each line
// has the form "Style Name => tag", e.g. "Quote => blockquote".
func WithStyleMap(styleMap string) Option {
	return func(m *MarkItDown) {
		m.styleMap = styleMap
	}
}

// WithLogger sets the logger used for dispatch tracing and soft failures.
func WithLogger(l *zap.Logger) Option {
	return func(m *MarkItDown) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHTTPClient sets the client used by ConvertURL and the transcript fetcher.
func WithHTTPClient(c *http.Client) Option {
	return func(m *MarkItDown) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithConverter registers an additional converter. It is registered after
// the built-ins and therefore takes priority over them.
func WithConverter(name string, c DocumentConverter) Option {
	return func(m *MarkItDown) {
		m.custom = append(m.custom, NamedConverter{Name: name, Converter: c})
	}
}

// WithCaptioner sets the default image captioning backend.
func WithCaptioner(c Captioner) Option {
	return func(m *MarkItDown) {
		m.captioner = c
	}
}

// WithTranscriber sets the speech-to-text backend for audio files.
func WithTranscriber(t Transcriber) Option {
	return func(m *MarkItDown) {
		m.transcriber = t
	}
}

// WithTranscriptFetcher sets the backend fetching YouTube transcripts.
func WithTranscriptFetcher(f TranscriptFetcher) Option {
	return func(m *MarkItDown) {
		m.transcripts = f
	}
}

// WithExiftoolPath sets the exiftool binary. By default it is looked up in PATH.
func WithExiftoolPath(path string) Option {
	return func(m *MarkItDown) {
		m.exiftoolPath = path
	}
}

// WithArchiveConcurrency converts up to n archive entries in parallel.
// Output order always follows the archive. n <= 1 keeps conversion sequential.
func WithArchiveConcurrency(n int) Option {
	return func(m *MarkItDown) {
		m.archiveConcurrency = n
	}
}

// WithMaxArchiveDepth bounds how deep nested archives are expanded.
func WithMaxArchiveDepth(n int) Option {
	return func(m *MarkItDown) {
		if n > 0 {
			m.maxArchiveDepth = n
		}
	}
}
