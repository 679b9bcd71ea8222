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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	markitdown "github.com/conductor-oss/markitdown-go"
	"github.com/conductor-oss/markitdown-go/internal/config"
)

type fakeURLConverter struct {
	*markitdown.MarkItDown
	gotURL  string
	gotOpts markitdown.ConverterOptions
	err     error
}

func (f *fakeURLConverter) ConvertURL(_ context.Context, rawURL string, opts markitdown.ConverterOptions) (*markitdown.DocumentConverterResult, error) {
	f.gotURL, f.gotOpts = rawURL, opts
	if f.err != nil {
		return nil, f.err
	}
	return &markitdown.DocumentConverterResult{Title: "Remote", Markdown: "remote body"}, nil
}

func testConfig() config.ServerConfig {
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Server.MaxBodyBytes = 1024
	cfg.Server.RequestTimeout = 5 * time.Second
	return cfg.Server
}

func newTestServer(conv Converter, defaults markitdown.ConverterOptions) http.Handler {
	return NewServer(conv, defaults, testConfig(), nil).Handler()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(markitdown.New(), markitdown.ConverterOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
}

func TestHandleConvert(t *testing.T) {
	h := newTestServer(markitdown.New(), markitdown.ConverterOptions{})

	tests := []struct {
		name       string
		target     string
		header     map[string]string
		body       string
		wantStatus int
		wantMD     string
	}{
		{
			name:       "extension from query",
			target:     "/v1/convert?ext=csv",
			body:       "a,b\n1,2\n",
			wantStatus: http.StatusOK,
			wantMD:     "| a | b |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:       "extension from header",
			target:     "/v1/convert",
			header:     map[string]string{headerFileExtension: ".md"},
			body:       "# Title\n",
			wantStatus: http.StatusOK,
			wantMD:     "# Title",
		},
		{
			name:       "url selects a page converter",
			target:     "/v1/convert?ext=html&url=" + "https%3A%2F%2Fen.wikipedia.org%2Fwiki%2FGo",
			body:       `<html><body><span class="mw-page-title-main">Go</span><div id="mw-content-text"><p>Body</p></div></body></html>`,
			wantStatus: http.StatusOK,
			wantMD:     "# Go\n\nBody",
		},
		{
			name:       "missing extension",
			target:     "/v1/convert",
			body:       "text",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported",
			target:     "/v1/convert?ext=.bin",
			body:       "\x00\x01",
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "conversion failure",
			target:     "/v1/convert?ext=.ipynb",
			body:       "{broken",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "body too large",
			target:     "/v1/convert?ext=.txt",
			body:       strings.Repeat("x", 4096),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
				return
			}
			assert.Equal(t, tt.wantMD, decode[ConvertResponse](t, rec).Markdown)
		})
	}
}

func TestHandleConvertURL(t *testing.T) {
	defaults := markitdown.ConverterOptions{YouTubeTranscriptLanguage: "en"}

	t.Run("success", func(t *testing.T) {
		conv := &fakeURLConverter{MarkItDown: markitdown.New()}
		h := newTestServer(conv, defaults)

		body := `{"url": "https://www.youtube.com/watch?v=abc", "youtube_transcript": true, "transcript_language": "fr"}`
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/convert/url", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ConvertResponse{Title: "Remote", Markdown: "remote body"}, decode[ConvertResponse](t, rec))
		assert.Equal(t, "https://www.youtube.com/watch?v=abc", conv.gotURL)
		assert.True(t, conv.gotOpts.EnableYouTubeTranscript)
		assert.Equal(t, "fr", conv.gotOpts.YouTubeTranscriptLanguage)
	})

	t.Run("request errors", func(t *testing.T) {
		h := newTestServer(&fakeURLConverter{MarkItDown: markitdown.New()}, defaults)
		for _, body := range []string{`not json`, `{}`, `{"url": "ftp://example.com/file"}`} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/convert/url", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		conv := &fakeURLConverter{MarkItDown: markitdown.New(), err: &markitdown.FetchError{URL: "https://example.com", StatusCode: 404}}
		h := newTestServer(conv, defaults)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/convert/url", strings.NewReader(`{"url": "https://example.com"}`)))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	h := newTestServer(markitdown.New(), markitdown.ConverterOptions{})
	req := httptest.NewRequest(http.MethodOptions, "/v1/convert", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", headerFileExtension)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&markitdown.ValidationError{Err: errors.New("x")}, http.StatusBadRequest},
		{&markitdown.UnresolvedTypeError{Path: "x"}, http.StatusBadRequest},
		{&markitdown.UnsupportedFormatError{}, http.StatusUnsupportedMediaType},
		{&markitdown.ConversionError{}, http.StatusUnprocessableEntity},
		{&markitdown.FetchError{StatusCode: 500}, http.StatusBadGateway},
		{&markitdown.MissingContentTypeError{}, http.StatusBadGateway},
		{fmt.Errorf("read input: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%T", tt.err)
	}
}
