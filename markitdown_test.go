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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestConvertFile(t *testing.T) {
	ctx := context.Background()
	m := New()

	t.Run("by suffix", func(t *testing.T) {
		res, err := m.ConvertFile(ctx, writeFile(t, "data.csv", "a,b\n1,2\n"), ConverterOptions{})
		require.NoError(t, err)
		assert.Equal(t, "| a | b |\n| --- | --- |\n| 1 | 2 |", res.Markdown)
	})

	t.Run("hint takes priority", func(t *testing.T) {
		res, err := m.ConvertFile(ctx, writeFile(t, "data.csv", "a,b\n"), ConverterOptions{FileExtension: ".txt"})
		require.NoError(t, err)
		assert.Equal(t, "a,b", res.Markdown)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := m.ConvertFile(ctx, filepath.Join(t.TempDir(), "nope.txt"), ConverterOptions{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no suffix", func(t *testing.T) {
		_, err := m.ConvertFile(ctx, writeFile(t, "LICENSE", "text"), ConverterOptions{})
		var unresolved *UnresolvedTypeError
		assert.ErrorAs(t, err, &unresolved)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := m.ConvertFile(ctx, writeFile(t, "archive.7z", "x"), ConverterOptions{})
		assert.True(t, IsUnsupportedFormat(err))
	})
}

func TestConvertDispatchesBySource(t *testing.T) {
	p := writeFile(t, "notes.md", "# Notes\n")
	m := New()

	res, err := m.Convert(context.Background(), p, ConverterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Notes", res.Markdown)

	res, err = m.Convert(context.Background(), "file://"+p, ConverterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Notes", res.Markdown)
}

func TestConvertBufferRequiresExtension(t *testing.T) {
	_, err := New().ConvertBuffer(context.Background(), []byte("hello"), ConverterOptions{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "file extension is required")
}

func TestConvertReader(t *testing.T) {
	res, err := New().ConvertReader(context.Background(), strings.NewReader("x\ty\n"), ConverterOptions{FileExtension: "tsv"})
	require.NoError(t, err)
	assert.Equal(t, "| x | y |\n| --- | --- |", res.Markdown)
}

func TestConvertURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page.htm", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html><head><title>Remote</title></head><body><p>Fetched page</p></body></html>")
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		_, _ = io.WriteString(w, "k,v\n1,2\n")
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page.htm", http.StatusFound)
	})
	mux.HandleFunc("/untyped", func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x00, 0x01})
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := New(WithHTTPClient(srv.Client()))
	ctx := context.Background()

	t.Run("html page", func(t *testing.T) {
		res, err := m.ConvertURL(ctx, srv.URL+"/page.htm", ConverterOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Remote", res.Title)
		assert.Equal(t, "Fetched page", res.Markdown)
	})

	t.Run("override extension is tried first", func(t *testing.T) {
		res, err := m.ConvertURL(ctx, srv.URL+"/page.htm", ConverterOptions{FileExtension: ".txt"})
		require.NoError(t, err)
		assert.Equal(t, "<html><head><title>Remote</title></head><body><p>Fetched page</p></body></html>", res.Markdown)
		assert.Empty(t, res.Title)
	})

	t.Run("disposition names the type", func(t *testing.T) {
		res, err := m.ConvertURL(ctx, srv.URL+"/download", ConverterOptions{})
		require.NoError(t, err)
		assert.Equal(t, "| k | v |\n| --- | --- |\n| 1 | 2 |", res.Markdown)
	})

	t.Run("redirect", func(t *testing.T) {
		res, err := m.Convert(ctx, srv.URL+"/old", ConverterOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Fetched page", res.Markdown)
	})

	t.Run("missing content type", func(t *testing.T) {
		_, err := m.ConvertURL(ctx, srv.URL+"/untyped", ConverterOptions{})
		var missing *MissingContentTypeError
		assert.ErrorAs(t, err, &missing)
	})

	t.Run("error status", func(t *testing.T) {
		_, err := m.ConvertURL(ctx, srv.URL+"/gone", ConverterOptions{})
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusGone, fetchErr.StatusCode)
	})
}

func TestConvertResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://en.wikipedia.org/wiki/Gopher", nil)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/html"}},
		Body: io.NopCloser(strings.NewReader(`<html><body><span class="mw-page-title-main">Gopher</span>` +
			`<div id="mw-content-text"><p>A burrowing rodent.</p></div></body></html>`)),
		Request: req,
	}

	res, err := New().ConvertResponse(context.Background(), resp, ConverterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Gopher\n\nA burrowing rodent.", res.Markdown)

	_, err = New().ConvertResponse(context.Background(), &http.Response{}, ConverterOptions{})
	assert.Error(t, err)
}

type failingBody struct{ reads int }

func (b *failingBody) Read([]byte) (int, error) {
	b.reads++
	return 0, errors.New("body must not be read")
}

func (b *failingBody) Close() error { return nil }

func TestConvertResponseMissingContentTypeSkipsBody(t *testing.T) {
	body := &failingBody{}
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       body,
		Request:    httptest.NewRequest(http.MethodGet, "https://example.com/blob", nil),
	}

	_, err := New().ConvertResponse(context.Background(), resp, ConverterOptions{})
	var missing *MissingContentTypeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "https://example.com/blob", missing.URL)
	assert.Zero(t, body.reads)
}

func TestDispatchLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := New(WithLogger(zap.New(core)))

	_, err := m.ConvertBuffer(context.Background(), []byte("{broken"), ConverterOptions{FileExtension: ".ipynb"})
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("converter failed").Len())
	assert.NotZero(t, logs.FilterMessage("trying converter").Len())
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	return f.text, f.err
}

type fakeCaptioner struct {
	mimeType, prompt string
}

func (f *fakeCaptioner) Caption(_ context.Context, _ []byte, mimeType, prompt string) (string, error) {
	f.mimeType, f.prompt = mimeType, prompt
	return "  A tiny dot.  ", nil
}

func TestAudioConverter(t *testing.T) {
	noExif := WithExiftoolPath(filepath.Join(t.TempDir(), "no-exiftool"))
	tests := []struct {
		name        string
		transcriber Transcriber
		want        string
	}{
		{"no transcriber", nil, ""},
		{"transcript", fakeTranscriber{text: " hello there "}, "### Audio Transcript:\nhello there"},
		{"silence", fakeTranscriber{text: "  "}, "### Audio Transcript:\n[No speech detected]"},
		{"failure", fakeTranscriber{err: errors.New("offline")}, "### Audio Transcript:\nError. Could not transcribe this audio."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{noExif}
			if tt.transcriber != nil {
				opts = append(opts, WithTranscriber(tt.transcriber))
			}
			res := convertString(t, New(opts...), "RIFF....WAVE", ConverterOptions{FileExtension: ".wav"})
			assert.Equal(t, tt.want, res.Markdown)
		})
	}
}

func TestImageConverter(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89"
	captioner := &fakeCaptioner{}
	m := New(WithExiftoolPath(filepath.Join(t.TempDir(), "no-exiftool")), WithCaptioner(captioner))

	res := convertString(t, m, png, ConverterOptions{FileExtension: ".png"})
	assert.Equal(t, "# Description:\nA tiny dot.", res.Markdown)
	assert.Equal(t, "image/png", captioner.mimeType)
	assert.Equal(t, defaultCaptionPrompt, captioner.prompt)

	res = convertString(t, m, png, ConverterOptions{FileExtension: ".png", LLMPrompt: "Count the pixels."})
	assert.Equal(t, "Count the pixels.", captioner.prompt)
	assert.NotEmpty(t, res.Markdown)

	bare := convertString(t, New(WithExiftoolPath(filepath.Join(t.TempDir(), "no-exiftool"))), png, ConverterOptions{FileExtension: ".png"})
	assert.Empty(t, bare.Markdown)
}

func TestWriteMetadata(t *testing.T) {
	var b strings.Builder
	writeMetadata(&b, map[string]any{"Title": "Song", "Duration": 12.5, "Artist": nil, "Genre": " "}, audioMetadataFields)
	assert.Equal(t, "Title: Song\nDuration: 12.5\n", b.String())
}
