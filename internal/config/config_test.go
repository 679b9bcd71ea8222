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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "markitdown.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8, cfg.Archive.MaxDepth)
	assert.Equal(t, "en", cfg.YouTube.TranscriptLanguage)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.EqualValues(t, 64<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
debug: true
keep_data_uris: true
style_map: "Quote => blockquote"
http_timeout: 15s
archive:
  concurrency: 4
  max_depth: 3
  keep_extracted: true
youtube:
  transcript: true
  transcript_language: de
server:
  host: 0.0.0.0
  port: 9090
  cors_origins: ["https://app.example.com"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.True(t, cfg.KeepDataURIs)
	assert.Equal(t, "Quote => blockquote", cfg.StyleMap)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, ArchiveConfig{Concurrency: 4, MaxDepth: 3, KeepExtracted: true}, cfg.Archive)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)

	opts := cfg.ConverterOptions()
	assert.True(t, opts.EnableYouTubeTranscript)
	assert.Equal(t, "de", opts.YouTubeTranscriptLanguage)
	require.NotNil(t, opts.CleanupExtracted)
	assert.False(t, *opts.CleanupExtracted)

	assert.Len(t, cfg.EngineOptions(), 5)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MARKITDOWN_DEBUG", "true")
	t.Setenv("MARKITDOWN_HOST", "127.0.0.1")
	t.Setenv("MARKITDOWN_PORT", "7000")
	t.Setenv("MARKITDOWN_EXIFTOOL_PATH", "/opt/exiftool")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr())
	assert.Equal(t, "/opt/exiftool", cfg.ExiftoolPath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "archive: [unclosed"},
		{name: "depth too large", content: "archive:\n  max_depth: 1000\n"},
		{name: "negative concurrency", content: "archive:\n  concurrency: -1\n"},
		{name: "port out of range", content: "server:\n  port: 70000\n"},
		{name: "bad language", content: "youtube:\n  transcript_language: \"not a tag\"\n"},
		{name: "short timeout", content: "http_timeout: 10ms\n"},
		{name: "bad port env", env: map[string]string{"MARKITDOWN_PORT": "http"}},
		{name: "bad debug env", env: map[string]string{"MARKITDOWN_DEBUG": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
