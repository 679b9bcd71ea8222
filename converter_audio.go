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
	"strings"

	"go.uber.org/zap"
)

// AudioConverter reports the metadata of an audio file and, when a
// Transcriber is configured, its transcript. It backs both the WAV and the
// MP3 registrations.
type AudioConverter struct {
	markitdown *MarkItDown
	extension  string
}

// NewWavConverter creates an AudioConverter for .wav files.
func NewWavConverter(m *MarkItDown) *AudioConverter {
	return &AudioConverter{markitdown: m, extension: ".wav"}
}

// NewMp3Converter creates an AudioConverter for .mp3 files.
func NewMp3Converter(m *MarkItDown) *AudioConverter {
	return &AudioConverter{markitdown: m, extension: ".mp3"}
}

func (c *AudioConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == c.extension
}

func (c *AudioConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	path, cleanup, err := src.Materialize(c.extension)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var b strings.Builder
	writeMetadata(&b, mediaMetadata(ctx, c.markitdown, path), audioMetadataFields)

	if c.markitdown != nil && c.markitdown.transcriber != nil {
		b.WriteString("\n\n### Audio Transcript:\n")
		transcript, err := c.markitdown.transcriber.Transcribe(ctx, path)
		switch {
		case err != nil:
			c.markitdown.logger.Debug("transcription failed", zap.String("path", path), zap.Error(err))
			b.WriteString("Error. Could not transcribe this audio.")
		case strings.TrimSpace(transcript) == "":
			b.WriteString("[No speech detected]")
		default:
			b.WriteString(strings.TrimSpace(transcript))
		}
	}

	return &DocumentConverterResult{Markdown: strings.TrimSpace(b.String())}, nil
}
