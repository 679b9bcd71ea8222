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
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Captioner describes an image in natural language, typically with a
// multimodal LLM.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// Transcriber converts speech in an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

const defaultCaptionPrompt = "Write a detailed caption for this image."

var (
	audioMetadataFields = []string{"Title", "Artist", "Author", "Band", "Album", "Genre", "Track", "DateTimeOriginal", "CreateDate", "Duration"}
	imageMetadataFields = []string{"ImageSize", "Title", "Caption", "Description", "Keywords", "Artist", "Author", "DateTimeOriginal", "CreateDate", "GPSPosition"}
)

// mediaMetadata runs exiftool on path. It returns nil when exiftool is not
// installed or fails; metadata is optional.
func mediaMetadata(ctx context.Context, m *MarkItDown, path string) map[string]any {
	logger := zap.NewNop()
	bin := ""
	if m != nil {
		logger, bin = m.logger, m.exiftoolPath
	}
	if bin == "" {
		found, err := exec.LookPath("exiftool")
		if err != nil {
			logger.Debug("exiftool not found, skipping metadata")
			return nil
		}
		bin = found
	}

	out, err := exec.CommandContext(ctx, bin, "-json", path).Output()
	if err != nil {
		logger.Debug("exiftool failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil || len(records) == 0 {
		logger.Debug("exiftool output unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return records[0]
}

// writeMetadata appends "Field: value" lines for the fields present.
func writeMetadata(b *strings.Builder, meta map[string]any, fields []string) {
	for _, f := range fields {
		v, ok := meta[f]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			fmt.Fprintf(b, "%s: %s\n", f, s)
		}
	}
}
