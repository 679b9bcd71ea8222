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
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageConverter reports image metadata and, with a Captioner, an LLM
// description of the picture.
type ImageConverter struct {
	markitdown *MarkItDown
}

// NewImageConverter creates a new ImageConverter.
func NewImageConverter(m *MarkItDown) *ImageConverter {
	return &ImageConverter{markitdown: m}
}

func (c *ImageConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".jpg", ".jpeg", ".png")
}

func (c *ImageConverter) Convert(ctx context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	path, cleanup, err := src.Materialize(opts.FileExtension)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var b strings.Builder
	writeMetadata(&b, mediaMetadata(ctx, c.markitdown, path), imageMetadataFields)

	if opts.LLMModel != nil {
		data, err := src.ReadAll()
		if err != nil {
			return nil, err
		}
		prompt := strings.TrimSpace(opts.LLMPrompt)
		if prompt == "" {
			prompt = defaultCaptionPrompt
		}
		caption, err := opts.LLMModel.Caption(ctx, data, mimetype.Detect(data).String(), prompt)
		if err != nil {
			return nil, fmt.Errorf("caption image: %w", err)
		}
		fmt.Fprintf(&b, "\n# Description:\n%s\n", strings.TrimSpace(caption))
	}

	return &DocumentConverterResult{Markdown: strings.TrimSpace(b.String())}, nil
}
