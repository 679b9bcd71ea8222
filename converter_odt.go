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

	"github.com/lu4p/cat"
)

// OdtConverter extracts the text of OpenDocument text files and RTF.
type OdtConverter struct{}

// NewOdtConverter creates a new OdtConverter.
func NewOdtConverter() *OdtConverter {
	return &OdtConverter{}
}

func (c *OdtConverter) Accepts(opts ConverterOptions) bool {
	return extensionIn(opts.FileExtension, ".odt", ".rtf")
}

func (c *OdtConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	// cat picks the parser from the file suffix.
	path, cleanup, err := src.Materialize(opts.FileExtension)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s text: %w", strings.TrimPrefix(opts.FileExtension, "."), err)
	}
	return &DocumentConverterResult{Markdown: text}, nil
}
