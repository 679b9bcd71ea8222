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
	"strings"
)

// IpynbConverter handles Jupyter notebooks.
type IpynbConverter struct{}

// NewIpynbConverter creates a new IpynbConverter.
func NewIpynbConverter() *IpynbConverter {
	return &IpynbConverter{}
}

func (c *IpynbConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".ipynb"
}

type notebook struct {
	Metadata struct {
		Title      string `json:"title"`
		KernelSpec *struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo *struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   multilineString `json:"source"`
	Outputs  []cellOutput    `json:"outputs"`
}

type cellOutput struct {
	OutputType string                     `json:"output_type"`
	Text       multilineString            `json:"text"`
	Data       map[string]multilineString `json:"data"`
}

// multilineString is the notebook encoding of text: a string or a list of
// lines to be concatenated.
type multilineString string

func (s *multilineString) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = multilineString(one)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return fmt.Errorf("notebook text: %w", err)
	}
	*s = multilineString(strings.Join(lines, ""))
	return nil
}

func (c *IpynbConverter) Convert(_ context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}

	language := "python"
	switch {
	case nb.Metadata.KernelSpec != nil && nb.Metadata.KernelSpec.Language != "":
		language = nb.Metadata.KernelSpec.Language
	case nb.Metadata.LanguageInfo != nil && nb.Metadata.LanguageInfo.Name != "":
		language = nb.Metadata.LanguageInfo.Name
	}

	var sections []string
	var heading string
	for _, cell := range nb.Cells {
		source := string(cell.Source)
		switch cell.CellType {
		case "markdown":
			sections = append(sections, source)
			if heading == "" {
				heading = firstHeading(source)
			}
		case "code":
			sections = append(sections, fmt.Sprintf("```%s\n%s\n```", language, source))
			for _, out := range cell.Outputs {
				if text := out.plainText(); text != "" {
					sections = append(sections, fmt.Sprintf("```\n%s\n```", text))
				}
			}
		case "raw":
			sections = append(sections, fmt.Sprintf("```\n%s\n```", source))
		}
	}

	title := nb.Metadata.Title
	if title == "" {
		title = heading
	}
	return &DocumentConverterResult{
		Markdown: strings.Join(sections, "\n\n"),
		Title:    title,
	}, nil
}

func (o cellOutput) plainText() string {
	text := string(o.Text)
	if text == "" {
		text = string(o.Data["text/plain"])
	}
	return strings.TrimRight(text, "\n")
}

// firstHeading returns the text of the first level-one ATX heading in md.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}
