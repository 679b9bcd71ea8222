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
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/conductor-oss/markitdown-go/internal/ooxml"
)

// EpubConverter handles EPUB books: a metadata header followed by every
// spine document in reading order.
type EpubConverter struct {
	markitdown *MarkItDown
}

// NewEpubConverter creates a new EpubConverter.
func NewEpubConverter(m *MarkItDown) *EpubConverter {
	return &EpubConverter{markitdown: m}
}

func (c *EpubConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".epub"
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title       []string `xml:"title"`
		Creator     []string `xml:"creator"`
		Language    string   `xml:"language"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Description string   `xml:"description"`
		Identifier  string   `xml:"identifier"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

func (c *EpubConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}
	pkg, err := ooxml.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}

	var container epubContainer
	if err := unmarshalPart(pkg, "META-INF/container.xml", &container); err != nil {
		return nil, err
	}
	if len(container.Rootfiles) == 0 {
		return nil, fmt.Errorf("open EPUB: container.xml has no rootfile")
	}
	opfPath := container.Rootfiles[0].FullPath

	var opf epubPackage
	if err := unmarshalPart(pkg, opfPath, &opf); err != nil {
		return nil, err
	}
	meta := opf.Metadata

	var title string
	if len(meta.Title) > 0 {
		title = strings.TrimSpace(meta.Title[0])
	}

	var md strings.Builder
	for _, field := range []struct{ label, value string }{
		{"Title", title},
		{"Authors", strings.Join(meta.Creator, ", ")},
		{"Language", meta.Language},
		{"Publisher", meta.Publisher},
		{"Date", meta.Date},
		{"Description", meta.Description},
		{"Identifier", meta.Identifier},
	} {
		if v := strings.TrimSpace(field.value); v != "" {
			fmt.Fprintf(&md, "**%s:** %s\n", field.label, v)
		}
	}
	md.WriteString("\n")

	hrefs := make(map[string]string, len(opf.Manifest))
	for _, item := range opf.Manifest {
		if strings.Contains(item.MediaType, "html") {
			hrefs[item.ID] = item.Href
		}
	}

	htmlConv := NewHTMLConverter(c.markitdown)
	for _, ref := range opf.Spine {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		chapter, err := pkg.ReadPart(path.Join(path.Dir(opfPath), href))
		if err != nil {
			return nil, err
		}
		res, err := htmlConv.ConvertString(string(chapter))
		if err != nil {
			return nil, fmt.Errorf("convert chapter %q: %w", href, err)
		}
		md.WriteString(strings.TrimSpace(res.Markdown))
		md.WriteString("\n\n")
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
		Title:    title,
	}, nil
}

func unmarshalPart(pkg *ooxml.Package, name string, v any) error {
	data, err := pkg.ReadPart(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
