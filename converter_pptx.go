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
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/conductor-oss/markitdown-go/internal/ooxml"
)

const pptxPresentationPart = "ppt/presentation.xml"

// PptxConverter handles PowerPoint decks. Each slide becomes a section
// headed by a slide-number comment, with speaker notes appended.
type PptxConverter struct {
	markitdown *MarkItDown
}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter(m *MarkItDown) *PptxConverter {
	return &PptxConverter{markitdown: m}
}

func (c *PptxConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".pptx"
}

func (c *PptxConverter) Convert(ctx context.Context, src Source, _ ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}
	pkg, err := ooxml.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}

	slides, err := pptxSlideOrder(pkg)
	if err != nil {
		return nil, err
	}

	var md strings.Builder
	for i, slidePath := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(&md, "\n\n<!-- Slide number: %d -->\n", i+1)

		body, err := c.renderSlide(pkg, slidePath)
		if err != nil {
			return nil, err
		}
		md.WriteString(body)

		if notes := pptxNotes(pkg, slidePath); notes != "" {
			md.WriteString("\n\n### Notes:\n")
			md.WriteString(notes)
		}
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
		Title:    pkg.Title(),
	}, nil
}

// pptxSlideOrder lists slide parts in presentation order.
func pptxSlideOrder(pkg *ooxml.Package) ([]string, error) {
	data, err := pkg.ReadPart(pptxPresentationPart)
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}
	pres, err := ooxml.ParseTree(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pptxPresentationPart, err)
	}
	rels, err := pkg.Relationships(pptxPresentationPart)
	if err != nil {
		return nil, err
	}

	var slides []string
	for _, sld := range pres.FindAll("sldId") {
		if rel, ok := rels[sld.AttrNS(ooxml.NSRelDoc, "id")]; ok {
			slides = append(slides, ooxml.ResolveTarget(pptxPresentationPart, rel.Target))
		}
	}
	return slides, nil
}

type pptxShape struct {
	top, left int64
	markdown  string
}

func (c *PptxConverter) renderSlide(pkg *ooxml.Package, slidePath string) (string, error) {
	data, err := pkg.ReadPart(slidePath)
	if err != nil {
		return "", err
	}
	slide, err := ooxml.ParseTree(data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", slidePath, err)
	}
	rels, err := pkg.Relationships(slidePath)
	if err != nil {
		return "", err
	}

	var shapes []pptxShape
	c.collectShapes(pkg, slidePath, rels, slide.Find("spTree"), &shapes)
	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].top != shapes[j].top {
			return shapes[i].top < shapes[j].top
		}
		return shapes[i].left < shapes[j].left
	})

	var b strings.Builder
	for _, s := range shapes {
		b.WriteString(s.markdown)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (c *PptxConverter) collectShapes(pkg *ooxml.Package, slidePath string, rels map[string]ooxml.Relationship, tree *ooxml.Node, out *[]pptxShape) {
	if tree == nil {
		return
	}
	for _, n := range tree.Children {
		var md string
		switch n.Name.Local {
		case "grpSp":
			c.collectShapes(pkg, slidePath, rels, n, out)
			continue
		case "sp":
			md = pptxTextShape(n)
		case "pic":
			md = pptxPicture(n, rels)
		case "graphicFrame":
			md = c.pptxGraphicFrame(pkg, slidePath, rels, n)
		}
		if strings.TrimSpace(md) == "" {
			continue
		}
		top, left := pptxOffset(n)
		*out = append(*out, pptxShape{top: top, left: left, markdown: md})
	}
}

func pptxOffset(shape *ooxml.Node) (top, left int64) {
	off := shape.Find("off")
	left, _ = strconv.ParseInt(off.AttrValue("x"), 10, 64)
	top, _ = strconv.ParseInt(off.AttrValue("y"), 10, 64)
	return top, left
}

func pptxTextShape(sp *ooxml.Node) string {
	txBody := sp.Find("txBody")
	if txBody == nil {
		return ""
	}
	var lines []string
	for _, p := range txBody.FindAll("p") {
		lines = append(lines, p.InnerText())
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return ""
	}

	switch sp.Find("ph").AttrValue("type") {
	case "title", "ctrTitle":
		return "# " + strings.ReplaceAll(text, "\n", " ")
	}
	return text
}

// pptxPicture renders a picture as a markdown image named after its media
// part, with the shape description as alt text.
func pptxPicture(pic *ooxml.Node, rels map[string]ooxml.Relationship) string {
	cNvPr := pic.Find("cNvPr")
	alt := cNvPr.AttrValue("descr")
	if alt == "" {
		alt = cNvPr.AttrValue("name")
	}
	name := "image"
	if rel, ok := rels[pic.Find("blip").AttrValue("embed")]; ok {
		name = path.Base(rel.Target)
	}
	return fmt.Sprintf("![%s](%s)", sanitizeAltText(alt), name)
}

var altTextReplacer = strings.NewReplacer("\r", " ", "\n", " ", "[", " ", "]", " ")

func sanitizeAltText(s string) string {
	return strings.Join(strings.Fields(altTextReplacer.Replace(s)), " ")
}

func (c *PptxConverter) pptxGraphicFrame(pkg *ooxml.Package, slidePath string, rels map[string]ooxml.Relationship, frame *ooxml.Node) string {
	if tbl := frame.Find("tbl"); tbl != nil {
		var rows [][]string
		for _, tr := range tbl.FindAll("tr") {
			var row []string
			for _, tc := range tr.FindAll("tc") {
				row = append(row, strings.TrimSpace(tc.InnerText()))
			}
			rows = append(rows, row)
		}
		return renderMarkdownTable(padRows(rows))
	}

	chartRef := frame.Find("chart")
	if chartRef == nil {
		return ""
	}
	title := "### Chart"
	if rel, ok := rels[chartRef.AttrValue("id")]; ok {
		if data, err := pkg.ReadPart(ooxml.ResolveTarget(slidePath, rel.Target)); err == nil {
			if chart, err := ooxml.ParseTree(data); err == nil {
				if t := strings.TrimSpace(chart.Find("title").InnerText()); t != "" {
					title += ": " + t
				}
			}
		}
	}
	return title
}

// pptxNotes returns the speaker notes of a slide, or "".
func pptxNotes(pkg *ooxml.Package, slidePath string) string {
	rels, err := pkg.Relationships(slidePath)
	if err != nil {
		return ""
	}
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		data, err := pkg.ReadPart(ooxml.ResolveTarget(slidePath, rel.Target))
		if err != nil {
			return ""
		}
		notes, err := ooxml.ParseTree(data)
		if err != nil {
			return ""
		}
		var lines []string
		for _, sp := range notes.FindAll("sp") {
			// The slide image placeholder and the slide number carry no notes.
			if t := sp.Find("ph").AttrValue("type"); t != "" && t != "body" {
				continue
			}
			for _, p := range sp.FindAll("p") {
				lines = append(lines, p.InnerText())
			}
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return ""
}
