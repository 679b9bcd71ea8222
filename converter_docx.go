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
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/conductor-oss/markitdown-go/internal/docxmath"
	"github.com/conductor-oss/markitdown-go/internal/ooxml"
)

const docxMainPart = "word/document.xml"

// DocxConverter handles Word documents. The body is rendered to HTML and
// then to markdown, so headings, lists, tables, links and images survive.
type DocxConverter struct {
	markitdown *MarkItDown
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(m *MarkItDown) *DocxConverter {
	return &DocxConverter{markitdown: m}
}

func (c *DocxConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".docx"
}

func (c *DocxConverter) Convert(_ context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}
	pkg, err := ooxml.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	docData, err := pkg.ReadPart(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}
	doc, err := ooxml.ParseTree(docData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docxMainPart, err)
	}
	rels, err := pkg.Relationships(docxMainPart)
	if err != nil {
		return nil, err
	}

	r := &docxRenderer{
		pkg:      pkg,
		rels:     rels,
		styles:   docxStyleNames(pkg),
		numFmts:  docxNumberingFormats(pkg),
		styleMap: parseStyleMap(opts.StyleMap),
	}
	r.b.WriteString("<html><body>")
	r.blocks(doc.Find("body"))
	r.closeLists()
	r.b.WriteString("</body></html>")

	res, err := NewHTMLConverter(c.markitdown).ConvertString(r.b.String())
	if err != nil {
		return nil, err
	}
	res.Markdown = r.restoreMath(res.Markdown)
	res.Title = pkg.Title()
	return res, nil
}

var reStyleMapRule = regexp.MustCompile(`^(?:p\[style-name=['"]([^'"]+)['"]\]|([^=]+?))\s*=>\s*([A-Za-z][A-Za-z0-9]*)`)

// parseStyleMap reads rules of the form "Style Name => tag" or
// "p[style-name='Style Name'] => tag". Style names are case-insensitive.
func parseStyleMap(s string) map[string]string {
	rules := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		m := reStyleMapRule.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		rules[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(m[3])
	}
	return rules
}

// docxStyleNames maps style ids to their display names.
func docxStyleNames(pkg *ooxml.Package) map[string]string {
	names := map[string]string{}
	data, err := pkg.ReadPart("word/styles.xml")
	if err != nil {
		return names
	}
	root, err := ooxml.ParseTree(data)
	if err != nil {
		return names
	}
	for _, s := range root.FindAll("style") {
		if n := s.Child("name"); n != nil {
			names[s.AttrValue("styleId")] = n.AttrValue("val")
		}
	}
	return names
}

// docxNumberingFormats maps numId and level to the number format
// ("decimal", "bullet", ...).
func docxNumberingFormats(pkg *ooxml.Package) map[string]map[string]string {
	out := map[string]map[string]string{}
	data, err := pkg.ReadPart("word/numbering.xml")
	if err != nil {
		return out
	}
	root, err := ooxml.ParseTree(data)
	if err != nil {
		return out
	}

	abstract := map[string]map[string]string{}
	for _, a := range root.FindAll("abstractNum") {
		levels := map[string]string{}
		for _, lvl := range a.FindAll("lvl") {
			levels[lvl.AttrValue("ilvl")] = lvl.Child("numFmt").AttrValue("val")
		}
		abstract[a.AttrValue("abstractNumId")] = levels
	}
	for _, n := range root.Children {
		if n.Is("num") {
			out[n.AttrValue("numId")] = abstract[n.Child("abstractNumId").AttrValue("val")]
		}
	}
	return out
}

type docxRenderer struct {
	pkg      *ooxml.Package
	rels     map[string]ooxml.Relationship
	styles   map[string]string
	numFmts  map[string]map[string]string
	styleMap map[string]string

	b        strings.Builder
	lists    []string
	formulas []string
}

// math stores a rendered formula and returns the placeholder written into
// the HTML, so Markdown escaping never touches the LaTeX.
func (r *docxRenderer) math(latex string) string {
	r.formulas = append(r.formulas, latex)
	return fmt.Sprintf("MARKITDOWNMATH%dX", len(r.formulas)-1)
}

// restoreMath swaps the placeholders in md for their formulas.
func (r *docxRenderer) restoreMath(md string) string {
	if len(r.formulas) == 0 {
		return md
	}
	pairs := make([]string, 0, 2*len(r.formulas))
	for i, f := range r.formulas {
		pairs = append(pairs, fmt.Sprintf("MARKITDOWNMATH%dX", i), f)
	}
	return strings.NewReplacer(pairs...).Replace(md)
}

func (r *docxRenderer) blocks(parent *ooxml.Node) {
	if parent == nil {
		return
	}
	for _, n := range parent.Children {
		switch n.Name.Local {
		case "p":
			r.paragraph(n)
		case "tbl":
			r.closeLists()
			r.table(n)
		case "sdt":
			r.blocks(n.Child("sdtContent"))
		}
	}
}

func (r *docxRenderer) paragraph(p *ooxml.Node) {
	pPr := p.Child("pPr")
	content := r.inline(p)

	if numPr := pPr.Child("numPr"); numPr != nil {
		level, _ := strconv.Atoi(numPr.Child("ilvl").AttrValue("val"))
		numID := numPr.Child("numId").AttrValue("val")
		tag := "ul"
		if f := r.numFmts[numID][strconv.Itoa(level)]; f != "" && f != "bullet" {
			tag = "ol"
		}
		r.listItem(level, tag, content)
		return
	}
	r.closeLists()

	if strings.TrimSpace(content) == "" {
		return
	}
	tag := r.paragraphTag(pPr.Child("pStyle").AttrValue("val"))
	fmt.Fprintf(&r.b, "<%s>%s</%s>", tag, content, tag)
}

// paragraphTag picks the HTML element for a paragraph style: a style map
// rule first, then the built-in heading styles.
func (r *docxRenderer) paragraphTag(styleID string) string {
	name := r.styles[styleID]
	if name == "" {
		name = styleID
	}
	lower := strings.ToLower(name)
	if tag, ok := r.styleMap[lower]; ok {
		return tag
	}
	switch {
	case lower == "title":
		return "h1"
	case strings.HasPrefix(lower, "heading"):
		if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lower, "heading"))); err == nil && n >= 1 && n <= 6 {
			return "h" + strconv.Itoa(n)
		}
	}
	return "p"
}

// listItem opens an item at level, nesting or closing lists as needed. The
// previous item's <li> stays open so a deeper list nests inside it.
func (r *docxRenderer) listItem(level int, tag, content string) {
	if level+1 > len(r.lists) {
		for len(r.lists) < level+1 {
			r.b.WriteString("<" + tag + ">")
			r.lists = append(r.lists, tag)
		}
	} else {
		for len(r.lists) > level+1 {
			r.popList()
		}
		r.b.WriteString("</li>")
	}
	r.b.WriteString("<li>" + content)
}

func (r *docxRenderer) popList() {
	tag := r.lists[len(r.lists)-1]
	r.lists = r.lists[:len(r.lists)-1]
	r.b.WriteString("</li></" + tag + ">")
}

func (r *docxRenderer) closeLists() {
	for len(r.lists) > 0 {
		r.popList()
	}
}

func (r *docxRenderer) table(tbl *ooxml.Node) {
	r.b.WriteString("<table>")
	first := true
	for _, tr := range tbl.Children {
		if !tr.Is("tr") {
			continue
		}
		cell := "td"
		if first {
			cell = "th"
			first = false
		}
		r.b.WriteString("<tr>")
		for _, tc := range tr.Children {
			if !tc.Is("tc") {
				continue
			}
			var parts []string
			for _, p := range tc.Children {
				if p.Is("p") {
					if s := strings.TrimSpace(r.inline(p)); s != "" {
						parts = append(parts, s)
					}
				}
			}
			fmt.Fprintf(&r.b, "<%s>%s</%s>", cell, strings.Join(parts, " "), cell)
		}
		r.b.WriteString("</tr>")
	}
	r.b.WriteString("</table>")
}

// inline renders the runs of a paragraph-like element.
func (r *docxRenderer) inline(parent *ooxml.Node) string {
	var b strings.Builder
	for _, n := range parent.Children {
		switch n.Name.Local {
		case "r":
			b.WriteString(r.run(n))
		case "hyperlink":
			text := r.inline(n)
			href := ""
			if rel, ok := r.rels[n.AttrValue("id")]; ok && rel.External() {
				href = rel.Target
			} else if anchor := n.AttrValue("anchor"); anchor != "" {
				href = "#" + anchor
			}
			if href == "" {
				b.WriteString(text)
			} else {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(href), text)
			}
		case "ins", "smartTag", "fldSimple", "customXml":
			b.WriteString(r.inline(n))
		case "sdt":
			b.WriteString(r.inline(n.Child("sdtContent")))
		case "oMath":
			b.WriteString(r.math("$" + docxmath.Latex(n) + "$"))
		case "oMathPara":
			b.WriteString(r.math("$$" + docxmath.Latex(n) + "$$"))
		}
	}
	return b.String()
}

func (r *docxRenderer) run(run *ooxml.Node) string {
	var b strings.Builder
	for _, n := range run.Children {
		switch n.Name.Local {
		case "t":
			b.WriteString(html.EscapeString(n.Text))
		case "tab":
			b.WriteString(" ")
		case "br", "cr":
			b.WriteString("<br>")
		case "drawing", "pict":
			b.WriteString(r.image(n))
		}
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return text
	}
	rPr := run.Child("rPr")
	if docxToggle(rPr.Child("i")) {
		text = "<em>" + text + "</em>"
	}
	if docxToggle(rPr.Child("b")) {
		text = "<strong>" + text + "</strong>"
	}
	if docxToggle(rPr.Child("strike")) {
		text = "<s>" + text + "</s>"
	}
	return text
}

// docxToggle reads an on/off run property; a bare element means on.
func docxToggle(n *ooxml.Node) bool {
	if n == nil {
		return false
	}
	switch n.AttrValue("val") {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// image inlines an embedded picture as a data URI. The HTML step truncates
// it unless data URIs are kept.
func (r *docxRenderer) image(drawing *ooxml.Node) string {
	blip := drawing.Find("blip")
	if blip == nil {
		return ""
	}
	alt := drawing.Find("docPr").AttrValue("descr")
	rel, ok := r.rels[blip.AttrValue("embed")]
	if !ok || rel.External() {
		return ""
	}
	data, err := r.pkg.ReadPart(ooxml.ResolveTarget(docxMainPart, rel.Target))
	if err != nil {
		return ""
	}
	src := "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(`<img src="%s" alt="%s">`, src, html.EscapeString(alt))
}
