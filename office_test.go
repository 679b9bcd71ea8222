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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	wordNS  = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	coreXML = `<?xml version="1.0"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Quarterly Report</dc:title></cp:coreProperties>`
)

func testDocx(t *testing.T) []byte {
	t.Helper()
	document := `<?xml version="1.0"?><w:document ` + wordNS + `><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Overview</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r><w:r><w:t xml:space="preserve"> and </w:t></w:r><w:hyperlink r:id="rId1"><w:r><w:t>a link</w:t></w:r></w:hyperlink></w:p>
<w:p><w:pPr><w:pStyle w:val="Quote"/></w:pPr><w:r><w:t>Wise words</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>First</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>alpha</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`
	rels := `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/>
</Relationships>`
	numbering := `<?xml version="1.0"?><w:numbering ` + wordNS + `>
<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	return buildZip(t,
		zipFile{"word/document.xml", []byte(document)},
		zipFile{"word/_rels/document.xml.rels", []byte(rels)},
		zipFile{"word/numbering.xml", []byte(numbering)},
		zipFile{"docProps/core.xml", []byte(coreXML)},
	)
}

func TestDocxConverter(t *testing.T) {
	data := testDocx(t)

	res := convertString(t, New(), string(data), ConverterOptions{FileExtension: ".docx"})
	assert.Equal(t, "Quarterly Report", res.Title)
	assert.Contains(t, res.Markdown, "# Overview")
	assert.Contains(t, res.Markdown, "**Bold** and [a link](https://example.com/)")
	assert.Contains(t, res.Markdown, "1. First")
	assert.Contains(t, res.Markdown, "2. Second")
	assert.Contains(t, res.Markdown, "| Name")
	assert.Contains(t, res.Markdown, "alpha")
	assert.NotContains(t, res.Markdown, "> Wise words")

	mapped := convertString(t, New(WithStyleMap("p[style-name='Quote'] => blockquote")), string(data), ConverterOptions{FileExtension: ".docx"})
	assert.Contains(t, mapped.Markdown, "> Wise words")

	perCall := convertString(t, New(), string(data), ConverterOptions{FileExtension: ".docx", StyleMap: "Quote => blockquote"})
	assert.Contains(t, perCall.Markdown, "> Wise words")
}

func TestDocxConverterMath(t *testing.T) {
	document := `<?xml version="1.0"?><w:document ` + wordNS + ` xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"><w:body>
<w:p><w:r><w:t xml:space="preserve">Area is </w:t></w:r><m:oMath><m:sSup><m:e><m:r><m:t>r</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup></m:oMath></w:p>
<w:p><m:oMathPara><m:oMath><m:sSub><m:e><m:r><m:t>x</m:t></m:r></m:e><m:sub><m:r><m:t>1</m:t></m:r></m:sub></m:sSub><m:r><m:t>+</m:t></m:r><m:f><m:num><m:r><m:t>a</m:t></m:r></m:num><m:den><m:r><m:t>b</m:t></m:r></m:den></m:f></m:oMath></m:oMathPara></w:p>
</w:body></w:document>`
	data := buildZip(t, zipFile{"word/document.xml", []byte(document)})

	res := convertString(t, New(), string(data), ConverterOptions{FileExtension: ".docx"})
	assert.Equal(t, "Area is $r^{2}$\n\n$$x_{1}+\\frac{a}{b}$$", res.Markdown)
}

func TestDocxConverterNotAPackage(t *testing.T) {
	_, err := New().ConvertBuffer(context.Background(), []byte("plain text"), ConverterOptions{FileExtension: ".docx"})
	assert.True(t, IsConversionError(err))
}

func TestParseStyleMap(t *testing.T) {
	rules := parseStyleMap("Quote => blockquote\np[style-name='Code Block'] => pre\n\ngarbage line\nIntense Quote=>H2")
	assert.Equal(t, map[string]string{
		"quote":         "blockquote",
		"code block":    "pre",
		"intense quote": "h2",
	}, rules)
}

func TestPptxConverter(t *testing.T) {
	const (
		pNS   = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
		relNS = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`
	)
	presentation := `<?xml version="1.0"?><p:presentation ` + pNS + `><p:sldIdLst>
<p:sldId id="257" r:id="rId3"/><p:sldId id="256" r:id="rId2"/>
</p:sldIdLst></p:presentation>`
	presRels := `<?xml version="1.0"?><Relationships ` + relNS + `>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
</Relationships>`
	shape := func(ph string, y int, text string) string {
		phXML := ""
		if ph != "" {
			phXML = `<p:nvPr><p:ph type="` + ph + `"/></p:nvPr>`
		}
		return `<p:sp><p:nvSpPr>` + phXML + `</p:nvSpPr><p:spPr><a:xfrm><a:off x="0" y="` + strconv.Itoa(y) + `"/></a:xfrm></p:spPr><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp>`
	}
	slide1 := `<?xml version="1.0"?><p:sld ` + pNS + `><p:cSld><p:spTree>` +
		shape("", 2000, "Body below") + shape("title", 100, "Second Title") +
		`</p:spTree></p:cSld></p:sld>`
	slide2 := `<?xml version="1.0"?><p:sld ` + pNS + `><p:cSld><p:spTree>` +
		shape("ctrTitle", 0, "Opening") +
		`<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture 3" descr="A [chart]&#10;image"/></p:nvPicPr><p:blipFill><a:blip r:embed="rId5"/></p:blipFill><p:spPr><a:xfrm><a:off x="0" y="500"/></a:xfrm></p:spPr></p:pic>` +
		`</p:spTree></p:cSld></p:sld>`
	slide2Rels := `<?xml version="1.0"?><Relationships ` + relNS + `>
<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
<Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide1.xml"/>
</Relationships>`
	notes := `<?xml version="1.0"?><p:notes ` + pNS + `><p:cSld><p:spTree>` +
		shape("sldImg", 0, "") + shape("body", 0, "Speaker notes here") +
		`</p:spTree></p:cSld></p:notes>`

	data := buildZip(t,
		zipFile{"ppt/presentation.xml", []byte(presentation)},
		zipFile{"ppt/_rels/presentation.xml.rels", []byte(presRels)},
		zipFile{"ppt/slides/slide1.xml", []byte(slide1)},
		zipFile{"ppt/slides/slide2.xml", []byte(slide2)},
		zipFile{"ppt/slides/_rels/slide2.xml.rels", []byte(slide2Rels)},
		zipFile{"ppt/notesSlides/notesSlide1.xml", []byte(notes)},
		zipFile{"docProps/core.xml", []byte(coreXML)},
	)

	res := convertString(t, New(), string(data), ConverterOptions{FileExtension: ".pptx"})
	want := "<!-- Slide number: 1 -->\n# Opening\n![A chart image](image1.png)\n\n### Notes:\nSpeaker notes here\n\n" +
		"<!-- Slide number: 2 -->\n# Second Title\nBody below"
	assert.Equal(t, want, res.Markdown)
	assert.Equal(t, "Quarterly Report", res.Title)
}

func TestXlsxConverter(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"apple", 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"pear", 5, "extra"}))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	require.NoError(t, f.SetDocProps(&excelize.DocProperties{Title: "Inventory"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res := convertString(t, New(), buf.String(), ConverterOptions{FileExtension: ".xlsx"})
	assert.Equal(t, "Inventory", res.Title)
	want := "## Sheet1\n| Name | Qty |  |\n| --- | --- | --- |\n| apple | 3 |  |\n| pear | 5 | extra |"
	assert.Equal(t, want, res.Markdown)
}

func TestEpubConverter(t *testing.T) {
	container := `<?xml version="1.0"?><container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
<rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`
	opf := `<?xml version="1.0"?><package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="3.0">
<metadata><dc:title>A Small Book</dc:title><dc:creator>Ann Author</dc:creator><dc:creator>Bob Writer</dc:creator><dc:language>en</dc:language></metadata>
<manifest>
<item id="c1" href="chapter%201.xhtml" media-type="application/xhtml+xml"/>
<item id="c2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
<item id="css" href="style.css" media-type="text/css"/>
</manifest>
<spine><itemref idref="c2"/><itemref idref="c1"/><itemref idref="css"/></spine>
</package>`

	data := buildZip(t,
		zipFile{"mimetype", []byte("application/epub+zip")},
		zipFile{"META-INF/container.xml", []byte(container)},
		zipFile{"OEBPS/content.opf", []byte(opf)},
		zipFile{"OEBPS/chapter 1.xhtml", []byte(`<html><body><h1>Chapter One</h1><p>It begins.</p></body></html>`)},
		zipFile{"OEBPS/chapter2.xhtml", []byte(`<html><body><h1>Chapter Two</h1><p>It ends.</p></body></html>`)},
	)

	res := convertString(t, New(), string(data), ConverterOptions{FileExtension: ".epub"})
	assert.Equal(t, "A Small Book", res.Title)
	want := "**Title:** A Small Book\n**Authors:** Ann Author, Bob Writer\n**Language:** en\n\n" +
		"# Chapter Two\n\nIt ends.\n\n# Chapter One\n\nIt begins."
	assert.Equal(t, want, res.Markdown)
}
