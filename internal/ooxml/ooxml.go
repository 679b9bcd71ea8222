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

// Package ooxml reads the shared packaging layer of Office Open XML
// documents: part lookup, relationships and core properties.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Namespaces used by the DOCX and PPTX readers.
const (
	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSRelDoc           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPresentationML   = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// Package is an opened OOXML container.
type Package struct {
	zr    *zip.Reader
	parts map[string]*zip.File
}

// Open reads the central directory of an OOXML container.
func Open(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	p := &Package{zr: zr, parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.parts[strings.TrimPrefix(f.Name, "/")] = f
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// ReadPart returns the content of the named part.
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Relationships returns the relationships of part keyed by id. A part
// without a .rels file has none.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	relsPath := RelsPathFor(part)
	if !p.Has(relsPath) {
		return map[string]Relationship{}, nil
	}
	data, err := p.ReadPart(relsPath)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Relationships []Relationship `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode relationships of %q: %w", part, err)
	}
	out := make(map[string]Relationship, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		out[rel.ID] = rel
	}
	return out, nil
}

// Title returns dc:title from docProps/core.xml, or "".
func (p *Package) Title() string {
	data, err := p.ReadPart("docProps/core.xml")
	if err != nil {
		return ""
	}
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

// RelsPathFor returns the .rels part describing part.
func RelsPathFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns it.
func ResolveTarget(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(part), target)
}
