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

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is an element of a parsed part. Character data is kept in Text for
// text-bearing elements (w:t, a:t) only.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node
	Text     string
}

// ParseTree parses a part into a tree of elements.
func ParseTree(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &Node{}
	stack := []*Node{root}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse XML: %w", err)
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, Attr: t.Copy().Attr}
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if top.Name.Local == "t" {
				top.Text += string(t)
			}
		}
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("parse XML: empty document")
	}
	return root.Children[0], nil
}

// Is reports whether the element has the given local name.
func (n *Node) Is(local string) bool {
	return n != nil && n.Name.Local == local
}

// AttrValue returns the value of the attribute with the given local name.
func (n *Node) AttrValue(local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// AttrNS returns the value of the attribute in namespace space. Use it when
// an element carries both a plain and a prefixed attribute of the same name.
func (n *Node) AttrNS(space, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given local name, or nil.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Find returns the first descendant with the given local name, or nil.
func (n *Node) Find(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
		if d := c.Find(local); d != nil {
			return d
		}
	}
	return nil
}

// FindAll returns every descendant with the given local name in document order.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	if n == nil {
		return out
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
		out = append(out, c.FindAll(local)...)
	}
	return out
}

// InnerText concatenates the text of every descendant text element.
func (n *Node) InnerText() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.writeText(b)
	}
}
