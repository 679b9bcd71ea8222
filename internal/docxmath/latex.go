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

// Package docxmath renders Office Math (OMML) elements as LaTeX.
package docxmath

import (
	"strings"

	"github.com/conductor-oss/markitdown-go/internal/ooxml"
)

// Latex renders an m:oMath or m:oMathPara element. Unknown elements
// contribute the LaTeX of their children; property elements are ignored.
func Latex(n *ooxml.Node) string {
	if n.Is("oMathPara") {
		var eqs []string
		for _, c := range n.Children {
			if c.Is("oMath") {
				eqs = append(eqs, strings.TrimSpace(children(c)))
			}
		}
		return strings.Join(eqs, ` \\ `)
	}
	return strings.TrimSpace(children(n))
}

func children(n *ooxml.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(element(c))
	}
	return b.String()
}

// arg renders the named argument child (e, num, sub, ...) of n.
func arg(n *ooxml.Node, name string) string {
	return strings.TrimSpace(children(n.Child(name)))
}

// prop returns the m:val of a property inside n's <name>Pr element and
// whether the property is present at all.
func prop(n *ooxml.Node, key string) (string, bool) {
	pr := n.Child(n.Name.Local + "Pr")
	p := pr.Child(key)
	if p == nil {
		return "", false
	}
	return p.AttrValue("val"), true
}

func element(n *ooxml.Node) string {
	switch n.Name.Local {
	case "r":
		return run(n)
	case "f":
		return fraction(n)
	case "sSub":
		return arg(n, "e") + "_{" + arg(n, "sub") + "}"
	case "sSup":
		return arg(n, "e") + "^{" + arg(n, "sup") + "}"
	case "sSubSup":
		return arg(n, "e") + "_{" + arg(n, "sub") + "}^{" + arg(n, "sup") + "}"
	case "sPre":
		return "{}_{" + arg(n, "sub") + "}^{" + arg(n, "sup") + "}" + arg(n, "e")
	case "rad":
		return radical(n)
	case "d":
		return delimiter(n)
	case "nary":
		return nary(n)
	case "func":
		return function(n)
	case "acc":
		return accent(n)
	case "bar":
		if pos, _ := prop(n, "pos"); pos == "bot" {
			return `\underline{` + arg(n, "e") + "}"
		}
		return `\overline{` + arg(n, "e") + "}"
	case "groupChr":
		return groupChr(n)
	case "limLow":
		return limLow(n)
	case "limUpp":
		return `\overset{` + arg(n, "lim") + "}{" + arg(n, "e") + "}"
	case "eqArr":
		return `\begin{array}{c}` + joinArgs(n, "e", `\\`) + `\end{array}`
	case "m":
		var rows []string
		for _, mr := range n.Children {
			if mr.Is("mr") {
				rows = append(rows, joinArgs(mr, "e", "&"))
			}
		}
		return `\begin{matrix}` + strings.Join(rows, `\\`) + `\end{matrix}`
	}
	if strings.HasSuffix(n.Name.Local, "Pr") {
		return ""
	}
	return children(n)
}

func joinArgs(n *ooxml.Node, name, sep string) string {
	var parts []string
	for _, c := range n.Children {
		if c.Is(name) {
			parts = append(parts, strings.TrimSpace(children(c)))
		}
	}
	return strings.Join(parts, sep)
}

func run(n *ooxml.Node) string {
	var b strings.Builder
	for _, t := range n.Children {
		if !t.Is("t") {
			continue
		}
		for _, r := range t.Text {
			b.WriteString(symbol(r))
		}
	}
	return b.String()
}

func fraction(n *ooxml.Node) string {
	num, den := arg(n, "num"), arg(n, "den")
	switch typ, _ := prop(n, "type"); typ {
	case "lin":
		return "{" + num + "}/{" + den + "}"
	case "skw":
		return "^{" + num + "}/_{" + den + "}"
	case "noBar":
		return `\genfrac{}{}{0pt}{}{` + num + "}{" + den + "}"
	}
	return `\frac{` + num + "}{" + den + "}"
}

func radical(n *ooxml.Node) string {
	deg := arg(n, "deg")
	if hide, _ := prop(n, "degHide"); hide == "1" || hide == "on" || hide == "true" || deg == "" {
		return `\sqrt{` + arg(n, "e") + "}"
	}
	return `\sqrt[` + deg + "]{" + arg(n, "e") + "}"
}

// delimiter renders m:d. An explicitly empty begChr or endChr becomes the
// invisible delimiter ".".
func delimiter(n *ooxml.Node) string {
	delim := func(key, def string) string {
		v, ok := prop(n, key)
		if !ok {
			v = def
		}
		if v == "" {
			return "."
		}
		return escape(v)
	}
	sep, ok := prop(n, "sepChr")
	if !ok {
		sep = "|"
	}
	return `\left` + delim("begChr", "(") + joinArgs(n, "e", escape(sep)) + `\right` + delim("endChr", ")")
}

func nary(n *ooxml.Node) string {
	chr, ok := prop(n, "chr")
	if !ok {
		chr = "∫"
	}
	op, known := bigOperators[chr]
	if !known {
		op = escape(chr)
	}
	var b strings.Builder
	b.WriteString(op)
	if sub := arg(n, "sub"); sub != "" {
		b.WriteString("_{" + sub + "}")
	}
	if sup := arg(n, "sup"); sup != "" {
		b.WriteString("^{" + sup + "}")
	}
	b.WriteString("{" + arg(n, "e") + "}")
	return b.String()
}

func function(n *ooxml.Node) string {
	name := arg(n, "fName")
	if functionNames[name] {
		name = `\` + name
	}
	return name + "{" + arg(n, "e") + "}"
}

func accent(n *ooxml.Node) string {
	chr, ok := prop(n, "chr")
	if !ok {
		chr = "\u0302"
	}
	cmd, known := accents[chr]
	if !known {
		cmd = `\hat`
	}
	return cmd + "{" + arg(n, "e") + "}"
}

func groupChr(n *ooxml.Node) string {
	chr, ok := prop(n, "chr")
	if !ok {
		chr = "⏟"
	}
	if cmd, known := groupChars[chr]; known {
		return cmd + "{" + arg(n, "e") + "}"
	}
	return arg(n, "e")
}

func limLow(n *ooxml.Node) string {
	base := arg(n, "e")
	lim := strings.ReplaceAll(arg(n, "lim"), `\rightarrow`, `\to`)
	if functionNames[base] {
		return `\` + base + "_{" + lim + "}"
	}
	return base + "_{" + lim + "}"
}
