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

package docxmath

import "strings"

var greekLower = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "mu", "nu", "xi", "o", "pi", "rho",
	"varsigma", "sigma", "tau", "upsilon", "phi", "chi", "psi", "omega",
}

var greekUpper = map[rune]string{
	'Γ': "Gamma", 'Δ': "Delta", 'Θ': "Theta", 'Λ': "Lambda", 'Ξ': "Xi",
	'Π': "Pi", 'Σ': "Sigma", 'Υ': "Upsilon", 'Φ': "Phi", 'Ψ': "Psi", 'Ω': "Omega",
}

var operators = map[rune]string{
	'→': "rightarrow", '←': "leftarrow", '↔': "leftrightarrow", '⇒': "Rightarrow",
	'⇔': "Leftrightarrow", '≠': "ne", '≤': "leq", '≥': "geq", '≪': "ll", '≫': "gg",
	'≈': "approx", '≡': "equiv", '∼': "sim", '∝': "propto", '∈': "in", '∉': "notin",
	'∋': "ni", '⊂': "subset", '⊆': "subseteq", '⊃': "supset", '⊇': "supseteq",
	'∪': "cup", '∩': "cap", '∅': "emptyset", '∀': "forall", '∃': "exists",
	'∞': "infty", '∂': "partial", '∇': "nabla", '±': "pm", '∓': "mp", '×': "times",
	'÷': "div", '·': "cdot", '⋅': "cdot", '∘': "circ", '⋯': "cdots", '…': "ldots",
	'⋮': "vdots", '⋱': "ddots", '¬': "neg", '∧': "wedge", '∨': "vee",
}

var bigOperators = map[string]string{
	"∑": `\sum`, "∏": `\prod`, "∐": `\coprod`, "∫": `\int`, "∬": `\iint`,
	"∭": `\iiint`, "∮": `\oint`, "⋃": `\bigcup`, "⋂": `\bigcap`, "⋁": `\bigvee`,
	"⋀": `\bigwedge`, "⨀": `\bigodot`, "⨁": `\bigoplus`, "⨂": `\bigotimes`,
}

var accents = map[string]string{
	"\u0300": `\grave`, "\u0301": `\acute`, "\u0302": `\hat`, "\u0303": `\tilde`,
	"\u0304": `\bar`, "\u0305": `\overline`, "\u0306": `\breve`, "\u0307": `\dot`,
	"\u0308": `\ddot`, "\u030c": `\check`, "\u20d6": `\overleftarrow`,
	"\u20d7": `\vec`, "\u20e1": `\overleftrightarrow`,
}

var groupChars = map[string]string{
	"⏞": `\overbrace`, "⏟": `\underbrace`, "⏜": `\overparen`,
	"⏝": `\underparen`, "⎴": `\overbracket`, "⎵": `\underbracket`,
}

var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true,
	"tanh": true, "coth": true, "log": true, "ln": true, "exp": true, "det": true,
	"lim": true, "max": true, "min": true, "sup": true, "inf": true,
}

const latexSpecials = "{}_^#&$%~"

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(latexSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// symbol maps one character of a math run to LaTeX. Math italic letters
// fold to ASCII; Greek letters and operators become commands.
func symbol(r rune) string {
	switch {
	case r >= 0x1D434 && r <= 0x1D44D:
		return string('A' + r - 0x1D434)
	case r >= 0x1D44E && r <= 0x1D467:
		return string('a' + r - 0x1D44E)
	case r == 0x210E:
		return "h"
	case r >= 0x03B1 && r <= 0x03C9:
		return `\` + greekLower[r-0x03B1] + " "
	case r >= 0x1D6FC && r <= 0x1D714:
		return `\` + greekLower[r-0x1D6FC] + " "
	}
	if name, ok := greekUpper[r]; ok {
		return `\` + name + " "
	}
	if name, ok := operators[r]; ok {
		return `\` + name + " "
	}
	if r == '′' {
		return "'"
	}
	return escape(string(r))
}
