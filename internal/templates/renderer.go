// Package templates renders the relay's message templates and loads the
// externally maintained template sets.
package templates

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Vars maps placeholder names to their values.
type Vars map[string]string

// DecodeNewlines turns literal "\n" sequences (as written in single-line env
// values) into real newlines.
func DecodeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// Render substitutes every {key} placeholder in tmpl. Unknown keys render as
// the empty string; Render never fails.
func Render(tmpl string, vars Vars) string {
	return placeholderPattern.ReplaceAllStringFunc(DecodeNewlines(tmpl), func(match string) string {
		return vars[match[1:len(match)-1]]
	})
}

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Escaped returns a copy of vars with every value HTML-escaped.
func (v Vars) Escaped() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		out[k] = EscapeHTML(val)
	}
	return out
}
