package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars Vars
		want string
	}{
		{"both keys", "{a}-{b}", Vars{"a": "x", "b": "y"}, "x-y"},
		{"missing key renders empty", "{a}-{b}", Vars{"a": "x"}, "x-"},
		{"nil vars", "Hi {name}!", nil, "Hi !"},
		{"no placeholders", "plain text, nothing to do", Vars{"a": "x"}, "plain text, nothing to do"},
		{"braces without identifier", "{ } {-} {}", Vars{"": "z"}, "{ } {-} {}"},
		{"literal newline escape", `line1\nline2 {a}`, Vars{"a": "x"}, "line1\nline2 x"},
		{"value is not re-expanded", "{a}", Vars{"a": "{b}", "b": "nope"}, "{b}"},
		{"underscore and digits", "{first_name1}", Vars{"first_name1": "Ann"}, "Ann"},
		{"cyrillic text around", "Имя: {name}", Vars{"name": "Анна"}, "Имя: Анна"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.vars))
		})
	}
}

func TestRenderIdempotentWithoutPlaceholders(t *testing.T) {
	for _, tmpl := range []string{"", "hello", "<p>static</p>", "a { b } c", "multi\nline"} {
		assert.Equal(t, tmpl, Render(tmpl, Vars{"a": "x"}))
		assert.Equal(t, tmpl, Render(Render(tmpl, nil), nil))
	}
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;a&gt;&amp;&quot;&#039;", EscapeHTML(`<a>&"'`))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
}

func TestVarsEscaped(t *testing.T) {
	raw := Vars{"name": "<b>Ann</b>", "company": "A&B"}
	esc := raw.Escaped()
	assert.Equal(t, "&lt;b&gt;Ann&lt;/b&gt;", esc["name"])
	assert.Equal(t, "A&amp;B", esc["company"])
	assert.Equal(t, "<b>Ann</b>", raw["name"], "original map must stay untouched")
}
