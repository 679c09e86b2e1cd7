package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderFile = `# ============================================================
# Email Order Configuration
# ============================================================

# client | system
FROM_MODE = "client"

FROM_TEMPLATE = "{name} ({company}) <{email}>"
SUBJECT_TEMPLATE = 'DocLogic: new request from {name} {company}'

TEXT_TEMPLATE = """New DocLogic request

Name: {name}
Comment:
{messageOrDash}"""

HTML_TEMPLATE = '''<p>{nameHtml}</p>'''  # inline comment
`

func TestParseKeyFile(t *testing.T) {
	values, err := ParseKeyFile(strings.NewReader(orderFile))
	require.NoError(t, err)

	assert.Equal(t, "client", values["FROM_MODE"])
	assert.Equal(t, "{name} ({company}) <{email}>", values["FROM_TEMPLATE"])
	assert.Equal(t, "DocLogic: new request from {name} {company}", values["SUBJECT_TEMPLATE"])
	assert.Equal(t, "New DocLogic request\n\nName: {name}\nComment:\n{messageOrDash}", values["TEXT_TEMPLATE"])
	assert.Equal(t, "<p>{nameHtml}</p>", values["HTML_TEMPLATE"])
	assert.Len(t, values, 5)
}

func TestParseKeyFileEscapes(t *testing.T) {
	src := `A = "line1\nline2\tend"
B = 'it\'s'
C = "say \"hi\" \\ done"
D = """Company "DocLogic\""""
E = "unknown \q stays"
`
	values, err := ParseKeyFile(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "line1\nline2\tend", values["A"])
	assert.Equal(t, "it's", values["B"])
	assert.Equal(t, `say "hi" \ done`, values["C"])
	assert.Equal(t, `Company "DocLogic"`, values["D"])
	assert.Equal(t, `unknown \q stays`, values["E"])
}

func TestParseKeyFileTripleQuotedWins(t *testing.T) {
	src := `TEXT_TEMPLATE = """multi
line"""
TEXT_TEMPLATE = "single"
SUBJECT_TEMPLATE = "first"
SUBJECT_TEMPLATE = "second"
`
	values, err := ParseKeyFile(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "multi\nline", values["TEXT_TEMPLATE"])
	assert.Equal(t, "second", values["SUBJECT_TEMPLATE"])

	reversed := "TEXT_TEMPLATE = 'single'\nTEXT_TEMPLATE = '''multi'''\n"
	values, err = ParseKeyFile(strings.NewReader(reversed))
	require.NoError(t, err)
	assert.Equal(t, "multi", values["TEXT_TEMPLATE"])
}

func TestParseKeyFileBareValue(t *testing.T) {
	values, err := ParseKeyFile(strings.NewReader("FROM_MODE = system # trailing\n"))
	require.NoError(t, err)
	assert.Equal(t, "system", values["FROM_MODE"])
}

func TestParseKeyFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing equals", "# header\nKEY \"value\"\n", 2},
		{"unterminated double", "A = \"ok\"\nB = \"broken\nC = \"x\"\n", 2},
		{"unterminated triple", "\n\nA = \"\"\"never closed\n", 3},
		{"garbage key", "= \"value\"\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeyFile(strings.NewReader(tt.src))
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestLoadKeyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "email-order.conf")
	require.NoError(t, os.WriteFile(path, []byte(orderFile), 0o600))

	values, err := LoadKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, "client", values["FROM_MODE"])

	_, err = LoadKeyFile(filepath.Join(dir, "missing.conf"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
