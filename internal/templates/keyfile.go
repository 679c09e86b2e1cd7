package templates

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a malformed line in a template key file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("templates: line %d: %s", e.Line, e.Msg)
}

type valueKind int

const (
	kindBare valueKind = iota
	kindQuoted
	kindTripleQuoted
)

// LoadKeyFile reads a key file from disk.
func LoadKeyFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := ParseKeyFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// ParseKeyFile parses KEY = "value" assignments. Values may be single, double
// or triple quoted; quoted values understand \n \t \" \' and \\ escapes.
// Lines starting with # are comments. When a key is assigned more than once a
// triple-quoted value wins over a single-line one; otherwise the last wins.
func ParseKeyFile(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &keyParser{src: string(data), line: 1}
	return p.parse()
}

type keyParser struct {
	src  string
	pos  int
	line int
}

func (p *keyParser) parse() (map[string]string, error) {
	values := map[string]string{}
	kinds := map[string]valueKind{}

	for {
		p.skipBlankAndComments()
		if p.eof() {
			return values, nil
		}
		keyLine := p.line
		key := p.readKey()
		if key == "" {
			return nil, &ParseError{Line: keyLine, Msg: fmt.Sprintf("expected key, found %q", p.peekLine())}
		}
		p.skipInlineSpace()
		if p.eof() || p.src[p.pos] != '=' {
			return nil, &ParseError{Line: keyLine, Msg: fmt.Sprintf("expected '=' after %s", key)}
		}
		p.pos++
		p.skipInlineSpace()

		value, kind, err := p.readValue()
		if err != nil {
			return nil, err
		}
		if prev, seen := kinds[key]; seen && prev == kindTripleQuoted && kind != kindTripleQuoted {
			continue
		}
		values[key] = value
		kinds[key] = kind
	}
}

func (p *keyParser) eof() bool { return p.pos >= len(p.src) }

func (p *keyParser) advance(n int) {
	p.line += strings.Count(p.src[p.pos:p.pos+n], "\n")
	p.pos += n
}

func (p *keyParser) skipBlankAndComments() {
	for !p.eof() {
		switch c := p.src[p.pos]; {
		case c == '#':
			end := strings.IndexByte(p.src[p.pos:], '\n')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.advance(end)
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.advance(1)
		default:
			return
		}
	}
}

func (p *keyParser) skipInlineSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *keyParser) readKey() string {
	start := p.pos
	for !p.eof() && isKeyChar(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isKeyChar(c byte, first bool) bool {
	switch {
	case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func (p *keyParser) peekLine() string {
	rest := p.src[p.pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

func (p *keyParser) readValue() (string, valueKind, error) {
	rest := p.src[p.pos:]
	startLine := p.line
	for _, delim := range []string{`"""`, `'''`} {
		if strings.HasPrefix(rest, delim) {
			body, n, ok := scanQuoted(rest[3:], delim, true)
			if !ok {
				return "", 0, &ParseError{Line: startLine, Msg: "unterminated " + delim + " string"}
			}
			p.advance(3 + n)
			p.skipTrailing()
			return unescape(body), kindTripleQuoted, nil
		}
	}
	if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, `'`) {
		delim := rest[:1]
		body, n, ok := scanQuoted(rest[1:], delim, false)
		if !ok {
			return "", 0, &ParseError{Line: startLine, Msg: "unterminated " + delim + " string"}
		}
		p.advance(1 + n)
		p.skipTrailing()
		return unescape(body), kindQuoted, nil
	}

	end := strings.IndexByte(rest, '\n')
	if end < 0 {
		end = len(rest)
	}
	value := rest[:end]
	if i := strings.Index(value, " #"); i >= 0 {
		value = value[:i]
	}
	p.advance(end)
	return strings.TrimSpace(value), kindBare, nil
}

// skipTrailing consumes spaces and an optional comment after a quoted value.
func (p *keyParser) skipTrailing() {
	p.skipInlineSpace()
	if !p.eof() && p.src[p.pos] == '#' {
		end := strings.IndexByte(p.src[p.pos:], '\n')
		if end < 0 {
			p.pos = len(p.src)
			return
		}
		p.advance(end)
	}
}

// scanQuoted finds the closing delimiter in s, honoring backslash escapes. It
// returns the raw body and the number of bytes consumed including the
// delimiter.
func scanQuoted(s, delim string, multiline bool) (string, int, bool) {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++
		case !multiline && s[i] == '\n':
			return "", 0, false
		case strings.HasPrefix(s[i:], delim):
			return s[:i], i + len(delim), true
		}
	}
	return "", 0, false
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"', '\'', '\\':
			b.WriteByte(next)
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}
