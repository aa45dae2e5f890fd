// Package record converts single leaves to and from one-line text records.
//
// Two layouts are understood:
//
//	FormatPath    log/version:"1.2"
//	FormatObject  {"log/version":"1.2"}
//
// In FormatPath a '\' or ':' inside the path is escaped with a backslash so
// the first unescaped ':' always separates path from value. Control
// characters are written as \n, \r, \t or \u00XX.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Format selects a record layout.
type Format int

const (
	FormatPath Format = iota
	FormatObject
)

func (f Format) String() string {
	switch f {
	case FormatPath:
		return "path"
	case FormatObject:
		return "object"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a format name back to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "path":
		return FormatPath, nil
	case "object", "nljson":
		return FormatObject, nil
	}
	return 0, fmt.Errorf("unknown record format %q", s)
}

var (
	errNoSeparator = errors.New("missing ':' separator")
	errNotSingle   = errors.New("record object must have exactly one key")
	errTrailing    = errors.New("trailing data after value")
	errBadEscape   = errors.New("invalid escape in path")
)

// ParseError describes a line that could not be split or decoded.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// EscapePath escapes a path for FormatPath. Besides '\' and ':', control
// characters and a leading space are escaped so that a record always fits
// on one line and survives whitespace trimming by line readers.
func EscapePath(p string) string {
	if !needsEscape(p) {
		return p
	}
	var b strings.Builder
	b.Grow(len(p) + 8)
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' || c == ':':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\u%04x`, c)
		case c == ' ' && i == 0:
			b.WriteString(`\ `)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func needsEscape(p string) bool {
	if strings.HasPrefix(p, " ") {
		return true
	}
	for i := 0; i < len(p); i++ {
		if c := p[i]; c == '\\' || c == ':' || c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

// AppendRecord appends one newline-terminated record holding the raw JSON
// value text.
func AppendRecord(dst []byte, f Format, path string, raw []byte) ([]byte, error) {
	switch f {
	case FormatObject:
		key, err := json.MarshalNoEscape(path)
		if err != nil {
			return dst, err
		}
		dst = append(dst, '{')
		dst = append(dst, key...)
		dst = append(dst, ':')
		dst = append(dst, raw...)
		dst = append(dst, '}', '\n')
	default:
		dst = append(dst, EscapePath(path)...)
		dst = append(dst, ':')
		dst = append(dst, raw...)
		dst = append(dst, '\n')
	}
	return dst, nil
}

// AppendType appends a "<path>:<kind>" line.
func AppendType(dst []byte, path, kind string) []byte {
	dst = append(dst, path...)
	dst = append(dst, ':')
	dst = append(dst, kind...)
	return append(dst, '\n')
}

// Parse splits a trimmed, non-empty line into path and decoded value.
// Numbers decode as json.Number.
func Parse(line string, f Format) (string, any, error) {
	var (
		path string
		val  any
		err  error
	)
	if f == FormatObject {
		path, val, err = parseObject(line)
	} else {
		path, val, err = parsePath(line)
	}
	if err != nil {
		return "", nil, &ParseError{Line: line, Err: err}
	}
	return path, val, nil
}

func parsePath(line string) (string, any, error) {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '\\':
			i++
			if i == len(line) {
				return "", nil, errBadEscape
			}
			switch e := line[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if i+4 >= len(line) {
					return "", nil, errBadEscape
				}
				n, err := strconv.ParseUint(line[i+1:i+5], 16, 8)
				if err != nil {
					return "", nil, errBadEscape
				}
				b.WriteByte(byte(n))
				i += 4
			default:
				b.WriteByte(e)
			}
		case ':':
			v, err := DecodeValue([]byte(line[i+1:]))
			if err != nil {
				return "", nil, err
			}
			return b.String(), v, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", nil, errNoSeparator
}

func parseObject(line string) (string, any, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, errNotSingle
	}
	for k, raw := range m {
		v, err := DecodeValue(raw)
		return k, v, err
	}
	return "", nil, errNotSingle
}

// DecodeValue decodes exactly one JSON value. A bare number is returned as
// json.Number without conversion, so any syntactically valid number is
// accepted whatever its magnitude.
func DecodeValue(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	switch c := raw[0]; {
	case c == '-' || isDigit(c):
		if !validNumber(raw) {
			return nil, fmt.Errorf("invalid number literal %q", raw)
		}
		return json.Number(raw), nil
	case c == ',' || c == ':':
		// the stream decoder would silently skip these
		return nil, fmt.Errorf("invalid character %q looking for beginning of value", c)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if len(bytes.TrimSpace(raw[dec.InputOffset():])) > 0 {
		return nil, errTrailing
	}
	return v, nil
}

// validNumber checks b against the JSON number grammar.
func validNumber(b []byte) bool {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	switch {
	case i < len(b) && b[i] == '0':
		i++
	case i < len(b) && b[i] >= '1' && b[i] <= '9':
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(b) && b[i] == '.' {
		i++
		if i == len(b) || !isDigit(b[i]) {
			return false
		}
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		if i == len(b) || !isDigit(b[i]) {
			return false
		}
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}
	return i == len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
