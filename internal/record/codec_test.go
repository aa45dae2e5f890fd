package record

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAppendRecord(t *testing.T) {
	cases := []struct {
		f    Format
		path string
		raw  string
		want string
	}{
		{FormatPath, "log/version", `"1.2"`, "log/version:\"1.2\"\n"},
		{FormatPath, "a:b/c", `1`, "a\\:b/c:1\n"},
		{FormatPath, `x\y`, `null`, "x\\\\y:null\n"},
		{FormatPath, "headers/1/value", `[]`, "headers/1/value:[]\n"},
		{FormatPath, "a\nb", `1`, "a\\nb:1\n"},
		{FormatPath, "a\r\tb", `1`, "a\\r\\tb:1\n"},
		{FormatPath, "x\x01", `1`, "x\\u0001:1\n"},
		{FormatPath, " a b", `1`, "\\ a b:1\n"},
		{FormatObject, "log/version", `"1.2"`, "{\"log/version\":\"1.2\"}\n"},
		{FormatObject, "<a>", `{}`, "{\"<a>\":{}}\n"},
	}
	for _, c := range cases {
		got, err := AppendRecord(nil, c.f, c.path, []byte(c.raw))
		if err != nil {
			t.Fatalf("%s %q: unexpected error: %v", c.f, c.path, err)
		}
		if string(got) != c.want {
			t.Fatalf("%s %q: want %q, got %q", c.f, c.path, c.want, got)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	values := []struct {
		raw  string
		want any
	}{
		{`"str:with:colons"`, "str:with:colons"},
		{`12.5e3`, json.Number("12.5e3")},
		{`true`, true},
		{`false`, false},
		{`null`, nil},
		{`[]`, []any{}},
		{`{}`, map[string]any{}},
	}
	paths := []string{"a/b", "a:b/c", `we\ird:/1`, "", " lead", "a\nb", "c\r\n\t\x00\x7f", `x\u`}
	for _, f := range []Format{FormatPath, FormatObject} {
		for _, p := range paths {
			for _, v := range values {
				line, err := AppendRecord(nil, f, p, []byte(v.raw))
				if err != nil {
					t.Fatal(err)
				}
				gotPath, gotVal, err := Parse(string(line[:len(line)-1]), f)
				if err != nil {
					t.Fatalf("%s %q %s: unexpected error: %v", f, p, v.raw, err)
				}
				if gotPath != p {
					t.Fatalf("%s: want path %q, got %q", f, p, gotPath)
				}
				if !reflect.DeepEqual(gotVal, v.want) {
					t.Fatalf("%s %s: want %#v, got %#v", f, v.raw, v.want, gotVal)
				}
			}
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		line string
		f    Format
	}{
		{"no separator here", FormatPath},
		{"a/b:", FormatPath},
		{"a/b:{bad", FormatPath},
		{"a/b:1 2", FormatPath},
		{"a:1}", FormatPath},
		{"a:1]", FormatPath},
		{`a:"x"}`, FormatPath},
		{"a:[1]]", FormatPath},
		{"a:,1", FormatPath},
		{"n:1e", FormatPath},
		{"n:01", FormatPath},
		{`bad\u00:1`, FormatPath},
		{`{"a":1}}`, FormatObject},
		{`{"a":1,"b":2}`, FormatObject},
		{`not json`, FormatObject},
		{`{}`, FormatObject},
	}
	for _, c := range cases {
		_, _, err := Parse(c.line, c.f)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: want ParseError, got %v", c.line, err)
		}
		if pe.Line != c.line {
			t.Fatalf("want line %q kept, got %q", c.line, pe.Line)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPath, "path": FormatPath, "object": FormatObject, "NLJSON": FormatObject} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q): want %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("want error for unknown format")
	}
}

func TestAppendType(t *testing.T) {
	if got := string(AppendType(nil, "log/version", "string")); got != "log/version:string\n" {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestDecodeValue_OutOfRangeNumber(t *testing.T) {
	for _, raw := range []string{"1e400", "-1e400", "123456789012345678901234567890", " 2.5E-400 "} {
		v, err := DecodeValue([]byte(raw))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if want := json.Number(strings.TrimSpace(raw)); v != want {
			t.Fatalf("%q: want %#v, got %#v", raw, want, v)
		}
	}
	path, v, err := Parse("n:1e400", FormatPath)
	if err != nil || path != "n" || v != json.Number("1e400") {
		t.Fatalf("unexpected result %q %#v %v", path, v, err)
	}
}
