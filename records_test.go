package jsonleaf_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	jsonleaf "github.com/reoring/jsonleaf"
)

func collectRecords(t *testing.T, rr *jsonleaf.RecordReader) []jsonleaf.Record {
	t.Helper()
	var out []jsonleaf.Record
	for rec, err := range rr.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestRecordReader_PartialLinesAcrossReads(t *testing.T) {
	in := "a/0:1\nb:\"x:y\"\nc:{\"d\":[true]}"
	rr := jsonleaf.NewRecordReader(iotest.OneByteReader(strings.NewReader(in)), jsonleaf.FormatPath)
	recs := collectRecords(t, rr)
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	if recs[0].Path != "a/0" || recs[0].Value != json.Number("1") {
		t.Fatalf("unexpected first record %+v", recs[0])
	}
	if recs[1].Path != "b" || recs[1].Value != "x:y" {
		t.Fatalf("unexpected second record %+v", recs[1])
	}
	m, ok := recs[2].Value.(map[string]any)
	if !ok || recs[2].Path != "c" {
		t.Fatalf("unexpected third record %+v", recs[2])
	}
	if arr, ok := m["d"].([]any); !ok || len(arr) != 1 || arr[0] != true {
		t.Fatalf("unexpected nested value %#v", m)
	}
}

func TestRecordReader_BlankAndCRLF(t *testing.T) {
	in := "\r\n  \na:null\r\n\n\nb:2\r\n"
	rr := jsonleaf.NewRecordReader(strings.NewReader(in), jsonleaf.FormatPath)
	recs := collectRecords(t, rr)
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d: %+v", len(recs), recs)
	}
	if recs[0].Path != "a" || recs[0].Value != nil || recs[0].Err != nil {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	if rr.Lines() != 6 {
		t.Fatalf("want 6 lines consumed, got %d", rr.Lines())
	}
}

func TestRecordReader_MalformedLineIsPlaceholder(t *testing.T) {
	in := "a:1\nnot json at all\nb:2\n"
	rr := jsonleaf.NewRecordReader(strings.NewReader(in), jsonleaf.FormatPath)
	recs := collectRecords(t, rr)
	if len(recs) != 3 {
		t.Fatalf("a malformed line must not stop the stream, got %d records", len(recs))
	}
	bad := recs[1]
	if bad.Err == nil {
		t.Fatalf("want an error on the malformed record")
	}
	s, ok := bad.Value.(string)
	if !ok || !strings.HasPrefix(s, jsonleaf.ErrorPrefix) {
		t.Fatalf("want %q placeholder, got %#v", jsonleaf.ErrorPrefix, bad.Value)
	}
	var pe *jsonleaf.RecordParseError
	if !errors.As(bad.Err, &pe) || pe.Line != "not json at all" {
		t.Fatalf("want RecordParseError carrying the line, got %v", bad.Err)
	}
	if recs[2].Path != "b" {
		t.Fatalf("stream must continue after the malformed line, got %+v", recs[2])
	}
}

func TestRecordReader_ObjectFormat(t *testing.T) {
	in := `{"log/version":"1.2"}` + "\n" + `{"a":1,"b":2}` + "\n"
	rr := jsonleaf.NewRecordReader(strings.NewReader(in), jsonleaf.FormatObject)
	recs := collectRecords(t, rr)
	if recs[0].Path != "log/version" || recs[0].Value != "1.2" {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	if recs[1].Err == nil {
		t.Fatalf("objects with more than one member are malformed")
	}
}

func TestParseRecord_EscapedPath(t *testing.T) {
	rec := jsonleaf.ParseRecord(`a\:b/c\\d:"v"`, jsonleaf.FormatPath)
	if rec.Err != nil || rec.Path != `a:b/c\d` || rec.Value != "v" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestParseRecord_ControlAndSpaceInPath(t *testing.T) {
	rec := jsonleaf.ParseRecord(`\ a/b\nc:1e400`, jsonleaf.FormatPath)
	if rec.Err != nil || rec.Path != " a/b\nc" || rec.Value != json.Number("1e400") {
		t.Fatalf("unexpected record %+v", rec)
	}
	for _, line := range []string{"a:1}", "a:1]"} {
		if rec := jsonleaf.ParseRecord(line, jsonleaf.FormatPath); rec.Err == nil {
			t.Fatalf("%q: want an error, got %+v", line, rec)
		}
	}
}

func TestRecordReader_KeepsLeadingSpaceInPath(t *testing.T) {
	in := "\\ a:1  \r\n\n   \n"
	recs := collectRecords(t, jsonleaf.NewRecordReader(strings.NewReader(in), jsonleaf.FormatPath))
	if len(recs) != 1 || recs[0].Path != " a" || recs[0].Value != json.Number("1") {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestLeafRecords_SkipsText(t *testing.T) {
	p := jsonleaf.NewPipeline()
	p.MustPipe(jsonleaf.MustFilter(jsonleaf.FilterConfig{Include: []string{"headers/1"}}))
	var got []jsonleaf.Record
	for rec, err := range jsonleaf.LeafRecords(p.Filtered(jsonleaf.JSONBytes([]byte(sampleHAR)))) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if arr, ok := got[1].Value.([]any); !ok || len(arr) != 0 {
		t.Fatalf("empty array leaf must decode to an empty slice, got %#v", got[1].Value)
	}
}

func TestRecord_AppendTo(t *testing.T) {
	rec := jsonleaf.ParseRecord(`a\:b/0:{"k":[1,"<x>"]}`, jsonleaf.FormatPath)
	b, err := rec.AppendTo(nil, jsonleaf.FormatPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a\\:b/0:{\"k\":[1,\"<x>\"]}\n"; string(b) != want {
		t.Fatalf("want %q, got %q", want, b)
	}
	if _, err := jsonleaf.ParseRecord("bad", jsonleaf.FormatPath).AppendTo(nil, jsonleaf.FormatPath); err == nil {
		t.Fatalf("malformed records must not re-encode")
	}
}
