package json

import (
	"errors"
	"io"
	"testing"

	eng "github.com/reoring/jsonleaf/internal/engine"
)

func TestNextToken_KeysAndValues(t *testing.T) {
	src := NewBytes([]byte(`{"a":"x","b":[1,true,null],"c":{}} "next"`))
	want := []eng.Token{
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "a"},
		{Kind: eng.KindString, String: "x"},
		{Kind: eng.KindKey, String: "b"},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindNumber, Number: "1"},
		{Kind: eng.KindBool, Bool: true},
		{Kind: eng.KindNull},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindKey, String: "c"},
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindEndObject},
		{Kind: eng.KindEndObject},
		{Kind: eng.KindString, String: "next"},
	}
	for i, w := range want {
		got, err := src.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		got.Offset = 0
		if got != w {
			t.Fatalf("token %d: want %+v, got %+v", i, w, got)
		}
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestNextToken_StringValueAfterKeyIsNotKey(t *testing.T) {
	src := NewBytes([]byte(`{"k":"v","k2":"v2"}`))
	var kinds []eng.Kind
	for {
		tok, err := src.NextToken()
		if err != nil {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []eng.Kind{eng.KindBeginObject, eng.KindKey, eng.KindString, eng.KindKey, eng.KindString, eng.KindEndObject}
	if len(kinds) != len(want) {
		t.Fatalf("want %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("want %v, got %v", want, kinds)
		}
	}
}

func TestNextToken_SyntaxError(t *testing.T) {
	src := NewBytes([]byte(`{"a":}`))
	var err error
	for err == nil {
		_, err = src.NextToken()
	}
	if errors.Is(err, io.EOF) {
		t.Fatalf("want syntax error, got io.EOF")
	}
}
