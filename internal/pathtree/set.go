// Package pathtree rebuilds nested values from slash-separated leaf paths.
package pathtree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex bounds array indexes taken from paths so a hostile record cannot
// force a huge allocation.
const MaxIndex = 1 << 20

// StructuralError reports a path segment whose container kind conflicts with
// a value that already exists at that location.
type StructuralError struct {
	Key      string // offending segment
	Path     string // full path being set
	Expected string // "array" or "object"
	Got      string // concrete kind found
	Value    any    // the conflicting scalar, nil for containers
}

func (e *StructuralError) Error() string {
	if e.Got == "array" || e.Got == "object" {
		return fmt.Sprintf("expected parent of %s in %q to be type %s, but got %s", e.Key, e.Path, e.Expected, e.Got)
	}
	return fmt.Sprintf("expected parent of %s in %q to be type %s, but got %s (%v)", e.Key, e.Path, e.Expected, e.Got, e.Value)
}

// IndexOf reports whether seg is a numeral and its value. Numerals always
// address array slots.
func IndexOf(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return MaxIndex + 1, true
	}
	return n, true
}

// Set stores val at path inside root and returns the (possibly new) root.
// Missing containers are created: a numeral segment creates an array, any
// other segment an object. An empty path replaces root with val.
func Set(root any, path string, val any) (any, error) {
	if path == "" {
		return val, nil
	}
	segs := strings.Split(path, "/")
	return setIn(root, segs, path, val)
}

func setIn(parent any, segs []string, path string, val any) (any, error) {
	key := segs[0]
	idx, isIndex := IndexOf(key)
	if parent == nil {
		if isIndex {
			parent = []any{}
		} else {
			parent = map[string]any{}
		}
	} else if err := checkParent(parent, key, isIndex, path); err != nil {
		return nil, err
	}

	if isIndex && idx > MaxIndex {
		return nil, fmt.Errorf("index %s in %q exceeds %d", key, path, MaxIndex)
	}

	var child any
	if len(segs) == 1 {
		child = val
	} else {
		var err error
		child, err = setIn(childOf(parent, key, idx, isIndex), segs[1:], path, val)
		if err != nil {
			return nil, err
		}
	}

	if !isIndex {
		m := parent.(map[string]any)
		m[key] = child
		return m, nil
	}
	arr := parent.([]any)
	for len(arr) <= idx {
		arr = append(arr, nil)
	}
	arr[idx] = child
	return arr, nil
}

func childOf(parent any, key string, idx int, isIndex bool) any {
	if isIndex {
		arr := parent.([]any)
		if idx < len(arr) {
			return arr[idx]
		}
		return nil
	}
	return parent.(map[string]any)[key]
}

func checkParent(parent any, key string, isIndex bool, path string) error {
	expected := "object"
	if isIndex {
		expected = "array"
	}
	got := KindName(parent)
	if got == expected {
		return nil
	}
	se := &StructuralError{Key: key, Path: path, Expected: expected, Got: got}
	if got != "array" && got != "object" {
		se.Value = parent
	}
	return se
}

// KindName names the JSON kind of a decoded value.
func KindName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64, float32, int, int64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
