package jsonleaf

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonleaf/internal/pathmatch"
	"github.com/reoring/jsonleaf/internal/record"
)

// Kind is the type of a leaf. KindObject and KindArray only occur on empty
// containers, which are leaves because they have no children.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTrue
	KindFalse
	KindNull
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindString: "string",
	KindNumber: "number",
	KindTrue:   "true",
	KindFalse:  "false",
	KindNull:   "null",
	KindObject: "object",
	KindArray:  "array",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsContainer reports whether the leaf marks an empty object or array.
func (k Kind) IsContainer() bool { return k == KindObject || k == KindArray }

// Segment is one step of a Path: an array index or an object key.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an array index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a leaf inside its document.
type Path []Segment

// String joins the segments with '/'.
func (p Path) String() string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].String()
	}
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
		} else {
			b.WriteString(s.Key)
		}
	}
	return b.String()
}

// Leaf is one scalar value or empty container together with its location.
//
// Leaves handed out by a LeafReader share buffers with the reader and are
// only valid until the next read. Use Clone to keep one.
type Leaf struct {
	Path  Path
	Depth int
	Kind  Kind
	Raw   []byte // JSON text of the value; "{}" or "[]" for empty containers
}

// Clone returns a copy that does not alias reader buffers.
func (l *Leaf) Clone() *Leaf {
	c := &Leaf{Depth: l.Depth, Kind: l.Kind}
	c.Path = append(Path(nil), l.Path...)
	c.Raw = append([]byte(nil), l.Raw...)
	return c
}

// Value decodes Raw. Numbers come back as json.Number holding the literal
// text, so no precision or range is lost.
func (l *Leaf) Value() (any, error) {
	switch l.Kind {
	case KindObject:
		return map[string]any{}, nil
	case KindArray:
		return []any{}, nil
	case KindTrue:
		return true, nil
	case KindFalse:
		return false, nil
	case KindNull:
		return nil, nil
	case KindNumber:
		return json.Number(l.Raw), nil
	}
	return record.DecodeValue(l.Raw)
}

// TypeKey returns the "<path>:<kind>" string that filter patterns are
// matched against. Colons in the path are replaced by dots.
func (l *Leaf) TypeKey() string {
	return pathmatch.TypeKey(l.Path.String(), l.Kind.String())
}

func (l *Leaf) String() string {
	return l.Path.String() + ":" + string(l.Raw)
}
