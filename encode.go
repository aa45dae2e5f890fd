package jsonleaf

import (
	"fmt"
	"io"
	"maps"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonleaf/internal/record"
)

// Format selects the layout of a serialized leaf record.
type Format = record.Format

const (
	// FormatPath writes `<path>:<json value>`.
	FormatPath = record.FormatPath
	// FormatObject writes `{"<path>":<json value>}`.
	FormatObject = record.FormatObject
)

// ParseFormat maps "path" or "object" to a Format.
func ParseFormat(s string) (Format, error) { return record.ParseFormat(s) }

// RecordEncoder is a LeafEncoder writing one record line per leaf. Empty
// containers are written as [] and {}.
type RecordEncoder struct {
	Format Format
	buf    []byte
}

var _ LeafEncoder = (*RecordEncoder)(nil)

func (e *RecordEncoder) EncodeLeaf(l *Leaf, w io.Writer) error {
	buf, err := record.AppendRecord(e.buf[:0], e.Format, l.Path.String(), l.Raw)
	if err != nil {
		return err
	}
	e.buf = buf
	_, err = w.Write(buf)
	return err
}

// TypeEncoder is a LeafEncoder writing `<path>:<kind>` lines, useful to
// survey the shape of a document.
type TypeEncoder struct {
	buf []byte
}

var _ LeafEncoder = (*TypeEncoder)(nil)

func (e *TypeEncoder) EncodeLeaf(l *Leaf, w io.Writer) error {
	e.buf = record.AppendType(e.buf[:0], l.Path.String(), l.Kind.String())
	_, err := w.Write(e.buf)
	return err
}

// PrefixKey is the member added to rebuilt objects by a tagging NodeEncoder.
const PrefixKey = "_obj_path"

// NodeEncoder writes rebuilt nodes as newline-delimited JSON.
type NodeEncoder struct {
	w io.Writer
	// Tag adds the node prefix under PrefixKey to object values.
	Tag bool
}

// NewNodeEncoder returns an encoder writing to w.
func NewNodeEncoder(w io.Writer, tag bool) *NodeEncoder {
	return &NodeEncoder{w: w, Tag: tag}
}

// Encode writes one node.
func (e *NodeEncoder) Encode(n Node) error {
	b, err := MarshalNode(n, e.Tag)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = e.w.Write(b)
	return err
}

// MarshalNode encodes the node value. With tag set, object values carry the
// prefix under PrefixKey; other values are encoded unchanged.
func MarshalNode(n Node, tag bool) ([]byte, error) {
	v := n.Value
	if m, ok := v.(map[string]any); ok && tag {
		tagged := make(map[string]any, len(m)+1)
		maps.Copy(tagged, m)
		tagged[PrefixKey] = n.Prefix
		v = tagged
	}
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return nil, fmt.Errorf("encode node %q: %w", n.Prefix, err)
	}
	return b, nil
}
