package pathtree

import (
	"fmt"
	"regexp"
)

// Node is one rebuilt value together with the prefix it was grouped under.
type Node struct {
	Prefix string
	Value  any
}

// Builder groups consecutive (path, value) pairs that share a prefix into a
// single value. Only one node is open at a time; it is emitted when the
// prefix changes, when a path does not match, or on Finish.
type Builder struct {
	prefix  *regexp.Regexp
	open    bool
	current any
	curPath string
}

// NewBuilder compiles expr anchored at the start of the path.
func NewBuilder(expr string) (*Builder, error) {
	re, err := regexp.Compile("^(" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("compile prefix %q: %w", expr, err)
	}
	return &Builder{prefix: re}, nil
}

// Accept consumes one pair. A pair whose path does not match the prefix ends
// the open group: the group is returned and matched is false, the pair is not
// stored. A structural error discards the open group; a node emitted by the
// same call is still returned alongside the error.
func (b *Builder) Accept(path string, value any) (emitted *Node, matched bool, err error) {
	loc := b.prefix.FindStringSubmatchIndex(path)
	if loc == nil {
		return b.flush(), false, nil
	}
	objPath := path[loc[2]:loc[3]]
	rem := path[loc[3]:]
	if len(rem) > 0 && rem[0] == '/' {
		rem = rem[1:]
	}

	if b.open && objPath != b.curPath {
		emitted = b.flush()
	}
	if !b.open {
		b.open = true
		b.curPath = objPath
		b.current = nil
	}

	v, err := Set(b.current, rem, value)
	if err != nil {
		b.Discard()
		return emitted, true, err
	}
	b.current = v
	return emitted, true, nil
}

// Finish emits the open node, if any, and resets the builder.
func (b *Builder) Finish() *Node {
	return b.flush()
}

// Discard drops the open node without emitting it.
func (b *Builder) Discard() {
	b.open = false
	b.current = nil
	b.curPath = ""
}

// Pending reports whether a node is under construction.
func (b *Builder) Pending() bool { return b.open }

func (b *Builder) flush() *Node {
	if !b.open {
		return nil
	}
	n := &Node{Prefix: b.curPath, Value: b.current}
	b.Discard()
	return n
}
