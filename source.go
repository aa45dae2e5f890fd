package jsonleaf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/jsonleaf/internal/engine"
	gojsonsrc "github.com/reoring/jsonleaf/source/gojson"
	jsonsrc "github.com/reoring/jsonleaf/source/json"
)

// Token is one JSON token from a tokenizer.
type Token = eng.Token

// TokenKind enumerates token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// TokenSource is the tokenizer contract: NextToken returns io.EOF after the
// last top-level value.
type TokenSource = eng.TokenSource

// JSONDriver turns bytes into a TokenSource.
type JSONDriver interface {
	NewTokenSource(r io.Reader) TokenSource
	Name() string
}

type driverFunc struct {
	name string
	fn   func(io.Reader) eng.TokenSource
}

func (d driverFunc) NewTokenSource(r io.Reader) TokenSource { return d.fn(r) }
func (d driverFunc) Name() string                          { return d.name }

// GoJSONDriver is the default driver, backed by goccy/go-json. Its tokenizer
// treats ',' and ':' as optional, so input such as {"a" 1}, [1 2], [1,,2] or
// {"a":1,} flattens without error. Use EncodingJSONDriver to reject it.
func GoJSONDriver() JSONDriver { return driverFunc{name: "go-json", fn: gojsonsrc.NewReader} }

// EncodingJSONDriver is backed by the standard library decoder. It is slower
// but rejects malformed separators that go-json tolerates.
func EncodingJSONDriver() JSONDriver {
	return driverFunc{name: "encoding/json", fn: jsonsrc.NewReader}
}

// DriverByName looks up a built-in driver.
func DriverByName(name string) (JSONDriver, error) {
	switch name {
	case "", "go-json", "gojson":
		return GoJSONDriver(), nil
	case "encoding/json", "json", "std":
		return EncodingJSONDriver(), nil
	}
	return nil, fmt.Errorf("unknown json driver %q", name)
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver = GoJSONDriver()
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(GoJSONDriver()) }

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// ReaderOptions configures a LeafReader. When several are passed the last
// one wins.
type ReaderOptions struct {
	// DocumentIndex prefixes every path with the index of its top-level
	// value in the stream ("0/log/version").
	DocumentIndex bool
	// MaxNesting fails the read once containers nest deeper than this.
	MaxNesting int
	// MaxBytes fails the read once more input than this has been consumed.
	MaxBytes int64
	// OnDuplicateKey selects the reaction to repeated object keys.
	OnDuplicateKey Severity
	// OnIssue receives every limit issue, including non-fatal warnings.
	OnIssue func(Issue)
}

func lastOpt(opts []ReaderOptions) ReaderOptions {
	if len(opts) == 0 {
		return ReaderOptions{}
	}
	return opts[len(opts)-1]
}

// JSONReader reads leaves from r using the current driver.
func JSONReader(r io.Reader, opts ...ReaderOptions) *LeafReader {
	return NewLeafReader(CurrentJSONDriver().NewTokenSource(r), opts...)
}

// JSONBytes reads leaves from b using the current driver.
func JSONBytes(b []byte, opts ...ReaderOptions) *LeafReader {
	return JSONReader(bytes.NewReader(b), opts...)
}

type frame struct {
	kind   Kind // KindObject or KindArray
	n      int  // children seen so far
	key    string
	hasSeg bool // whether entering the container pushed a path segment
}

// LeafReader turns a token stream into leaves, depth first and left to
// right. It is a lazy, single-pass sequence; it is not safe for concurrent
// use.
type LeafReader struct {
	src   TokenSource
	opt   ReaderOptions
	stack []frame
	path  Path
	docs  int
	leaf  Leaf
	raw   []byte
	err   error
}

// NewLeafReader wraps a token source. Limits in opts are enforced by
// wrapping src.
func NewLeafReader(src TokenSource, opts ...ReaderOptions) *LeafReader {
	opt := lastOpt(opts)
	eopt := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.OnDuplicateKey),
		MaxNesting:  opt.MaxNesting,
		MaxBytes:    opt.MaxBytes,
	}
	if eopt.Enabled() {
		if sink := opt.OnIssue; sink != nil {
			eopt.IssueSink = func(si eng.SimpleIssue) {
				sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: src.Location()})
			}
		}
		src = eng.WrapWithEnforcement(src, eopt)
	}
	return &LeafReader{src: src, opt: opt}
}

// Documents returns how many top-level values have been started so far.
func (r *LeafReader) Documents() int { return r.docs }

// Offset returns the tokenizer's input offset, -1 when unknown.
func (r *LeafReader) Offset() int64 { return r.src.Location() }

// Next returns the next leaf or io.EOF. The returned leaf is only valid until
// the following call. Errors are sticky.
func (r *LeafReader) Next() (*Leaf, error) {
	if r.err != nil {
		return nil, r.err
	}
	l, err := r.next()
	if err != nil {
		r.err = err
		return nil, err
	}
	return l, nil
}

func (r *LeafReader) next() (*Leaf, error) {
	for {
		tok, err := r.src.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) && len(r.stack) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			if iss, ok := AsIssue(err); ok {
				iss.Offset = r.src.Location()
				return nil, iss
			}
			return nil, err
		}

		switch tok.Kind {
		case eng.KindKey:
			if n := len(r.stack); n > 0 {
				r.stack[n-1].key = tok.String
			}
		case eng.KindBeginObject:
			r.enter(KindObject)
		case eng.KindBeginArray:
			r.enter(KindArray)
		case eng.KindEndObject, eng.KindEndArray:
			if l := r.leave(); l != nil {
				return l, nil
			}
		default:
			return r.scalar(tok)
		}
	}
}

// segment returns the path segment of the value starting now and advances
// the enclosing container.
func (r *LeafReader) segment() (Segment, bool) {
	n := len(r.stack)
	if n == 0 {
		doc := r.docs
		r.docs++
		return Index(doc), r.opt.DocumentIndex
	}
	top := &r.stack[n-1]
	idx := top.n
	top.n++
	if top.kind == KindArray {
		return Index(idx), true
	}
	return Key(top.key), true
}

func (r *LeafReader) enter(kind Kind) {
	seg, ok := r.segment()
	if ok {
		r.path = append(r.path, seg)
	}
	r.stack = append(r.stack, frame{kind: kind, hasSeg: ok})
}

func (r *LeafReader) leave() *Leaf {
	n := len(r.stack)
	if n == 0 {
		return nil
	}
	f := r.stack[n-1]
	r.stack = r.stack[:n-1]

	var l *Leaf
	if f.n == 0 {
		r.leaf = Leaf{Path: r.path, Depth: len(r.stack), Kind: f.kind}
		if f.kind == KindObject {
			r.leaf.Raw = append(r.raw[:0], '{', '}')
		} else {
			r.leaf.Raw = append(r.raw[:0], '[', ']')
		}
		r.raw = r.leaf.Raw
		l = &r.leaf
	}
	if f.hasSeg {
		r.path = r.path[:len(r.path)-1]
	}
	return l
}

func (r *LeafReader) scalar(tok Token) (*Leaf, error) {
	path := r.path
	if seg, ok := r.segment(); ok {
		path = append(path, seg)
	}
	r.leaf = Leaf{Path: path, Depth: len(r.stack)}
	raw := r.raw[:0]
	switch tok.Kind {
	case eng.KindString:
		b, err := json.MarshalNoEscape(tok.String)
		if err != nil {
			return nil, err
		}
		r.leaf.Kind = KindString
		raw = append(raw, b...)
	case eng.KindNumber:
		r.leaf.Kind = KindNumber
		raw = append(raw, tok.Number...)
	case eng.KindBool:
		if tok.Bool {
			r.leaf.Kind = KindTrue
			raw = append(raw, "true"...)
		} else {
			r.leaf.Kind = KindFalse
			raw = append(raw, "false"...)
		}
	default:
		r.leaf.Kind = KindNull
		raw = append(raw, "null"...)
	}
	r.raw = raw
	r.leaf.Raw = raw
	return &r.leaf, nil
}

// All returns the remaining leaves as a lazy sequence. Iteration stops after
// the first error.
func (r *LeafReader) All() iter.Seq2[*Leaf, error] {
	return func(yield func(*Leaf, error) bool) {
		for {
			l, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}
