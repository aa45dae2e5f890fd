package engine

import "strconv"

// Enforcement wrapper for TokenSource applying duplicate key handling,
// nesting limits and input size limits while tokens stream through.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Issue codes produced by the enforcement wrapper.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxNesting   = "max_nesting"
	CodeTruncated    = "truncated"
)

// SimpleIssue is a minimal issue representation used by internal helpers.
// Path uses the leaf path syntax: segments joined by '/', "" for the root.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxNesting is the deepest container nesting accepted; 0 disables the check.
	MaxNesting int
	// MaxBytes aborts once the source reports an offset past it; 0 disables the check.
	MaxBytes int64
	// IssueSink receives every issue, fatal or not. May be nil.
	IssueSink func(SimpleIssue)
	// FailFast turns duplicate key warnings into errors.
	FailFast bool
}

// Enabled reports whether any check is active.
func (o EnforceOptions) Enabled() bool {
	return o.OnDuplicate != DupIgnore || o.MaxNesting > 0 || o.MaxBytes > 0
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Message + " at " + e.Path
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy, the nesting limit and the byte limit.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) report(si SimpleIssue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		kind := kindArray
		if tok.Kind == KindBeginObject {
			kind = kindObject
		}
		e.stack = append(e.stack, frame{kind: kind, keys: map[string]struct{}{}, path: path})
		if e.opt.MaxNesting > 0 && len(e.stack) > e.opt.MaxNesting {
			si := SimpleIssue{Code: CodeMaxNesting, Path: path, Message: "max nesting exceeded"}
			e.report(si)
			return Token{}, IssueError{si}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if e.opt.OnDuplicate != DupIgnore {
				if _, ok := top.keys[tok.String]; ok {
					si := SimpleIssue{
						Code:    CodeDuplicateKey,
						Path:    joinPath(top.path, tok.String),
						Message: "key '" + tok.String + "' duplicated",
					}
					e.report(si)
					if e.opt.OnDuplicate == DupError || e.opt.FailFast {
						return Token{}, IssueError{si}
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey = tok.String
		}
	default:
		e.valuePath()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			si := SimpleIssue{Code: CodeTruncated, Path: "", Message: "max bytes exceeded"}
			e.report(si)
			return Token{}, IssueError{si}
		}
	}

	return tok, nil
}

// valuePath returns the path of the value that starts at the current token
// and advances the enclosing array index.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		p := joinPath(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinPath(top.path, top.pendingKey)
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "/" + seg
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
