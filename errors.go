package jsonleaf

import (
	"errors"
	"fmt"

	eng "github.com/reoring/jsonleaf/internal/engine"
	"github.com/reoring/jsonleaf/internal/pathtree"
	"github.com/reoring/jsonleaf/internal/record"
)

// Issue codes reported by a LeafReader.
const (
	CodeDuplicateKey = eng.CodeDuplicateKey
	CodeMaxNesting   = eng.CodeMaxNesting
	CodeTruncated    = eng.CodeTruncated
)

var (
	// ErrSinkAlreadySet is returned when a second terminal sink is registered.
	ErrSinkAlreadySet = errors.New("sink already set")
	// ErrMissingCapability is returned when a stage lacks the required method.
	ErrMissingCapability = errors.New("missing capability")
	// ErrEndOfOutput may be returned by a LeafEncoder to end a run early
	// without failing it.
	ErrEndOfOutput = errors.New("end of output")
	// ErrNoEmit is returned when a Rebuilder is created without an Emit func.
	ErrNoEmit = errors.New("rebuild: Emit is required")
)

// ConfigError reports invalid pipeline wiring. It only happens at setup time.
type ConfigError struct {
	Op  string
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StructuralError reports a path whose container kind conflicts with a value
// already rebuilt at that location.
type StructuralError = pathtree.StructuralError

// RecordParseError reports a record line that could not be parsed. It is
// recovered into a placeholder Record rather than returned.
type RecordParseError = record.ParseError

// Issue is a limit violation observed while reading tokens.
type Issue struct {
	Path    string
	Code    string
	Message string
	Offset  int64 // byte offset in the input, -1 when unknown
}

func (i Issue) Error() string {
	if i.Path == "" {
		return i.Code + ": " + i.Message
	}
	return i.Code + " at " + i.Path + ": " + i.Message
}

// AsIssue extracts the Issue behind a reader error.
func AsIssue(err error) (Issue, bool) {
	if err == nil {
		return Issue{}, false
	}
	var iss Issue
	if errors.As(err, &iss) {
		return iss, true
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issue{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: -1}, true
	}
	return Issue{}, false
}

// Severity selects how a reader reacts to a duplicate key.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
