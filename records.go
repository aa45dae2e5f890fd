package jsonleaf

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"unicode"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonleaf/internal/record"
)

// Record is one (path, value) pair read back from a serialized leaf stream.
// A malformed line yields a Record whose Value is a "JSON ERROR: ..."
// diagnostic string and whose Err holds the *RecordParseError.
type Record struct {
	Path  string
	Value any
	Err   error
}

// ErrorPrefix starts the diagnostic value of a malformed record.
const ErrorPrefix = "JSON ERROR: "

// ParseRecord decodes one line. It never fails: parse problems are returned
// inside the Record.
func ParseRecord(line string, f Format) Record {
	path, v, err := record.Parse(line, f)
	if err != nil {
		return Record{Value: ErrorPrefix + err.Error(), Err: err}
	}
	return Record{Path: path, Value: v}
}

// AppendTo re-encodes the record as one line of format f. Malformed records
// cannot be re-encoded.
func (r Record) AppendTo(dst []byte, f Format) ([]byte, error) {
	if r.Err != nil {
		return dst, r.Err
	}
	raw, err := json.MarshalNoEscape(r.Value)
	if err != nil {
		return dst, err
	}
	return record.AppendRecord(dst, f, r.Path, raw)
}

// DefaultMaxLineSize bounds a single record line.
const DefaultMaxLineSize = 64 << 20

// RecordReader splits a byte stream into lines and parses each non-blank
// line as a Record. Partial lines are carried across reads; a final line
// without a trailing newline is still parsed.
type RecordReader struct {
	sc     *bufio.Scanner
	format Format
	lines  int
}

// NewRecordReader reads records of the given format from r.
func NewRecordReader(r io.Reader, f Format) *RecordReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), DefaultMaxLineSize)
	return &RecordReader{sc: sc, format: f}
}

// Lines returns how many lines have been consumed, blank ones included.
func (rr *RecordReader) Lines() int { return rr.lines }

// Next returns the next record or io.EOF. Only I/O errors are returned;
// malformed lines come back as placeholder records.
func (rr *RecordReader) Next() (Record, error) {
	for rr.sc.Scan() {
		rr.lines++
		line := rr.sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		// Only the end is trimmed: leading spaces may belong to the path.
		line = bytes.TrimRightFunc(line, unicode.IsSpace)
		return ParseRecord(string(line), rr.format), nil
	}
	if err := rr.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// All returns the remaining records as a lazy sequence.
func (rr *RecordReader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := rr.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// LeafRecords converts leaves straight into records, skipping the text
// round trip. Leaves dropped by the pipeline never reach it, so pass the
// output of a filtering sequence.
func LeafRecords(leaves iter.Seq2[*Leaf, error]) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for l, err := range leaves {
			if err != nil {
				yield(Record{}, err)
				return
			}
			v, verr := l.Value()
			rec := Record{Path: l.Path.String(), Value: v}
			if verr != nil {
				rec = Record{Value: ErrorPrefix + verr.Error(), Err: verr}
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Filtered runs the leaves of r through p's transformers and yields the
// survivors. The terminal encoder, if any, is ignored.
func (p *Pipeline) Filtered(r *LeafReader) iter.Seq2[*Leaf, error] {
	return func(yield func(*Leaf, error) bool) {
		for l, err := range r.All() {
			if err != nil {
				yield(nil, err)
				return
			}
			if l = p.transform(l); l == nil {
				continue
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}
