package jsonleaf

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/reoring/jsonleaf/internal/pathtree"
)

// Node is a rebuilt object, array or scalar together with the path prefix
// it was grouped under.
type Node = pathtree.Node

// RebuildOptions configures a Rebuilder.
type RebuildOptions struct {
	// Emit receives every completed node in order. Required.
	Emit func(Node) error
	// OnUnmatched receives records whose path does not match the prefix and
	// malformed records. Both end the open group first. When nil they are
	// dropped.
	OnUnmatched func(Record) error
	// FlushOnCancel emits the open node when Run stops on a cancelled
	// context. By default it is discarded.
	FlushOnCancel bool
	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Rebuilder groups consecutive records sharing a prefix into nodes.
//
// The prefix is a regular expression matched at the start of each record
// path; the matched text identifies the node, the rest of the path (without
// its leading '/') locates the value inside it. Numeral segments create
// arrays, other segments objects.
type Rebuilder struct {
	b       *pathtree.Builder
	opt     RebuildOptions
	log     *slog.Logger
	emitted int
	bad     int
}

// NewRebuilder compiles prefixExpr.
func NewRebuilder(prefixExpr string, opt RebuildOptions) (*Rebuilder, error) {
	if opt.Emit == nil {
		return nil, &ConfigError{Op: "rebuild", Err: ErrNoEmit}
	}
	b, err := pathtree.NewBuilder(prefixExpr)
	if err != nil {
		return nil, &ConfigError{Op: "rebuild", Err: err}
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Rebuilder{b: b, opt: opt, log: log}, nil
}

// Emitted returns how many nodes have been emitted.
func (r *Rebuilder) Emitted() int { return r.emitted }

// Malformed returns how many malformed records were seen.
func (r *Rebuilder) Malformed() int { return r.bad }

// Add consumes one record. A *StructuralError aborts the open node and is
// returned wrapped; the caller decides whether to continue.
func (r *Rebuilder) Add(rec Record) error {
	if rec.Err != nil {
		r.bad++
		r.log.Warn("malformed record", slog.String("error", rec.Err.Error()))
		if err := r.flush(); err != nil {
			return err
		}
		return r.unmatched(rec)
	}

	n, matched, err := r.b.Accept(rec.Path, rec.Value)
	if n != nil {
		if eerr := r.emit(*n); eerr != nil {
			return eerr
		}
	}
	if err != nil {
		return fmt.Errorf("rebuild %q: %w", rec.Path, err)
	}
	if !matched {
		return r.unmatched(rec)
	}
	return nil
}

// Finish emits the open node, if any.
func (r *Rebuilder) Finish() error { return r.flush() }

// Run adds every record of seq and finishes. The context is checked between
// records; on cancellation the open node is discarded unless FlushOnCancel
// is set.
func (r *Rebuilder) Run(ctx context.Context, seq iter.Seq2[Record, error]) error {
	for rec, err := range seq {
		if err != nil {
			r.b.Discard()
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return r.cancel(cerr)
		}
		if err := r.Add(rec); err != nil {
			return err
		}
	}
	return r.Finish()
}

func (r *Rebuilder) cancel(cause error) error {
	if r.opt.FlushOnCancel {
		return errors.Join(cause, r.flush())
	}
	if r.b.Pending() {
		r.log.Debug("discarding open node on cancel")
	}
	r.b.Discard()
	return cause
}

func (r *Rebuilder) flush() error {
	if n := r.b.Finish(); n != nil {
		return r.emit(*n)
	}
	return nil
}

func (r *Rebuilder) emit(n Node) error {
	r.emitted++
	r.log.Debug("node", slog.String("prefix", n.Prefix))
	return r.opt.Emit(n)
}

func (r *Rebuilder) unmatched(rec Record) error {
	if r.opt.OnUnmatched == nil {
		return nil
	}
	return r.opt.OnUnmatched(rec)
}
