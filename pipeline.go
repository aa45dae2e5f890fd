package jsonleaf

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// LeafTransformer is a leaf-to-leaf stage. Returning nil drops the leaf.
type LeafTransformer interface {
	TransformLeaf(l *Leaf) *Leaf
}

// TransformFunc adapts a function to LeafTransformer.
type TransformFunc func(l *Leaf) *Leaf

func (f TransformFunc) TransformLeaf(l *Leaf) *Leaf { return f(l) }

// LeafEncoder is the terminal stage turning a leaf into bytes. It may write
// any number of fragments for one leaf, including none, and may return
// ErrEndOfOutput to end the run.
type LeafEncoder interface {
	EncodeLeaf(l *Leaf, w io.Writer) error
}

// EncoderFunc adapts a function to LeafEncoder.
type EncoderFunc func(l *Leaf, w io.Writer) error

func (f EncoderFunc) EncodeLeaf(l *Leaf, w io.Writer) error { return f(l, w) }

// Output receives what a Pipeline produces: bytes from the terminal encoder,
// or the leaves themselves when no encoder is set.
type Output interface {
	io.Writer
	WriteLeaf(l *Leaf) error
}

// Pipeline runs every leaf through an ordered chain of transformers and an
// optional terminal encoder. Stages are registered before the first leaf is
// processed. A Pipeline is driven from a single goroutine.
type Pipeline struct {
	transforms []LeafTransformer
	encoder    LeafEncoder
}

// NewPipeline returns an empty pipeline that passes leaves through.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Pipe appends a leaf-to-leaf stage. The stage must implement
// LeafTransformer or be a func(*Leaf) *Leaf.
func (p *Pipeline) Pipe(stage any) error {
	switch t := stage.(type) {
	case LeafTransformer:
		p.transforms = append(p.transforms, t)
		return nil
	case func(*Leaf) *Leaf:
		if t == nil {
			break
		}
		p.transforms = append(p.transforms, TransformFunc(t))
		return nil
	}
	return &ConfigError{
		Op:  "pipe",
		Err: ErrMissingCapability,
		Msg: fmt.Sprintf("expected stage to implement TransformLeaf, not %T", stage),
	}
}

// PipeToBytes sets the terminal encoder. It can only be set once. The stage
// must implement LeafEncoder or be a func(*Leaf, io.Writer) error.
func (p *Pipeline) PipeToBytes(stage any) error {
	if p.encoder != nil {
		return &ConfigError{Op: "pipe to bytes", Err: ErrSinkAlreadySet}
	}
	switch e := stage.(type) {
	case LeafEncoder:
		p.encoder = e
		return nil
	case func(*Leaf, io.Writer) error:
		if e == nil {
			break
		}
		p.encoder = EncoderFunc(e)
		return nil
	}
	return &ConfigError{
		Op:  "pipe to bytes",
		Err: ErrMissingCapability,
		Msg: fmt.Sprintf("expected stage to implement EncodeLeaf, not %T", stage),
	}
}

// MustPipe is Pipe for static wiring; it panics on a configuration error.
func (p *Pipeline) MustPipe(stage any) *Pipeline {
	if err := p.Pipe(stage); err != nil {
		panic(err)
	}
	return p
}

// Process runs one leaf through the chain. The first transformer that drops
// the leaf ends its processing; neither later transformers nor the encoder
// see it.
func (p *Pipeline) Process(l *Leaf, out Output) error {
	if l = p.transform(l); l == nil {
		return nil
	}
	if p.encoder != nil {
		return p.encoder.EncodeLeaf(l, out)
	}
	return out.WriteLeaf(l)
}

// transform applies the transformers in order and returns nil once one of
// them drops the leaf.
func (p *Pipeline) transform(l *Leaf) *Leaf {
	for _, t := range p.transforms {
		if l = t.TransformLeaf(l); l == nil {
			return nil
		}
	}
	return l
}

// Run processes every leaf of r in order. The context is checked between
// leaves only. An encoder returning ErrEndOfOutput ends the run with a nil
// error.
func (p *Pipeline) Run(ctx context.Context, r *LeafReader, out Output) error {
	for l, err := range r.All() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Process(l, out); err != nil {
			if errors.Is(err, ErrEndOfOutput) {
				return nil
			}
			return err
		}
	}
	return nil
}

// WriterOutput adapts an io.Writer to Output. Leaves reaching it without an
// encoder are written as path records.
func WriterOutput(w io.Writer) Output { return &writerOutput{w: w} }

type writerOutput struct {
	w   io.Writer
	enc RecordEncoder
}

func (o *writerOutput) Write(p []byte) (int, error) { return o.w.Write(p) }
func (o *writerOutput) WriteLeaf(l *Leaf) error   { return o.enc.EncodeLeaf(l, o.w) }

// LeafCollector is an Output that keeps a copy of every leaf and every byte
// written to it. Handy for tests.
type LeafCollector struct {
	Leaves []*Leaf
	Bytes  []byte
}

func (c *LeafCollector) Write(p []byte) (int, error) {
	c.Bytes = append(c.Bytes, p...)
	return len(p), nil
}

func (c *LeafCollector) WriteLeaf(l *Leaf) error {
	c.Leaves = append(c.Leaves, l.Clone())
	return nil
}
