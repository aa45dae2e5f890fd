package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/theory/jsonpath"

	"github.com/reoring/jsonleaf"
	"github.com/reoring/jsonleaf/internal/ratelimit"
)

type filterFlags struct {
	Include  []string `short:"i" sep:"none" help:"Keep leaves whose path:type matches the pattern ('*' is a wildcard). Repeatable."`
	Exclude  []string `short:"x" sep:"none" help:"Drop leaves whose path:type matches the pattern. Repeatable."`
	MaxDepth int      `help:"Drop leaves nested this deep or deeper (0 = no limit)."`
}

// config overlays the flags on the filter from the config file.
func (f filterFlags) config(base jsonleaf.FilterConfig) jsonleaf.FilterConfig {
	if len(f.Include) > 0 {
		base.Include = f.Include
	}
	if len(f.Exclude) > 0 {
		base.Exclude = f.Exclude
	}
	if f.MaxDepth > 0 {
		base.MaxDepth = f.MaxDepth
	}
	return base
}

// LeavesCmd represents the leaves command
type LeavesCmd struct {
	Input    inputArg    `embed:""`
	Filter   filterFlags `embed:""`
	Format   string      `help:"Record layout: path or object." enum:"path,object" default:"path"`
	DocIndex bool        `help:"Prefix paths with the index of their top-level value."`
}

func (c *LeavesCmd) Run(a *app) error {
	f, err := jsonleaf.ParseFormat(c.Format)
	if err != nil {
		return &jsonleaf.ConfigError{Op: "leaves", Err: err}
	}
	return a.flatten(c.Input.File, c.Filter, c.DocIndex, &jsonleaf.RecordEncoder{Format: f})
}

// TypesCmd represents the types command
type TypesCmd struct {
	Input    inputArg    `embed:""`
	Filter   filterFlags `embed:""`
	DocIndex bool        `help:"Prefix paths with the index of their top-level value."`
}

func (c *TypesCmd) Run(a *app) error {
	return a.flatten(c.Input.File, c.Filter, c.DocIndex, &jsonleaf.TypeEncoder{})
}

func (a *app) flatten(file string, ff filterFlags, docIndex bool, enc jsonleaf.LeafEncoder) error {
	flt, err := jsonleaf.NewFilter(ff.config(a.settings.filter))
	if err != nil {
		return err
	}
	count := 0
	p := jsonleaf.NewPipeline()
	if err := p.Pipe(flt); err != nil {
		return err
	}
	if err := p.Pipe(func(l *jsonleaf.Leaf) *jsonleaf.Leaf {
		count++
		return l
	}); err != nil {
		return err
	}
	if err := p.PipeToBytes(enc); err != nil {
		return err
	}

	in, err := a.open(file)
	if err != nil {
		return err
	}
	defer in.Close()

	w := bufio.NewWriter(a.stdout)
	r := a.leafReader(in, docIndex)
	runErr := p.Run(a.ctx, r, jsonleaf.WriterOutput(w))
	if err := errors.Join(runErr, w.Flush()); err != nil {
		return err
	}
	a.status("%d leaves from %d documents, %d bytes read", count, r.Documents(), r.Offset())
	return nil
}

type emitFlags struct {
	Prefix string  `required:"" short:"p" help:"Regular expression matched at the start of each path; consecutive matches of the same text form one object."`
	Tag    bool    `help:"Add the object prefix under \"_obj_path\"."`
	Select string  `help:"JSONPath applied to each rebuilt object; every match is written."`
	Rate   float64 `help:"Maximum objects written per second (0 = unlimited)."`
	Stats  bool    `help:"Report stream statistics to stderr when done."`
}

// RebuildCmd represents the rebuild command
type RebuildCmd struct {
	Input       inputArg  `embed:""`
	Emit        emitFlags `embed:""`
	Format      string    `help:"Record layout: path or object." enum:"path,object" default:"path"`
	Passthrough bool      `help:"Copy well-formed records outside the prefix to stdout."`
}

func (c *RebuildCmd) Run(a *app) error {
	f, err := jsonleaf.ParseFormat(c.Format)
	if err != nil {
		return &jsonleaf.ConfigError{Op: "rebuild", Err: err}
	}
	nw, err := a.newNodeWriter(c.Emit)
	if err != nil {
		return err
	}
	opt := jsonleaf.RebuildOptions{Emit: nw.emit, Logger: a.log}
	if c.Passthrough {
		opt.OnUnmatched = nw.passthrough(f)
	}
	rb, err := jsonleaf.NewRebuilder(c.Emit.Prefix, opt)
	if err != nil {
		return err
	}

	in, err := a.open(c.Input.File)
	if err != nil {
		return err
	}
	defer in.Close()

	rr := jsonleaf.NewRecordReader(in, f)
	if err := errors.Join(rb.Run(a.ctx, rr.All()), nw.close()); err != nil {
		return err
	}
	a.status("%d objects from %d lines, %d malformed", rb.Emitted(), rr.Lines(), rb.Malformed())
	return nil
}

// ExtractCmd represents the extract command
type ExtractCmd struct {
	Input    inputArg    `embed:""`
	Filter   filterFlags `embed:""`
	Emit     emitFlags   `embed:""`
	DocIndex bool        `help:"Prefix paths with the index of their top-level value."`
}

func (c *ExtractCmd) Run(a *app) error {
	flt, err := jsonleaf.NewFilter(c.Filter.config(a.settings.filter))
	if err != nil {
		return err
	}
	p := jsonleaf.NewPipeline()
	if err := p.Pipe(flt); err != nil {
		return err
	}
	nw, err := a.newNodeWriter(c.Emit)
	if err != nil {
		return err
	}
	rb, err := jsonleaf.NewRebuilder(c.Emit.Prefix, jsonleaf.RebuildOptions{Emit: nw.emit, Logger: a.log})
	if err != nil {
		return err
	}

	in, err := a.open(c.Input.File)
	if err != nil {
		return err
	}
	defer in.Close()

	r := a.leafReader(in, c.DocIndex)
	if err := errors.Join(rb.Run(a.ctx, jsonleaf.LeafRecords(p.Filtered(r))), nw.close()); err != nil {
		return err
	}
	a.status("%d objects from %d documents", rb.Emitted(), r.Documents())
	return nil
}

// nodeWriter writes rebuilt objects as NLJSON, optionally narrowed by a
// JSONPath selector, throttled and observed by Stats.
type nodeWriter struct {
	a     *app
	w     *bufio.Writer
	enc   *jsonleaf.NodeEncoder
	sel   *jsonpath.Path
	lim   *ratelimit.Limiter
	stats *jsonleaf.Stats
	line  []byte
}

func (a *app) newNodeWriter(f emitFlags) (*nodeWriter, error) {
	nw := &nodeWriter{a: a, w: bufio.NewWriter(a.stdout), lim: ratelimit.New(f.Rate)}
	if f.Select != "" {
		sel, err := jsonpath.Parse(f.Select)
		if err != nil {
			return nil, &jsonleaf.ConfigError{Op: "select", Msg: f.Select, Err: err}
		}
		nw.sel = sel
	}
	var out io.Writer = nw.w
	if f.Stats {
		nw.stats = jsonleaf.NewStats(a.reportStats)
		out = io.MultiWriter(nw.w, nw.stats)
	}
	nw.enc = jsonleaf.NewNodeEncoder(out, f.Tag)
	return nw, nil
}

func (nw *nodeWriter) emit(n jsonleaf.Node) error {
	if nw.sel == nil {
		return nw.write(n)
	}
	for _, v := range nw.sel.Select(n.Value) {
		if err := nw.write(jsonleaf.Node{Prefix: n.Prefix, Value: v}); err != nil {
			return err
		}
	}
	return nil
}

func (nw *nodeWriter) write(n jsonleaf.Node) error {
	if err := nw.lim.Wait(nw.a.ctx); err != nil {
		return err
	}
	if err := nw.enc.Encode(n); err != nil {
		return err
	}
	if nw.stats != nil {
		nw.stats.Observe(n)
	}
	return nil
}

func (nw *nodeWriter) passthrough(f jsonleaf.Format) func(jsonleaf.Record) error {
	return func(rec jsonleaf.Record) error {
		if rec.Err != nil {
			return nil
		}
		line, err := rec.AppendTo(nw.line[:0], f)
		if err != nil {
			return err
		}
		nw.line = line
		_, err = nw.w.Write(line)
		return err
	}
}

func (nw *nodeWriter) close() error {
	err := nw.w.Flush()
	if nw.stats != nil {
		nw.stats.Done()
	}
	return err
}

func (a *app) reportStats(r jsonleaf.StatsReport) {
	b, err := json.MarshalIndent(r.Fields(), "", "  ")
	if err != nil {
		a.log.Error("stats report", "error", err)
		return
	}
	fmt.Fprintf(a.stderr, "stream ended. stats: %s\n", b)
}
