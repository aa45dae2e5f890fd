package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/reoring/jsonleaf"
	"github.com/reoring/jsonleaf/internal/compress"
)

type inputArg struct {
	File string `arg:"" optional:"" help:"Input file; stdin when omitted or '-'."`
}

type input struct {
	io.ReadCloser
	file io.Closer
}

func (in *input) Close() error {
	err := in.ReadCloser.Close()
	if in.file != nil {
		err = errors.Join(err, in.file.Close())
	}
	return err
}

// open returns the decompressed content of name, or of stdin.
func (a *app) open(name string) (io.ReadCloser, error) {
	var (
		src  io.Reader = a.stdin
		file *os.File
	)
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		src, file = f, f
	}

	rc, codec, err := compress.NewReader(src)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}
	if codec != compress.None {
		a.log.Debug("compressed input", slog.String("codec", string(codec)), slog.String("file", name))
	}
	in := &input{ReadCloser: rc}
	if file != nil {
		in.file = file
	}
	return in, nil
}

func (a *app) leafReader(r io.Reader, docIndex bool) *jsonleaf.LeafReader {
	s := a.settings
	return jsonleaf.NewLeafReader(s.driver.NewTokenSource(r), jsonleaf.ReaderOptions{
		DocumentIndex:  docIndex,
		MaxNesting:     s.maxNesting,
		MaxBytes:       s.maxBytes,
		OnDuplicateKey: s.duplicates,
		OnIssue: func(iss jsonleaf.Issue) {
			a.log.Warn("input issue",
				slog.String("code", iss.Code),
				slog.String("path", iss.Path),
				slog.String("message", iss.Message),
			)
		},
	})
}
