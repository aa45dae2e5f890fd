// Package compress detects compressed input documents by their magic bytes
// and unwraps them transparently.
package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names a detected compression format.
type Codec string

const (
	None Codec = "none"
	Gzip Codec = "gzip"
	Zstd Codec = "zstd"
	LZ4  Codec = "lz4"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect inspects the leading bytes of an input.
func Detect(head []byte) Codec {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return Gzip
	case bytes.HasPrefix(head, magicZstd):
		return Zstd
	case bytes.HasPrefix(head, magicLZ4):
		return LZ4
	}
	return None
}

// NewReader returns a reader over the decompressed content of r together
// with the codec that was detected. Plain input is passed through.
func NewReader(r io.Reader) (io.ReadCloser, Codec, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, None, fmt.Errorf("peek input: %w", err)
	}

	codec := Detect(head)
	switch codec {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, codec, fmt.Errorf("open gzip input: %w", err)
		}
		return zr, codec, nil
	case Zstd:
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, codec, fmt.Errorf("open zstd input: %w", err)
		}
		return dec.IOReadCloser(), codec, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(br)), codec, nil
	}
	return io.NopCloser(br), None, nil
}
