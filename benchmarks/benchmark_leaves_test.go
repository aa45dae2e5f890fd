package jsonleaf_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"testing"

	jsonleaf "github.com/reoring/jsonleaf"
)

// generateHugeJSONArray returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		if i%2 == 0 {
			buf.WriteString("\"active\":true,")
		} else {
			buf.WriteString("\"active\":false,")
		}
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(",\"k")
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString("\":\"v")
			buf.WriteString(strconv.Itoa(i))
			buf.WriteString("_")
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString("\"")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

var drivers = []jsonleaf.JSONDriver{jsonleaf.GoJSONDriver(), jsonleaf.EncodingJSONDriver()}

func Benchmark_Leaves_HugeArray(b *testing.B) {
	data := generateHugeJSONArray(10_000, 8)
	for _, d := range drivers {
		b.Run(d.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				r := jsonleaf.NewLeafReader(d.NewTokenSource(bytes.NewReader(data)))
				for _, err := range r.All() {
					if err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

func Benchmark_Leaves_FilterAndEncode(b *testing.B) {
	ctx := context.Background()
	data := generateHugeJSONArray(10_000, 8)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		p := jsonleaf.NewPipeline()
		p.MustPipe(jsonleaf.MustFilter(jsonleaf.FilterConfig{Include: []string{"*/meta/*", "*/id:*"}}))
		if err := p.PipeToBytes(&jsonleaf.RecordEncoder{}); err != nil {
			b.Fatal(err)
		}
		if err := p.Run(ctx, jsonleaf.JSONBytes(data), jsonleaf.WriterOutput(io.Discard)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Rebuild_HugeArray(b *testing.B) {
	ctx := context.Background()
	data := generateHugeJSONArray(10_000, 8)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		n := 0
		rb, err := jsonleaf.NewRebuilder(`\d+`, jsonleaf.RebuildOptions{Emit: func(jsonleaf.Node) error {
			n++
			return nil
		}})
		if err != nil {
			b.Fatal(err)
		}
		if err := rb.Run(ctx, jsonleaf.LeafRecords(jsonleaf.JSONBytes(data).All())); err != nil {
			b.Fatal(err)
		}
		if n != 10_000 {
			b.Fatalf("want 10000 objects, got %d", n)
		}
	}
}
