// Package jsonleaf processes JSON documents as a stream of leaves instead of
// a tree in memory.
//
// A leaf is a scalar value or an empty container, located by the full path
// of keys and array indexes leading to it. The package provides:
//
// - LeafReader: flatten a document into leaves, depth first, left to right
// - Filter: drop leaves by wildcard patterns on "<path>:<kind>" and by depth
// - Pipeline: chain leaf transformers and a terminal byte encoder
// - RecordEncoder / RecordReader: one leaf per text line and back
// - Rebuilder: regroup (path, value) pairs sharing a prefix into objects
// - Stats: count and time emitted objects
//
// Design policy:
// - Keep only public APIs in the root package; put implementations under internal/.
// - Tokenizer drivers live under source/; the CLI under cmd/jsonleaf.
// - Everything runs synchronously on the caller's goroutine, one leaf at a time.
//
// Typical usage:
//
//	p := jsonleaf.NewPipeline()
//	p.MustPipe(jsonleaf.MustFilter(jsonleaf.FilterConfig{Include: []string{"*queryString*"}}))
//	rb, _ := jsonleaf.NewRebuilder(`log/entries/\d+/request/queryString/\d+`, jsonleaf.RebuildOptions{
//		Emit: func(n jsonleaf.Node) error { fmt.Println(n.Prefix, n.Value); return nil },
//	})
//	err := rb.Run(ctx, jsonleaf.LeafRecords(p.Filtered(jsonleaf.JSONReader(r))))
package jsonleaf
