package jsonleaf

import (
	"github.com/reoring/jsonleaf/internal/pathmatch"
)

// FilterConfig selects leaves by wildcard patterns on "<path>:<kind>" and by
// depth.
//
// A MaxDepth greater than zero drops every leaf with Depth >= MaxDepth before
// patterns are consulted. Then, if Include is not empty, a leaf must match
// one of its patterns; finally a leaf matching any Exclude pattern is dropped.
//
// In a pattern '*' matches any run of characters and every other character
// is literal. Patterns are searched anywhere in the key, not anchored:
// "foo/*" also matches "xfoo/bar:string".
type FilterConfig struct {
	Include  []string `yaml:"include"`
	Exclude  []string `yaml:"exclude"`
	MaxDepth int      `yaml:"max_depth"`
}

// Filter is a LeafTransformer that drops leaves rejected by its config.
type Filter struct {
	m *pathmatch.Matcher
}

var _ LeafTransformer = (*Filter)(nil)

// NewFilter compiles cfg.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	m, err := pathmatch.New(pathmatch.Config{Include: cfg.Include, Exclude: cfg.Exclude, MaxDepth: cfg.MaxDepth})
	if err != nil {
		return nil, &ConfigError{Op: "filter", Err: err}
	}
	return &Filter{m: m}, nil
}

// MustFilter is like NewFilter but panics on error.
func MustFilter(cfg FilterConfig) *Filter {
	f, err := NewFilter(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Matches reports whether a leaf at path with the given depth and kind
// survives the filter.
func (f *Filter) Matches(path Path, depth int, kind Kind) bool {
	if f.m.Passthrough() {
		return true
	}
	return f.m.Match(path.String(), depth, kind.String())
}

// TransformLeaf returns l when it survives the filter and nil otherwise.
func (f *Filter) TransformLeaf(l *Leaf) *Leaf {
	if f.Matches(l.Path, l.Depth, l.Kind) {
		return l
	}
	return nil
}
