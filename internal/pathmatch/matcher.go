package pathmatch

import (
	"regexp"
	"strings"
)

// Config holds the raw filter settings.
type Config struct {
	Include  []string
	Exclude  []string
	MaxDepth int // 0 disables depth limiting
}

// Matcher is a compiled Config.
type Matcher struct {
	include  []*regexp.Regexp
	exclude  []*regexp.Regexp
	maxDepth int
}

// New compiles every include and exclude pattern.
func New(cfg Config) (*Matcher, error) {
	inc, err := compileAll(cfg.Include)
	if err != nil {
		return nil, err
	}
	exc, err := compileAll(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	maxDepth := cfg.MaxDepth
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Matcher{include: inc, exclude: exc, maxDepth: maxDepth}, nil
}

// TypeKey builds the "<path>:<kind>" string patterns are tested against.
// Colons inside the path become dots so the kind separator stays unique.
func TypeKey(path, kind string) string {
	return strings.ReplaceAll(path, ":", ".") + ":" + kind
}

// Match applies the filter to one leaf. Depth is checked first, then
// include, then exclude.
func (m *Matcher) Match(path string, depth int, kind string) bool {
	if m.maxDepth > 0 && depth >= m.maxDepth {
		return false
	}
	if len(m.include) == 0 && len(m.exclude) == 0 {
		return true
	}
	return m.matchKey(TypeKey(path, kind))
}

func (m *Matcher) matchKey(key string) bool {
	if len(m.include) > 0 && !hasMatch(m.include, key) {
		return false
	}
	if len(m.exclude) > 0 && hasMatch(m.exclude, key) {
		return false
	}
	return true
}

// Passthrough reports whether the matcher accepts every leaf.
func (m *Matcher) Passthrough() bool {
	return m.maxDepth == 0 && len(m.include) == 0 && len(m.exclude) == 0
}
