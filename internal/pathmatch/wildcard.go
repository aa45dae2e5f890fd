// Package pathmatch decides whether a leaf survives an include/exclude/depth
// filter. Patterns are matched against the path-type key of a leaf.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileWildcard turns a wildcard pattern into a regular expression. '*'
// matches any run of characters; everything else is literal. The expression
// is not anchored, so it matches anywhere inside the key.
func CompileWildcard(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile(strings.Join(parts, ".*"))
	if err != nil {
		return nil, fmt.Errorf("compile wildcard %q: %w", pattern, err)
	}
	return re, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := CompileWildcard(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func hasMatch(exprs []*regexp.Regexp, s string) bool {
	for _, re := range exprs {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
