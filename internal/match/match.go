// Package match implements the textual selection policy for instrumentation
// points.
//
// A pattern is a Go regular expression tested against the symbolic names of
// IR values with substring semantics (regexp search, not full-string
// anchoring). This is what lets an operator select "every counter variable"
// with `counter` instead of enumerating exact names; callers that do need
// exact-name matching anchor the pattern themselves (`^counter$`).
package match

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/llir/llvm/ir/value"
)

// Matcher is a compiled selection pattern.
type Matcher struct {
	re *regexp.Regexp
}

// Compile compiles pattern into a Matcher.
//
// An invalid pattern fails here, before any traversal takes place, so a
// scanner that receives a malformed expression leaves its output untouched.
func Compile(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pattern %q", pattern)
	}
	return &Matcher{re: re}, nil
}

// MatchName reports whether name is non-empty and matched by the pattern.
//
// The empty pattern matches every non-empty name (the empty regular
// expression matches any string). The empty name never matches: an unnamed
// value has nothing to test the pattern against.
func (m *Matcher) MatchName(name string) bool {
	return name != "" && m.re.MatchString(name)
}

// ValueName returns the symbolic name of v and whether v carries one.
// A value is considered unnamed both when it cannot hold a name at all and
// when its name slot is empty.
func ValueName(v value.Value) (string, bool) {
	named, ok := v.(value.Named)
	if !ok || named.Name() == "" {
		return "", false
	}
	return named.Name(), true
}
