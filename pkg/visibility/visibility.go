// Package visibility evaluates cell-level visibility expressions against the
// authorizations presented by a caller.
//
// An expression is a boolean combination of labels joined with '&' (and) and
// '|' (or). Parentheses group sub-expressions and labels containing reserved
// characters can be double-quoted:
//
//	public
//	admin&(ws1|ws2)
//	"team a"|audit
//
// Mixing '&' and '|' at the same nesting level without parentheses is
// rejected. The empty expression is readable by everyone.
package visibility

import (
	"fmt"
	"slices"
	"strings"
)

// Visibility is an unparsed visibility expression. It is stored as written
// and only parsed when it is evaluated.
type Visibility string

// Empty is the visibility that every caller can read.
const Empty Visibility = ""

// String returns the raw expression.
func (v Visibility) String() string {
	return string(v)
}

// IsEmpty reports whether the expression has no labels at all.
func (v Visibility) IsEmpty() bool {
	return strings.TrimSpace(string(v)) == ""
}

// And combines expressions so that all of them must be satisfied.
// Empty expressions are dropped.
func And(vs ...Visibility) Visibility {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		if v.IsEmpty() {
			continue
		}
		parts = append(parts, "("+string(v)+")")
	}
	switch len(parts) {
	case 0:
		return Empty
	case 1:
		return Visibility(strings.TrimSuffix(strings.TrimPrefix(parts[0], "("), ")"))
	}
	return Visibility(strings.Join(parts, "&"))
}

// Authorizations is the immutable set of labels a caller presents.
// Labels are de-duplicated and kept sorted.
type Authorizations struct {
	labels []string
}

// NewAuthorizations builds an authorization set. Blank labels are ignored.
func NewAuthorizations(labels ...string) Authorizations {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return Authorizations{labels: slices.Compact(out)}
}

// Labels returns a copy of the labels in sorted order.
func (a Authorizations) Labels() []string {
	return slices.Clone(a.labels)
}

// Len returns the number of distinct labels.
func (a Authorizations) Len() int {
	return len(a.labels)
}

// Contains reports whether label is held.
func (a Authorizations) Contains(label string) bool {
	_, found := slices.BinarySearch(a.labels, label)
	return found
}

// Equal reports whether both sets hold the same labels.
func (a Authorizations) Equal(b Authorizations) bool {
	return slices.Equal(a.labels, b.labels)
}

// Union returns the labels held by either set.
func (a Authorizations) Union(b Authorizations) Authorizations {
	return NewAuthorizations(append(a.Labels(), b.labels...)...)
}

func (a Authorizations) String() string {
	return fmt.Sprintf("[%s]", strings.Join(a.labels, ","))
}
