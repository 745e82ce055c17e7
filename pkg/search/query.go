package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// Query selects elements with a filter expression (see ParseFilter).
type Query struct {
	Filter string
	// Types restricts the result to vertices or edges. Empty means both.
	Types []core.ElementType
	// Limit caps the number of results. 0 means no limit.
	Limit int
}

// Search returns the references of the elements matching q that are
// readable and not hidden for auths, ordered by type and id.
func (m *MemoryIndex) Search(q Query, auths visibility.Authorizations) ([]engine.ElementRef, error) {
	f, err := ParseFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	return m.SearchFilter(f, q.Types, q.Limit, auths)
}

// SearchFilter is Search with an already parsed filter.
func (m *MemoryIndex) SearchFilter(f Filter, types []core.ElementType, limit int, auths visibility.Authorizations) ([]engine.ElementRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 1. Candidates: union over OR blocks of the intersection of each block
	found := make(refSet)
	for _, block := range f.Blocks {
		var set refSet
		for i, c := range block {
			cs := m.candidates(c)
			if i == 0 {
				set = cs
			} else {
				set = intersect(set, cs)
			}
			if len(set) == 0 {
				break
			}
		}
		for ref := range set {
			found[ref] = struct{}{}
		}
	}

	refs := make([]engine.ElementRef, 0, len(found))
	for ref := range found {
		if len(types) == 0 || slices.Contains(types, ref.Type) {
			refs = append(refs, ref)
		}
	}
	slices.SortFunc(refs, func(a, b engine.ElementRef) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), strings.Compare(a.ID, b.ID))
	})

	// 2. Security check on each candidate
	var out []engine.ElementRef
	for _, ref := range refs {
		ok, err := m.matches(m.docs[ref], f, auths)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, ref)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// matches reports whether doc is visible to auths and some block of f holds
// on the cells auths can see.
func (m *MemoryIndex) matches(doc *document, f Filter, auths visibility.Authorizations) (bool, error) {
	readable, err := m.visible(doc.visibility, doc.hidden, auths)
	if err != nil || !readable {
		return false, err
	}

	var fields []field
	for _, fl := range doc.fields() {
		ok, err := m.visible(fl.vis, fl.hidden, auths)
		if err != nil {
			return false, err
		}
		if ok {
			fields = append(fields, fl)
		}
	}

	for _, block := range f.Blocks {
		if slices.ContainsFunc(block, func(c Condition) bool { return !holds(c, fields) }) {
			continue
		}
		return true, nil
	}
	return false, nil
}

// visible reports whether vis is readable and no hide mark applies.
func (m *MemoryIndex) visible(vis visibility.Visibility, hidden []visibility.Visibility, auths visibility.Authorizations) (bool, error) {
	ok, err := m.evaluator.CanRead(vis, auths)
	if err != nil || !ok {
		return false, err
	}
	for _, mark := range hidden {
		hit, err := m.evaluator.CanRead(mark, auths)
		if err != nil {
			return false, err
		}
		if hit {
			return false, nil
		}
	}
	return true, nil
}

func holds(c Condition, fields []field) bool {
	return slices.ContainsFunc(fields, func(f field) bool {
		return f.name == c.Field && satisfies(c, f.value)
	})
}

func satisfies(c Condition, value any) bool {
	if c.Op == OpContains {
		s, ok := value.(string)
		if !ok {
			return false
		}
		words := Analyze(s)
		for _, w := range Analyze(c.Text) {
			if !slices.Contains(words, w) {
				return false
			}
		}
		return true
	}

	if !c.Numeric {
		s, ok := value.(string)
		return ok && s == c.Text
	}
	n, ok := toFloat64(value)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEqual:
		return n == c.Number
	case OpLess:
		return n < c.Number
	case OpLessEqual:
		return n <= c.Number
	case OpGreater:
		return n > c.Number
	case OpGreaterEqual:
		return n >= c.Number
	}
	return false
}
