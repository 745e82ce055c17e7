package visibility

import (
	"slices"
	"sync"
)

// defaultCacheSize bounds the number of parsed expressions an Evaluator keeps.
const defaultCacheSize = 4096

type cacheEntry struct {
	root *node
	err  error
}

// Evaluator parses and evaluates visibility expressions. Parsed trees,
// including parse failures, are cached. Safe for concurrent use.
type Evaluator struct {
	mu       sync.RWMutex
	cache    map[Visibility]cacheEntry
	maxItems int
}

// NewEvaluator creates an evaluator with the default cache size.
func NewEvaluator() *Evaluator {
	return NewEvaluatorSize(defaultCacheSize)
}

// NewEvaluatorSize creates an evaluator caching at most maxItems expressions.
// A non-positive size disables caching.
func NewEvaluatorSize(maxItems int) *Evaluator {
	return &Evaluator{
		cache:    make(map[Visibility]cacheEntry),
		maxItems: maxItems,
	}
}

func (e *Evaluator) lookup(v Visibility) (*node, error) {
	e.mu.RLock()
	entry, ok := e.cache[v]
	e.mu.RUnlock()
	if ok {
		return entry.root, entry.err
	}

	root, err := parse(string(v))
	if e.maxItems <= 0 {
		return root, err
	}

	e.mu.Lock()
	if len(e.cache) >= e.maxItems {
		// Cheap eviction: start over rather than track recency.
		clear(e.cache)
	}
	e.cache[v] = cacheEntry{root: root, err: err}
	e.mu.Unlock()
	return root, err
}

// CanRead reports whether auths satisfy the expression v.
// A malformed expression returns a *ParseError.
func (e *Evaluator) CanRead(v Visibility, auths Authorizations) (bool, error) {
	root, err := e.lookup(v)
	if err != nil {
		return false, err
	}
	if root == nil {
		return true, nil
	}
	return root.eval(auths), nil
}

// Validate parses v without evaluating it.
func (e *Evaluator) Validate(v Visibility) error {
	_, err := e.lookup(v)
	return err
}

// Labels returns the distinct labels referenced by v, sorted.
func (e *Evaluator) Labels(v Visibility) ([]string, error) {
	root, err := e.lookup(v)
	if err != nil || root == nil {
		return nil, err
	}
	labels := root.collectLabels(nil)
	slices.Sort(labels)
	return slices.Compact(labels), nil
}

var defaultEvaluator = NewEvaluator()

// CanRead evaluates v with a package-level evaluator.
func CanRead(v Visibility, auths Authorizations) (bool, error) {
	return defaultEvaluator.CanRead(v, auths)
}
