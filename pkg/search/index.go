// Package search provides MemoryIndex, an in-memory engine.SearchIndex that
// answers property filters over the elements of a graph.
//
// Every property cell and extended data column is indexed whatever its
// visibility: strings in an inverted index, numbers in a B-Tree per field
// and words of string values in a term index. Query results are then checked
// against the caller's authorizations and hide marks, so an element is only
// returned when a cell the caller may read satisfies the filter.
package search

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/tidwall/btree"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

type refSet map[engine.ElementRef]struct{}

// numericItem is one entry of a field B-Tree.
type numericItem struct {
	Value float64
	Ref   engine.ElementRef
}

func numericItemLess(a, b numericItem) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	if a.Ref.Type != b.Ref.Type {
		return a.Ref.Type < b.Ref.Type
	}
	return a.Ref.ID < b.Ref.ID
}

// field is one searchable cell of a document.
type field struct {
	name   string
	value  any
	vis    visibility.Visibility
	hidden []visibility.Visibility
}

// document is the indexed copy of one element.
type document struct {
	ref        engine.ElementRef
	visibility visibility.Visibility
	hidden     []visibility.Visibility
	properties []core.Property
	extended   map[core.ExtendedDataRowID]core.ExtendedDataRow
}

// fields returns the properties followed by the extended data columns,
// ordered by row id.
func (d *document) fields() []field {
	out := make([]field, 0, len(d.properties))
	for _, p := range d.properties {
		out = append(out, field{name: p.Name, value: p.Value, vis: p.Visibility, hidden: p.HiddenVisibilities})
	}
	rowIDs := slices.SortedFunc(maps.Keys(d.extended), func(a, b core.ExtendedDataRowID) int {
		return cmp.Or(cmp.Compare(a.TableName, b.TableName), cmp.Compare(a.RowID, b.RowID))
	})
	for _, id := range rowIDs {
		for _, c := range d.extended[id].Columns {
			out = append(out, field{name: c.Column, value: c.Value, vis: c.Visibility})
		}
	}
	return out
}

// MemoryIndex is a concurrency-safe, in-memory search index.
type MemoryIndex struct {
	mu        sync.RWMutex
	evaluator *visibility.Evaluator
	logger    *slog.Logger

	docs map[engine.ElementRef]*document

	// Field name -> string value -> elements
	strings map[string]map[string]refSet
	// Field name -> B-Tree of numeric values
	numbers map[string]*btree.BTreeG[numericItem]
	// Field name -> analyzed word -> elements
	terms map[string]map[string]refSet
}

var _ engine.SearchIndex = (*MemoryIndex)(nil)

// NewMemoryIndex returns an empty index. A nil evaluator gets a default one.
func NewMemoryIndex(evaluator *visibility.Evaluator) *MemoryIndex {
	if evaluator == nil {
		evaluator = visibility.NewEvaluator()
	}
	m := &MemoryIndex{
		evaluator: evaluator,
		logger:    slog.Default().With("component", "search"),
	}
	m.reset()
	return m
}

func (m *MemoryIndex) reset() {
	m.docs = make(map[engine.ElementRef]*document)
	m.strings = make(map[string]map[string]refSet)
	m.numbers = make(map[string]*btree.BTreeG[numericItem])
	m.terms = make(map[string]map[string]refSet)
}

// Len returns the number of indexed elements.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// --- engine.SearchIndex ---

func (m *MemoryIndex) AddElement(state *core.ElementState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(state)
	return nil
}

func (m *MemoryIndex) UpdateElement(state *core.ElementState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(state)
	return nil
}

// put replaces the document of state, keeping its extended data rows.
func (m *MemoryIndex) put(state *core.ElementState) {
	ref := engine.ElementRef{Type: state.Type, ID: state.ID}
	doc := &document{
		ref:        ref,
		visibility: state.Visibility,
		hidden:     slices.Clone(state.Lifecycle.HiddenBy),
		properties: slices.Clone(state.Properties),
		extended:   make(map[core.ExtendedDataRowID]core.ExtendedDataRow),
	}
	if old, ok := m.docs[ref]; ok {
		m.unindex(old)
		doc.extended = old.extended
	}
	m.docs[ref] = doc
	m.index(doc)
}

func (m *MemoryIndex) DeleteElement(typ core.ElementType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := engine.ElementRef{Type: typ, ID: id}
	if doc, ok := m.docs[ref]; ok {
		m.unindex(doc)
		delete(m.docs, ref)
	}
	return nil
}

func (m *MemoryIndex) AddElementExtendedData(rows []core.ExtendedDataRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		doc, ok := m.docs[engine.ElementRef{Type: row.ID.ElementType, ID: row.ID.ElementID}]
		if !ok {
			return fmt.Errorf("extended data row %s/%s: element %s %q is not indexed",
				row.ID.TableName, row.ID.RowID, row.ID.ElementType, row.ID.ElementID)
		}
		m.unindex(doc)
		doc.extended[row.ID] = row
		m.index(doc)
	}
	return nil
}

func (m *MemoryIndex) DeleteExtendedData(rowID core.ExtendedDataRowID, column, key string, vis visibility.Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[engine.ElementRef{Type: rowID.ElementType, ID: rowID.ElementID}]
	if !ok {
		return nil
	}
	row, ok := doc.extended[rowID]
	if !ok {
		return nil
	}

	m.unindex(doc)
	if column == "" {
		delete(doc.extended, rowID)
	} else {
		row.Columns = slices.DeleteFunc(slices.Clone(row.Columns), func(c core.ExtendedDataColumn) bool {
			return c.Column == column && c.Key == key && c.Visibility == vis
		})
		if len(row.Columns) == 0 {
			delete(doc.extended, rowID)
		} else {
			doc.extended[rowID] = row
		}
	}
	m.index(doc)
	return nil
}

func (m *MemoryIndex) DeleteProperty(typ core.ElementType, id string, prop core.PropertyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[engine.ElementRef{Type: typ, ID: id}]
	if !ok {
		return nil
	}
	m.unindex(doc)
	doc.properties = slices.DeleteFunc(doc.properties, func(p core.Property) bool {
		return p.Identity() == prop
	})
	m.index(doc)
	return nil
}

func (m *MemoryIndex) MarkElementHidden(typ core.ElementType, id string, hidden visibility.Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, ok := m.docs[engine.ElementRef{Type: typ, ID: id}]; ok && !slices.Contains(doc.hidden, hidden) {
		doc.hidden = append(doc.hidden, hidden)
	}
	return nil
}

func (m *MemoryIndex) MarkElementVisible(typ core.ElementType, id string, hidden visibility.Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, ok := m.docs[engine.ElementRef{Type: typ, ID: id}]; ok {
		doc.hidden = slices.DeleteFunc(doc.hidden, func(v visibility.Visibility) bool { return v == hidden })
	}
	return nil
}

func (m *MemoryIndex) MarkPropertyHidden(typ core.ElementType, id string, prop core.PropertyKey, hidden visibility.Visibility) error {
	m.markProperty(engine.ElementRef{Type: typ, ID: id}, prop, func(marks []visibility.Visibility) []visibility.Visibility {
		if slices.Contains(marks, hidden) {
			return marks
		}
		return append(slices.Clone(marks), hidden)
	})
	return nil
}

func (m *MemoryIndex) MarkPropertyVisible(typ core.ElementType, id string, prop core.PropertyKey, hidden visibility.Visibility) error {
	m.markProperty(engine.ElementRef{Type: typ, ID: id}, prop, func(marks []visibility.Visibility) []visibility.Visibility {
		return slices.DeleteFunc(slices.Clone(marks), func(v visibility.Visibility) bool { return v == hidden })
	})
	return nil
}

// markProperty rewrites the hide marks of one cell. Marks are not part of
// the index keys, so nothing is re-indexed.
func (m *MemoryIndex) markProperty(ref engine.ElementRef, prop core.PropertyKey, update func([]visibility.Visibility) []visibility.Visibility) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[ref]
	if !ok {
		return
	}
	for i, p := range doc.properties {
		if p.Identity() == prop {
			doc.properties[i].HiddenVisibilities = update(p.HiddenVisibilities)
		}
	}
}

func (m *MemoryIndex) Truncate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	m.logger.Debug("search index truncated")
	return nil
}

func (m *MemoryIndex) Drop() error {
	return m.Truncate()
}

// --- Index maintenance (callers hold mu) ---

func (m *MemoryIndex) index(doc *document) {
	for _, f := range doc.fields() {
		if n, ok := toFloat64(f.value); ok {
			tree, ok := m.numbers[f.name]
			if !ok {
				tree = btree.NewBTreeGOptions(numericItemLess, btree.Options{NoLocks: true})
				m.numbers[f.name] = tree
			}
			tree.Set(numericItem{Value: n, Ref: doc.ref})
			continue
		}
		s, ok := f.value.(string)
		if !ok {
			continue
		}
		addRef(m.strings, f.name, s, doc.ref)
		for _, term := range Analyze(s) {
			addRef(m.terms, f.name, term, doc.ref)
		}
	}
}

func (m *MemoryIndex) unindex(doc *document) {
	for _, f := range doc.fields() {
		if n, ok := toFloat64(f.value); ok {
			if tree, ok := m.numbers[f.name]; ok {
				tree.Delete(numericItem{Value: n, Ref: doc.ref})
				if tree.Len() == 0 {
					delete(m.numbers, f.name)
				}
			}
			continue
		}
		s, ok := f.value.(string)
		if !ok {
			continue
		}
		removeRef(m.strings, f.name, s, doc.ref)
		for _, term := range Analyze(s) {
			removeRef(m.terms, f.name, term, doc.ref)
		}
	}
}

func addRef(idx map[string]map[string]refSet, name, value string, ref engine.ElementRef) {
	byValue, ok := idx[name]
	if !ok {
		byValue = make(map[string]refSet)
		idx[name] = byValue
	}
	set, ok := byValue[value]
	if !ok {
		set = make(refSet)
		byValue[value] = set
	}
	set[ref] = struct{}{}
}

func removeRef(idx map[string]map[string]refSet, name, value string, ref engine.ElementRef) {
	byValue, ok := idx[name]
	if !ok {
		return
	}
	if set, ok := byValue[value]; ok {
		delete(set, ref)
		if len(set) == 0 {
			delete(byValue, value)
		}
	}
	if len(byValue) == 0 {
		delete(idx, name)
	}
}

// candidates returns the elements whose indexed cells satisfy c, ignoring
// visibilities.
func (m *MemoryIndex) candidates(c Condition) refSet {
	out := make(refSet)
	switch c.Op {
	case OpContains:
		words := Analyze(c.Text)
		if len(words) == 0 {
			return out
		}
		for i, w := range words {
			set := m.terms[c.Field][w]
			if i == 0 {
				maps.Copy(out, set)
			} else {
				out = intersect(out, set)
			}
			if len(out) == 0 {
				break
			}
		}
		return out

	case OpEqual:
		if !c.Numeric {
			maps.Copy(out, m.strings[c.Field][c.Text])
			return out
		}
	}

	tree, ok := m.numbers[c.Field]
	if !ok {
		return out
	}
	collect := func(item numericItem) bool {
		out[item.Ref] = struct{}{}
		return true
	}
	low := numericItem{Value: math.Inf(-1)}
	switch c.Op {
	case OpEqual:
		tree.Ascend(numericItem{Value: c.Number}, func(item numericItem) bool {
			return item.Value == c.Number && collect(item)
		})
	case OpLess:
		tree.Ascend(low, func(item numericItem) bool { return item.Value < c.Number && collect(item) })
	case OpLessEqual:
		tree.Ascend(low, func(item numericItem) bool { return item.Value <= c.Number && collect(item) })
	case OpGreater:
		tree.Ascend(numericItem{Value: c.Number}, func(item numericItem) bool {
			if item.Value > c.Number {
				collect(item)
			}
			return true
		})
	case OpGreaterEqual:
		tree.Ascend(numericItem{Value: c.Number}, collect)
	}
	return out
}

func intersect(a, b refSet) refSet {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make(refSet)
	for ref := range a {
		if _, ok := b[ref]; ok {
			out[ref] = struct{}{}
		}
	}
	return out
}
