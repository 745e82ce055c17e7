package core

import (
	"slices"
	"sync"
)

// TableElement is the mutation log of one element id. Appends are guarded by
// the element's own lock, so histories of different ids grow independently.
type TableElement struct {
	id  string
	typ ElementType

	mu        sync.RWMutex
	mutations []Mutation
}

func newTableElement(typ ElementType, id string) *TableElement {
	return &TableElement{id: id, typ: typ}
}

// ID returns the element id.
func (te *TableElement) ID() string {
	return te.id
}

// Type returns the element type.
func (te *TableElement) Type() ElementType {
	return te.typ
}

// Append adds mutations at the end of the log.
func (te *TableElement) Append(ms ...Mutation) {
	te.mu.Lock()
	te.mutations = append(te.mutations, ms...)
	te.mu.Unlock()
}

// Mutations returns a snapshot of the log.
func (te *TableElement) Mutations() []Mutation {
	te.mu.RLock()
	defer te.mu.RUnlock()
	return slices.Clone(te.mutations)
}

// Len returns the number of mutations appended so far.
func (te *TableElement) Len() int {
	te.mu.RLock()
	defer te.mu.RUnlock()
	return len(te.mutations)
}

// Project folds the log into a filtered read view. See Project.
func (te *TableElement) Project(opts ProjectOptions) (*ElementState, error) {
	return Project(te.id, te.typ, te.Mutations(), opts)
}

// Unfiltered folds the log without any visibility evaluation.
func (te *TableElement) Unfiltered(endTime int64) *ElementState {
	return ProjectUnfiltered(te.id, te.typ, te.Mutations(), endTime)
}

// Table maps element ids to their logs. The table lock is only held while a
// row is created, removed, or while ids are snapshotted.
type Table struct {
	typ ElementType

	mu   sync.RWMutex
	rows map[string]*TableElement
}

// NewTable creates an empty table for one element type.
func NewTable(typ ElementType) *Table {
	return &Table{
		typ:  typ,
		rows: make(map[string]*TableElement),
	}
}

// Type returns the element type stored in the table.
func (t *Table) Type() ElementType {
	return t.typ
}

// Append appends mutations to the row for id, creating the row if it does
// not exist yet. created reports whether this call created the row.
func (t *Table) Append(id string, ms ...Mutation) (row *TableElement, created bool) {
	t.mu.RLock()
	row, ok := t.rows[id]
	t.mu.RUnlock()

	if !ok {
		t.mu.Lock()
		// Double check: another writer may have created the row meanwhile.
		if row, ok = t.rows[id]; !ok {
			row = newTableElement(t.typ, id)
			t.rows[id] = row
			created = true
		}
		t.mu.Unlock()
	}

	row.Append(ms...)
	return row, created
}

// Get returns the row for id.
func (t *Table) Get(id string) (*TableElement, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	return row, ok
}

// Remove physically deletes the row for id and returns it.
func (t *Table) Remove(id string) (*TableElement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if ok {
		delete(t.rows, id)
	}
	return row, ok
}

// IDs returns a sorted snapshot of all ids in the table.
func (t *Table) IDs() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Clear removes every row.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make(map[string]*TableElement)
}
