package core

import (
	"cmp"
	"slices"
	"sync"

	"github.com/tidwall/btree"

	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// ExtendedDataRowID addresses one row of an element's extended data table.
type ExtendedDataRowID struct {
	ElementType ElementType
	ElementID   string
	TableName   string
	RowID       string
}

// ExtendedDataColumn is one visibility-tagged cell of an extended data row.
// Columns are identified by (Column, Key, Visibility).
type ExtendedDataColumn struct {
	Column     string
	Key        string
	Value      any
	Timestamp  int64
	Visibility visibility.Visibility
}

func (c ExtendedDataColumn) sameIdentity(column, key string, vis visibility.Visibility) bool {
	return c.Column == column && c.Key == key && c.Visibility == vis
}

// ExtendedDataRow is a row as returned to a reader.
type ExtendedDataRow struct {
	ID      ExtendedDataRowID
	Columns []ExtendedDataColumn
}

// Value returns the value of the first column named column.
func (r ExtendedDataRow) Value(column string) (any, bool) {
	for _, c := range r.Columns {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// ColumnNames returns the distinct column names of the row, sorted.
func (r ExtendedDataRow) ColumnNames() []string {
	names := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		names = append(names, c.Column)
	}
	return sortedUnique(names)
}

type elementKey struct {
	typ ElementType
	id  string
}

// extendedTable holds the rows of one (element, table) pair, ordered by row id.
type extendedTable struct {
	mu   sync.RWMutex
	rows btree.Map[string, []ExtendedDataColumn]
}

// ExtendedDataStore keeps the extended data tables of every element. The
// outer lock only guards the element and table maps; each (element, table)
// collection has its own lock.
type ExtendedDataStore struct {
	evaluator *visibility.Evaluator

	mu       sync.RWMutex
	elements map[elementKey]map[string]*extendedTable
}

// NewExtendedDataStore creates an empty store evaluating visibilities with
// ev. A nil ev uses the visibility package evaluator.
func NewExtendedDataStore(ev *visibility.Evaluator) *ExtendedDataStore {
	return &ExtendedDataStore{
		evaluator: ev,
		elements:  make(map[elementKey]map[string]*extendedTable),
	}
}

func (s *ExtendedDataStore) table(typ ElementType, id, name string, create bool) *extendedTable {
	key := elementKey{typ: typ, id: id}

	s.mu.RLock()
	t := s.elements[key][name]
	s.mu.RUnlock()
	if t != nil || !create {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tables, ok := s.elements[key]
	if !ok {
		tables = make(map[string]*extendedTable)
		s.elements[key] = tables
	}
	if t = tables[name]; t == nil {
		t = &extendedTable{}
		tables[name] = t
	}
	return t
}

// AddData upserts a column: an existing column with the same (column, key,
// visibility) identity is replaced.
func (s *ExtendedDataStore) AddData(row ExtendedDataRowID, column, key string, value any, timestamp int64, vis visibility.Visibility) {
	t := s.table(row.ElementType, row.ElementID, row.TableName, true)

	t.mu.Lock()
	defer t.mu.Unlock()

	cols, _ := t.rows.Get(row.RowID)
	cols = slices.DeleteFunc(slices.Clone(cols), func(c ExtendedDataColumn) bool {
		return c.sameIdentity(column, key, vis)
	})
	cols = append(cols, ExtendedDataColumn{
		Column:     column,
		Key:        key,
		Value:      value,
		Timestamp:  timestamp,
		Visibility: vis,
	})
	t.rows.Set(row.RowID, cols)
}

// RemoveColumn deletes one column and reports whether it existed. A row left
// without columns is removed.
func (s *ExtendedDataStore) RemoveColumn(row ExtendedDataRowID, column, key string, vis visibility.Visibility) bool {
	t := s.table(row.ElementType, row.ElementID, row.TableName, false)
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cols, ok := t.rows.Get(row.RowID)
	if !ok {
		return false
	}
	kept := slices.DeleteFunc(slices.Clone(cols), func(c ExtendedDataColumn) bool {
		return c.sameIdentity(column, key, vis)
	})
	if len(kept) == len(cols) {
		return false
	}
	if len(kept) == 0 {
		t.rows.Delete(row.RowID)
	} else {
		t.rows.Set(row.RowID, kept)
	}
	return true
}

// RemoveRow deletes a whole row and reports whether it existed.
func (s *ExtendedDataStore) RemoveRow(row ExtendedDataRowID) bool {
	t := s.table(row.ElementType, row.ElementID, row.TableName, false)
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.rows.Delete(row.RowID)
	return ok
}

// RemoveElement drops every table of an element and returns the ids of the
// rows that were removed.
func (s *ExtendedDataStore) RemoveElement(typ ElementType, id string) []ExtendedDataRowID {
	key := elementKey{typ: typ, id: id}

	s.mu.Lock()
	tables := s.elements[key]
	delete(s.elements, key)
	s.mu.Unlock()

	var removed []ExtendedDataRowID
	for name, t := range tables {
		t.mu.RLock()
		t.rows.Scan(func(rowID string, _ []ExtendedDataColumn) bool {
			removed = append(removed, ExtendedDataRowID{ElementType: typ, ElementID: id, TableName: name, RowID: rowID})
			return true
		})
		t.mu.RUnlock()
	}
	slices.SortFunc(removed, func(a, b ExtendedDataRowID) int {
		return cmp.Or(cmp.Compare(a.TableName, b.TableName), cmp.Compare(a.RowID, b.RowID))
	})
	return removed
}

// TableNames returns, sorted, the names of the element's tables that hold at
// least one row readable with auths.
func (s *ExtendedDataStore) TableNames(typ ElementType, id string, auths visibility.Authorizations) ([]string, error) {
	s.mu.RLock()
	tables := s.elements[elementKey{typ: typ, id: id}]
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	s.mu.RUnlock()
	slices.Sort(names)

	out := names[:0]
	for _, name := range names {
		rows, err := s.Table(typ, id, name, auths)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			out = append(out, name)
		}
	}
	return out, nil
}

// Table returns the rows of one table filtered by auths, ordered by row id.
// Only readable columns are returned and rows without any readable column
// are omitted.
func (s *ExtendedDataStore) Table(typ ElementType, id, name string, auths visibility.Authorizations) ([]ExtendedDataRow, error) {
	t := s.table(typ, id, name, false)
	if t == nil {
		return nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var (
		rows []ExtendedDataRow
		err  error
	)
	t.rows.Scan(func(rowID string, cols []ExtendedDataColumn) bool {
		var readable []ExtendedDataColumn
		for _, c := range cols {
			ok, cerr := canRead(s.evaluator, c.Visibility, auths)
			if cerr != nil {
				err = cerr
				return false
			}
			if ok {
				readable = append(readable, c)
			}
		}
		if len(readable) == 0 {
			return true
		}
		rows = append(rows, ExtendedDataRow{
			ID:      ExtendedDataRowID{ElementType: typ, ElementID: id, TableName: name, RowID: rowID},
			Columns: readable,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Row returns one row without visibility filtering.
func (s *ExtendedDataStore) Row(row ExtendedDataRowID) (ExtendedDataRow, bool) {
	t := s.table(row.ElementType, row.ElementID, row.TableName, false)
	if t == nil {
		return ExtendedDataRow{}, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	cols, ok := t.rows.Get(row.RowID)
	if !ok {
		return ExtendedDataRow{}, false
	}
	return ExtendedDataRow{ID: row, Columns: slices.Clone(cols)}, true
}

// Clear removes every table of every element.
func (s *ExtendedDataStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = make(map[elementKey]map[string]*extendedTable)
}
