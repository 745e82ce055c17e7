package engine

import (
	"errors"
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// save appends the builder's mutations to the element log, applies the
// extended data changes, notifies the search index and fires events. head
// builds the element-level mutations; cur is nil when the element is created.
// The returned state is the unfiltered writer view used for notification.
//
// An existing element is only mutated by a caller that can read it, hidden
// or not. Visibilities being written are not evaluated: a malformed
// expression is stored and fails on the first read that evaluates it.
func (e *Engine) save(b *ElementBuilder, auths visibility.Authorizations, head func(cur *core.ElementState, ts int64) []core.Mutation) (*core.ElementState, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	if b.id == "" {
		return nil, invalidArgument("%s id is empty", b.typ)
	}

	table := e.table(b.typ)
	var cur *core.ElementState
	if row, ok := table.Get(b.id); ok {
		cur = row.Unfiltered(core.Latest)
	}
	// A soft-deleted id starts a new generation in the same log.
	recreate := cur != nil && cur.Lifecycle.Kind == core.LifecycleSoftDeleted
	if cur == nil || recreate {
		if b.existing {
			return nil, fmt.Errorf("save %s: %w", b.typ, &core.NotFoundError{What: b.typ.String(), ID: b.id})
		}
		cur = nil
	} else {
		view, err := e.project(b.typ, b.id, refHintsWithHidden, core.Latest, auths)
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", b.typ, err)
		}
		if view == nil {
			return nil, fmt.Errorf("save %s: %w", b.typ, &core.NotFoundError{What: b.typ.String(), ID: b.id})
		}
	}

	// 1. Build mutations
	ts := e.timestamp(b.timestamp)
	ms := head(cur, ts)
	base := ms[len(ms)-1].Timestamp()

	props, valueTs, err := b.propertyMutations(cur, base)
	if err != nil {
		return nil, err
	}
	ms = append(ms, props...)
	extended := b.extendedDataMutations(valueTs)
	ms = append(ms, extended...)

	var errs []error
	if recreate {
		errs = append(errs, e.removeExtendedData(b.typ, b.id))
	}

	// 2. Log
	row, created := table.Append(b.id, ms...)
	created = created || recreate
	state := row.Unfiltered(core.Latest)
	if b.typ == core.ElementTypeEdge {
		e.adjacency.Add(state.OutVertexID, state.InVertexID, state.ID)
	}
	e.appended(b.typ, ms)
	if created {
		e.updateRowGauges()
	}

	// 3. Extended data side tables
	var addedRows []core.ExtendedDataRowID
	for _, m := range extended {
		switch m := m.(type) {
		case core.AddExtendedDataMutation:
			rowID := e.extendedRowID(b.typ, b.id, m.TableName, m.RowID)
			e.extended.AddData(rowID, m.Column, m.Key, m.Value, m.Time, m.Visibility)
			addedRows = append(addedRows, rowID)
		case core.DeleteExtendedDataMutation:
			rowID := e.extendedRowID(b.typ, b.id, m.TableName, m.RowID)
			if m.Column == "" {
				e.extended.RemoveRow(rowID)
			} else {
				e.extended.RemoveColumn(rowID, m.Column, m.Key, m.Visibility)
			}
		}
	}

	e.logger.Debug("element saved", "type", b.typ, "id", b.id, "created", created, "mutations", len(ms))

	// 4. Search index
	if b.indexHint != IndexHintDoNotIndex {
		errs = append(errs, e.indexSave(state, created, ms, addedRows))
	}

	// 5. Events
	e.fireSave(state, ms)
	return state, errors.Join(errs...)
}

// savedView is the saved element as auths reads it, hidden content
// included. It is nil when the writer cannot read what it saved.
func (e *Engine) savedView(state *core.ElementState, auths visibility.Authorizations) *core.ElementState {
	view, err := e.project(state.Type, state.ID, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil {
		e.logger.Debug("saved element not readable", "type", state.Type, "id", state.ID, "error", err)
		return nil
	}
	return view
}

func (e *Engine) extendedRowID(typ core.ElementType, id, table, row string) core.ExtendedDataRowID {
	return core.ExtendedDataRowID{ElementType: typ, ElementID: id, TableName: table, RowID: row}
}

func (e *Engine) indexSave(state *core.ElementState, created bool, ms []core.Mutation, addedRows []core.ExtendedDataRowID) error {
	var errs []error
	if created {
		if err := e.index.AddElement(state); err != nil {
			errs = append(errs, e.indexFailed("add_element", err))
		}
	} else if err := e.index.UpdateElement(state); err != nil {
		errs = append(errs, e.indexFailed("update_element", err))
	}

	for _, m := range ms {
		switch m := m.(type) {
		case core.DeletePropertyMutation:
			if err := e.index.DeleteProperty(state.Type, state.ID, m.Property); err != nil {
				errs = append(errs, e.indexFailed("delete_property", err))
			}
		case core.SoftDeletePropertyMutation:
			if err := e.index.DeleteProperty(state.Type, state.ID, m.Property); err != nil {
				errs = append(errs, e.indexFailed("delete_property", err))
			}
		case core.DeleteExtendedDataMutation:
			rowID := e.extendedRowID(state.Type, state.ID, m.TableName, m.RowID)
			if err := e.index.DeleteExtendedData(rowID, m.Column, m.Key, m.Visibility); err != nil {
				errs = append(errs, e.indexFailed("delete_extended_data", err))
			}
		}
	}

	if len(addedRows) > 0 {
		var rows []core.ExtendedDataRow
		seen := make(map[core.ExtendedDataRowID]bool)
		for _, id := range addedRows {
			if seen[id] {
				continue
			}
			seen[id] = true
			if row, ok := e.extended.Row(id); ok {
				rows = append(rows, row)
			}
		}
		if err := e.index.AddElementExtendedData(rows); err != nil {
			errs = append(errs, e.indexFailed("add_extended_data", err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) fireSave(state *core.ElementState, ms []core.Mutation) {
	kind := EventAddVertex
	if state.Type == core.ElementTypeEdge {
		kind = EventAddEdge
	}
	e.fire(Event{Kind: kind, ElementType: state.Type, ElementID: state.ID, Timestamp: state.Timestamp})

	for _, m := range ms {
		ev := Event{ElementType: state.Type, ElementID: state.ID, Timestamp: m.Timestamp()}
		switch m := m.(type) {
		case core.AddPropertyValueMutation:
			ev.Kind, ev.Property = EventAddProperty, m.Property
		case core.DeletePropertyMutation:
			ev.Kind, ev.Property = EventDeleteProperty, m.Property
		case core.SoftDeletePropertyMutation:
			ev.Kind, ev.Property = EventSoftDeleteProperty, m.Property
		case core.AddExtendedDataMutation:
			ev.Kind, ev.ExtendedData = EventAddExtendedData, e.extendedRowID(state.Type, state.ID, m.TableName, m.RowID)
		case core.DeleteExtendedDataMutation:
			ev.Kind, ev.ExtendedData = EventDeleteExtendedData, e.extendedRowID(state.Type, state.ID, m.TableName, m.RowID)
		default:
			continue
		}
		e.fire(ev)
	}
}
