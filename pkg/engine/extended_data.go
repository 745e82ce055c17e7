package engine

import (
	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// GetExtendedData returns the rows of one extended data table of an element,
// ordered by row id. Only columns readable with auths are returned and rows
// left without columns are omitted. An element that is not readable has no
// extended data.
func (e *Engine) GetExtendedData(ref ElementRef, tableName string, auths visibility.Authorizations) ([]core.ExtendedDataRow, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	state, err := e.project(ref.Type, ref.ID, core.FetchHintsNone, core.Latest, auths)
	if err != nil || state == nil {
		return nil, err
	}
	return e.extended.Table(ref.Type, ref.ID, tableName, auths)
}

// DeleteExtendedDataRow removes a whole extended data row. It is a no-op
// when the owning element or the row is not readable with auths.
func (e *Engine) DeleteExtendedDataRow(row core.ExtendedDataRowID, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(row.ElementType, row.ElementID, refHintsWithHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	readable, err := e.rowReadable(row, auths)
	if err != nil || !readable {
		return err
	}

	ts := e.clock.Next()
	m := core.DeleteExtendedDataMutation{Time: ts, TableName: row.TableName, RowID: row.RowID}
	if !e.appendExisting(row.ElementType, row.ElementID, m) {
		return nil
	}
	if !e.extended.RemoveRow(row) {
		return nil
	}

	var idxErr error
	if err := e.index.DeleteExtendedData(row, "", "", ""); err != nil {
		idxErr = e.indexFailed("delete_extended_data", err)
	}
	e.fire(Event{Kind: EventDeleteExtendedData, ElementType: row.ElementType, ElementID: row.ElementID, Timestamp: ts, ExtendedData: row})
	return idxErr
}

func (e *Engine) rowReadable(row core.ExtendedDataRowID, auths visibility.Authorizations) (bool, error) {
	r, ok := e.extended.Row(row)
	if !ok {
		return false, nil
	}
	for _, c := range r.Columns {
		ok, err := e.evaluator.CanRead(c.Visibility, auths)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
