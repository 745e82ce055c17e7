package engine

import (
	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// SearchIndex is notified synchronously after every durable content change.
// The engine never retries: an error is returned to the caller of the
// operation that triggered it, after the change is already in the log.
//
// Elements are passed as their unfiltered projection; implementations are
// responsible for applying visibilities at query time.
type SearchIndex interface {
	AddElement(el *core.ElementState) error
	UpdateElement(el *core.ElementState) error
	DeleteElement(typ core.ElementType, id string) error
	MarkElementHidden(typ core.ElementType, id string, hidden visibility.Visibility) error
	MarkElementVisible(typ core.ElementType, id string, hidden visibility.Visibility) error
	AddElementExtendedData(rows []core.ExtendedDataRow) error
	// DeleteExtendedData removes one column, or the whole row when column
	// is empty.
	DeleteExtendedData(row core.ExtendedDataRowID, column, key string, vis visibility.Visibility) error
	DeleteProperty(typ core.ElementType, id string, prop core.PropertyKey) error
	MarkPropertyHidden(typ core.ElementType, id string, prop core.PropertyKey, hidden visibility.Visibility) error
	MarkPropertyVisible(typ core.ElementType, id string, prop core.PropertyKey, hidden visibility.Visibility) error
	Truncate() error
	Drop() error
}

// NopSearchIndex ignores every notification.
type NopSearchIndex struct{}

func (NopSearchIndex) AddElement(*core.ElementState) error {
	return nil
}

func (NopSearchIndex) UpdateElement(*core.ElementState) error {
	return nil
}

func (NopSearchIndex) DeleteElement(core.ElementType, string) error {
	return nil
}

func (NopSearchIndex) AddElementExtendedData([]core.ExtendedDataRow) error {
	return nil
}

func (NopSearchIndex) DeleteProperty(core.ElementType, string, core.PropertyKey) error {
	return nil
}

func (NopSearchIndex) MarkElementHidden(core.ElementType, string, visibility.Visibility) error {
	return nil
}

func (NopSearchIndex) MarkElementVisible(core.ElementType, string, visibility.Visibility) error {
	return nil
}

func (NopSearchIndex) DeleteExtendedData(core.ExtendedDataRowID, string, string, visibility.Visibility) error {
	return nil
}

func (NopSearchIndex) MarkPropertyHidden(core.ElementType, string, core.PropertyKey, visibility.Visibility) error {
	return nil
}

func (NopSearchIndex) MarkPropertyVisible(core.ElementType, string, core.PropertyKey, visibility.Visibility) error {
	return nil
}

func (NopSearchIndex) Truncate() error {
	return nil
}

func (NopSearchIndex) Drop() error {
	return nil
}

// IndexHint tells Save whether to notify the search index.
type IndexHint uint8

const (
	IndexHintIndex IndexHint = iota
	IndexHintDoNotIndex
)
