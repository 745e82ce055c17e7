package core

import (
	"fmt"
	"slices"
)

// FetchHints select which parts of an element are materialized on read and,
// consequently, which accessors may be called on the result.
type FetchHints struct {
	// IncludeAllProperties materializes every readable property.
	IncludeAllProperties bool
	// PropertyNames materializes only the named properties when
	// IncludeAllProperties is false.
	PropertyNames []string
	// IncludeHidden returns elements and properties hidden from the reader.
	IncludeHidden bool
	// IncludeEdgeRefs allows edge and adjacent-vertex accessors on vertices.
	IncludeEdgeRefs bool
	// IncludeExtendedDataTableNames allows listing extended data tables.
	IncludeExtendedDataTableNames bool
}

var (
	FetchHintsAll = FetchHints{
		IncludeAllProperties:          true,
		IncludeEdgeRefs:               true,
		IncludeExtendedDataTableNames: true,
	}
	FetchHintsAllIncludingHidden = FetchHints{
		IncludeAllProperties:          true,
		IncludeHidden:                 true,
		IncludeEdgeRefs:               true,
		IncludeExtendedDataTableNames: true,
	}
	FetchHintsNone     = FetchHints{}
	FetchHintsEdgeRefs = FetchHints{IncludeEdgeRefs: true}
)

// WithHidden returns a copy of h that includes hidden elements.
func (h FetchHints) WithHidden() FetchHints {
	h.PropertyNames = slices.Clone(h.PropertyNames)
	h.IncludeHidden = true
	return h
}

// IncludesProperty reports whether properties named name are materialized.
func (h FetchHints) IncludesProperty(name string) bool {
	return h.IncludeAllProperties || slices.Contains(h.PropertyNames, name)
}

// CheckProperty returns a *MissingFetchHintError when name is not fetched.
func (h FetchHints) CheckProperty(name string) error {
	if h.IncludesProperty(name) {
		return nil
	}
	return &MissingFetchHintError{Hint: "property:" + name, Accessor: "Property"}
}

// CheckEdgeRefs returns a *MissingFetchHintError when edge refs are not fetched.
func (h FetchHints) CheckEdgeRefs(accessor string) error {
	if h.IncludeEdgeRefs {
		return nil
	}
	return &MissingFetchHintError{Hint: "IncludeEdgeRefs", Accessor: accessor}
}

// CheckExtendedDataTableNames returns a *MissingFetchHintError when table
// names are not fetched.
func (h FetchHints) CheckExtendedDataTableNames(accessor string) error {
	if h.IncludeExtendedDataTableNames {
		return nil
	}
	return &MissingFetchHintError{Hint: "IncludeExtendedDataTableNames", Accessor: accessor}
}

// MissingFetchHintError is returned by an accessor whose data was not
// requested when the element was read.
type MissingFetchHintError struct {
	Hint     string
	Accessor string
}

func (e *MissingFetchHintError) Error() string {
	return fmt.Sprintf("%s requires fetch hint %s", e.Accessor, e.Hint)
}
