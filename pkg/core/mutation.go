package core

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// MutationKind names a mutation type. It is used for metrics labels and
// debugging output.
type MutationKind uint8

const (
	KindAlterVisibility MutationKind = iota + 1
	KindElementTimestamp
	KindAlterConceptType
	KindAlterEdgeLabel
	KindEdgeSetup
	KindAddPropertyValue
	KindAddPropertyMetadata
	KindDeleteProperty
	KindSoftDeleteProperty
	KindMarkPropertyHidden
	KindMarkPropertyVisible
	KindMarkHidden
	KindMarkVisible
	KindSoftDelete
	KindAddExtendedData
	KindDeleteExtendedData
)

var kindNames = map[MutationKind]string{
	KindAlterVisibility:     "alter_visibility",
	KindElementTimestamp:    "element_timestamp",
	KindAlterConceptType:    "alter_concept_type",
	KindAlterEdgeLabel:      "alter_edge_label",
	KindEdgeSetup:           "edge_setup",
	KindAddPropertyValue:    "add_property_value",
	KindAddPropertyMetadata: "add_property_metadata",
	KindDeleteProperty:      "delete_property",
	KindSoftDeleteProperty:  "soft_delete_property",
	KindMarkPropertyHidden:  "mark_property_hidden",
	KindMarkPropertyVisible: "mark_property_visible",
	KindMarkHidden:          "mark_hidden",
	KindMarkVisible:         "mark_visible",
	KindSoftDelete:          "soft_delete",
	KindAddExtendedData:     "add_extended_data",
	KindDeleteExtendedData:  "delete_extended_data",
}

func (k MutationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MutationKind(%d)", uint8(k))
}

// Mutation is one immutable, timestamped state transition of an element.
// The set of implementations is closed; see the *Mutation types below.
type Mutation interface {
	Timestamp() int64
	Kind() MutationKind
	isMutation()
}

// AlterVisibilityMutation sets the element's visibility. The first mutation
// of every element is one of these.
type AlterVisibilityMutation struct {
	Time       int64
	Visibility visibility.Visibility
}

func (m AlterVisibilityMutation) Timestamp() int64   { return m.Time }
func (m AlterVisibilityMutation) Kind() MutationKind { return KindAlterVisibility }
func (AlterVisibilityMutation) isMutation()          {}

// ElementTimestampMutation bumps the element's alteration time.
type ElementTimestampMutation struct {
	Time int64
}

func (m ElementTimestampMutation) Timestamp() int64   { return m.Time }
func (m ElementTimestampMutation) Kind() MutationKind { return KindElementTimestamp }
func (ElementTimestampMutation) isMutation()          {}

// AlterConceptTypeMutation sets a vertex's concept type.
type AlterConceptTypeMutation struct {
	Time        int64
	ConceptType string
}

func (m AlterConceptTypeMutation) Timestamp() int64   { return m.Time }
func (m AlterConceptTypeMutation) Kind() MutationKind { return KindAlterConceptType }
func (AlterConceptTypeMutation) isMutation()          {}

// AlterEdgeLabelMutation sets an edge's label.
type AlterEdgeLabelMutation struct {
	Time  int64
	Label string
}

func (m AlterEdgeLabelMutation) Timestamp() int64   { return m.Time }
func (m AlterEdgeLabelMutation) Kind() MutationKind { return KindAlterEdgeLabel }
func (AlterEdgeLabelMutation) isMutation()          {}

// EdgeSetupMutation sets (or replaces) an edge's endpoints.
type EdgeSetupMutation struct {
	Time        int64
	OutVertexID string
	InVertexID  string
}

func (m EdgeSetupMutation) Timestamp() int64   { return m.Time }
func (m EdgeSetupMutation) Kind() MutationKind { return KindEdgeSetup }
func (EdgeSetupMutation) isMutation()          {}

// AddPropertyValueMutation adds or replaces the value of one property cell.
type AddPropertyValueMutation struct {
	Time     int64
	Property PropertyKey
	Value    any
	Metadata Metadata
}

func (m AddPropertyValueMutation) Timestamp() int64   { return m.Time }
func (m AddPropertyValueMutation) Kind() MutationKind { return KindAddPropertyValue }
func (AddPropertyValueMutation) isMutation()          {}

// AddPropertyMetadataMutation replaces the full metadata of a property cell.
type AddPropertyMetadataMutation struct {
	Time     int64
	Property PropertyKey
	Metadata Metadata
}

func (m AddPropertyMetadataMutation) Timestamp() int64   { return m.Time }
func (m AddPropertyMetadataMutation) Kind() MutationKind { return KindAddPropertyMetadata }
func (AddPropertyMetadataMutation) isMutation()          {}

// DeletePropertyMutation hard-deletes a property cell. Earlier mutations of
// the same cell are ignored at every end time.
type DeletePropertyMutation struct {
	Time     int64
	Property PropertyKey
}

func (m DeletePropertyMutation) Timestamp() int64   { return m.Time }
func (m DeletePropertyMutation) Kind() MutationKind { return KindDeleteProperty }
func (DeletePropertyMutation) isMutation()          {}

// SoftDeletePropertyMutation removes a property cell from reads at or after
// Time.
type SoftDeletePropertyMutation struct {
	Time     int64
	Property PropertyKey
}

func (m SoftDeletePropertyMutation) Timestamp() int64   { return m.Time }
func (m SoftDeletePropertyMutation) Kind() MutationKind { return KindSoftDeleteProperty }
func (SoftDeletePropertyMutation) isMutation()          {}

// MarkPropertyHiddenMutation hides a property cell from readers of
// HiddenVisibility.
type MarkPropertyHiddenMutation struct {
	Time             int64
	Property         PropertyKey
	HiddenVisibility visibility.Visibility
}

func (m MarkPropertyHiddenMutation) Timestamp() int64   { return m.Time }
func (m MarkPropertyHiddenMutation) Kind() MutationKind { return KindMarkPropertyHidden }
func (MarkPropertyHiddenMutation) isMutation()          {}

// MarkPropertyVisibleMutation retracts a MarkPropertyHiddenMutation with the
// same HiddenVisibility.
type MarkPropertyVisibleMutation struct {
	Time             int64
	Property         PropertyKey
	HiddenVisibility visibility.Visibility
}

func (m MarkPropertyVisibleMutation) Timestamp() int64   { return m.Time }
func (m MarkPropertyVisibleMutation) Kind() MutationKind { return KindMarkPropertyVisible }
func (MarkPropertyVisibleMutation) isMutation()          {}

// MarkHiddenMutation hides the element from readers of HiddenVisibility.
type MarkHiddenMutation struct {
	Time             int64
	HiddenVisibility visibility.Visibility
}

func (m MarkHiddenMutation) Timestamp() int64   { return m.Time }
func (m MarkHiddenMutation) Kind() MutationKind { return KindMarkHidden }
func (MarkHiddenMutation) isMutation()          {}

// MarkVisibleMutation retracts a MarkHiddenMutation with the same
// HiddenVisibility.
type MarkVisibleMutation struct {
	Time             int64
	HiddenVisibility visibility.Visibility
}

func (m MarkVisibleMutation) Timestamp() int64   { return m.Time }
func (m MarkVisibleMutation) Kind() MutationKind { return KindMarkVisible }
func (MarkVisibleMutation) isMutation()          {}

// SoftDeleteMutation is the element tombstone.
type SoftDeleteMutation struct {
	Time int64
}

func (m SoftDeleteMutation) Timestamp() int64   { return m.Time }
func (m SoftDeleteMutation) Kind() MutationKind { return KindSoftDelete }
func (SoftDeleteMutation) isMutation()          {}

// AddExtendedDataMutation records a column written to one of the element's
// extended data tables. The column itself lives in the ExtendedDataStore.
type AddExtendedDataMutation struct {
	Time       int64
	TableName  string
	RowID      string
	Column     string
	Key        string
	Value      any
	Visibility visibility.Visibility
}

func (m AddExtendedDataMutation) Timestamp() int64   { return m.Time }
func (m AddExtendedDataMutation) Kind() MutationKind { return KindAddExtendedData }
func (AddExtendedDataMutation) isMutation()          {}

// DeleteExtendedDataMutation records the removal of an extended data column,
// or of the whole row when Column is empty.
type DeleteExtendedDataMutation struct {
	Time       int64
	TableName  string
	RowID      string
	Column     string
	Key        string
	Visibility visibility.Visibility
}

func (m DeleteExtendedDataMutation) Timestamp() int64   { return m.Time }
func (m DeleteExtendedDataMutation) Kind() MutationKind { return KindDeleteExtendedData }
func (DeleteExtendedDataMutation) isMutation()          {}
