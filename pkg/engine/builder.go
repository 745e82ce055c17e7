package engine

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// DefaultPropertyKey is the key used by SetProperty.
const DefaultPropertyKey = ""

type pendingProperty struct {
	key      core.PropertyKey
	value    any
	metadata core.Metadata
}

type pendingMetadata struct {
	prop  core.PropertyKey
	entry core.MetadataEntry
}

type pendingAlteration struct {
	prop       core.PropertyKey
	visibility visibility.Visibility
}

type pendingExtendedData struct {
	table, row, column, key string
	value                   any
	visibility              visibility.Visibility
}

// ElementBuilder collects changes to one element. Nothing is written until
// Save is called on the enclosing VertexBuilder or EdgeBuilder. Builders are
// not safe for concurrent use.
type ElementBuilder struct {
	engine     *Engine
	typ        core.ElementType
	id         string
	visibility visibility.Visibility
	timestamp  int64
	indexHint  IndexHint
	// existing is set by PrepareMutation: the element must still exist.
	existing bool

	properties      []pendingProperty
	deletes         []core.PropertyKey
	softDeletes     []core.PropertyKey
	metadata        []pendingMetadata
	alterations     []pendingAlteration
	extendedData    []pendingExtendedData
	extendedDeletes []pendingExtendedData
}

// ID returns the element id, generated if none was given.
func (b *ElementBuilder) ID() string {
	return b.id
}

// AddPropertyValue adds or replaces the property (key, name, vis).
func (b *ElementBuilder) AddPropertyValue(key, name string, value any, metadata core.Metadata, vis visibility.Visibility) {
	b.properties = append(b.properties, pendingProperty{
		key:      core.PropertyKey{Key: key, Name: name, Visibility: vis},
		value:    value,
		metadata: metadata.Clone(),
	})
}

// SetProperty sets the property name under DefaultPropertyKey.
func (b *ElementBuilder) SetProperty(name string, value any, vis visibility.Visibility) {
	b.AddPropertyValue(DefaultPropertyKey, name, value, core.Metadata{}, vis)
}

// SetPropertyMetadata sets one metadata entry of an existing property, or of
// a property added by this builder.
func (b *ElementBuilder) SetPropertyMetadata(prop core.PropertyKey, entry core.MetadataEntry) {
	b.metadata = append(b.metadata, pendingMetadata{prop: prop, entry: entry})
}

// AlterPropertyVisibility moves an existing property to a new visibility.
func (b *ElementBuilder) AlterPropertyVisibility(prop core.PropertyKey, vis visibility.Visibility) {
	b.alterations = append(b.alterations, pendingAlteration{prop: prop, visibility: vis})
}

// DeleteProperty hard-deletes a property: its whole history is dropped.
func (b *ElementBuilder) DeleteProperty(key, name string, vis visibility.Visibility) {
	b.deletes = append(b.deletes, core.PropertyKey{Key: key, Name: name, Visibility: vis})
}

// SoftDeleteProperty tombstones a property at the save timestamp.
func (b *ElementBuilder) SoftDeleteProperty(key, name string, vis visibility.Visibility) {
	b.softDeletes = append(b.softDeletes, core.PropertyKey{Key: key, Name: name, Visibility: vis})
}

// AddExtendedData upserts one column of an extended data row.
func (b *ElementBuilder) AddExtendedData(table, row, column, key string, value any, vis visibility.Visibility) {
	b.extendedData = append(b.extendedData, pendingExtendedData{
		table: table, row: row, column: column, key: key, value: value, visibility: vis,
	})
}

// DeleteExtendedData removes one column of an extended data row. An empty
// column removes the whole row.
func (b *ElementBuilder) DeleteExtendedData(table, row, column, key string, vis visibility.Visibility) {
	b.extendedDeletes = append(b.extendedDeletes, pendingExtendedData{
		table: table, row: row, column: column, key: key, visibility: vis,
	})
}

// AlterElementVisibility changes the visibility of the element itself.
func (b *ElementBuilder) AlterElementVisibility(vis visibility.Visibility) {
	b.visibility = vis
}

// SetTimestamp fixes the timestamp (milliseconds) of the save instead of
// taking it from the engine clock.
func (b *ElementBuilder) SetTimestamp(ts int64) {
	b.timestamp = ts
}

// SetIndexHint controls search index notification for this save.
func (b *ElementBuilder) SetIndexHint(hint IndexHint) {
	b.indexHint = hint
}

// VertexBuilder prepares the creation or update of a vertex.
type VertexBuilder struct {
	ElementBuilder
	conceptType string
}

// PrepareVertex starts a vertex builder. An empty id is replaced by a
// generated one.
func (e *Engine) PrepareVertex(id string, vis visibility.Visibility, conceptType string) *VertexBuilder {
	if id == "" {
		id = e.ids.NextVertexID()
	}
	return &VertexBuilder{
		ElementBuilder: ElementBuilder{engine: e, typ: core.ElementTypeVertex, id: id, visibility: vis},
		conceptType:    conceptType,
	}
}

// AlterConceptType changes the vertex concept type.
func (b *VertexBuilder) AlterConceptType(conceptType string) {
	b.conceptType = conceptType
}

// Save writes the vertex. A new id gets its creation mutations; an existing
// id gets a timestamp bump plus mutations for what actually changed. An
// existing vertex that auths cannot read is reported as not found. The
// returned vertex holds what auths can read and is nil when auths cannot
// read the saved vertex. When only the search index notification fails, the
// saved vertex is returned together with the error.
func (b *VertexBuilder) Save(auths visibility.Authorizations) (*Vertex, error) {
	e := b.engine
	state, err := e.save(&b.ElementBuilder, auths, func(cur *core.ElementState, ts int64) []core.Mutation {
		if cur == nil {
			ms := []core.Mutation{
				core.AlterVisibilityMutation{Time: ts, Visibility: b.visibility},
				core.ElementTimestampMutation{Time: ts},
			}
			if b.conceptType != "" {
				ms = append(ms, core.AlterConceptTypeMutation{Time: ts, ConceptType: b.conceptType})
			}
			return ms
		}
		ms := []core.Mutation{core.ElementTimestampMutation{Time: ts}}
		if cur.Visibility != b.visibility {
			ms = append(ms, core.AlterVisibilityMutation{Time: ts, Visibility: b.visibility})
		}
		if cur.ConceptType != b.conceptType {
			ms = append(ms, core.AlterConceptTypeMutation{Time: ts, ConceptType: b.conceptType})
		}
		return ms
	})
	if state == nil {
		return nil, err
	}
	view := e.savedView(state, auths)
	if view == nil {
		return nil, err
	}
	return e.newVertex(view, core.FetchHintsAllIncludingHidden, core.Latest, auths), err
}

// EdgeBuilder prepares the creation or update of an edge.
type EdgeBuilder struct {
	ElementBuilder
	outVertexID string
	inVertexID  string
	label       string
}

// PrepareEdge starts an edge builder from outVertexID to inVertexID. An
// empty id is replaced by a generated one.
func (e *Engine) PrepareEdge(id, outVertexID, inVertexID, label string, vis visibility.Visibility) *EdgeBuilder {
	if id == "" {
		id = e.ids.NextEdgeID()
	}
	return &EdgeBuilder{
		ElementBuilder: ElementBuilder{engine: e, typ: core.ElementTypeEdge, id: id, visibility: vis},
		outVertexID:    outVertexID,
		inVertexID:     inVertexID,
		label:          label,
	}
}

// AlterLabel changes the edge label.
func (b *EdgeBuilder) AlterLabel(label string) {
	b.label = label
}

// SetVertexIDs re-endpoints the edge.
func (b *EdgeBuilder) SetVertexIDs(outVertexID, inVertexID string) {
	b.outVertexID = outVertexID
	b.inVertexID = inVertexID
}

// Save writes the edge. Creation appends the visibility, timestamp, label
// and endpoint mutations with strictly increasing timestamps; an update only
// appends an endpoint mutation when the endpoints changed.
// Authorization rules and the returned view are those of VertexBuilder.Save.
func (b *EdgeBuilder) Save(auths visibility.Authorizations) (*Edge, error) {
	if b.outVertexID == "" || b.inVertexID == "" {
		return nil, invalidArgument("edge %q needs both vertex ids", b.id)
	}
	if b.label == "" {
		return nil, invalidArgument("edge %q needs a label", b.id)
	}

	e := b.engine
	state, err := e.save(&b.ElementBuilder, auths, func(cur *core.ElementState, ts int64) []core.Mutation {
		if cur == nil {
			return []core.Mutation{
				core.AlterVisibilityMutation{Time: ts, Visibility: b.visibility},
				core.ElementTimestampMutation{Time: e.after(ts, 1)},
				core.AlterEdgeLabelMutation{Time: e.after(ts, 2), Label: b.label},
				core.EdgeSetupMutation{Time: e.after(ts, 3), OutVertexID: b.outVertexID, InVertexID: b.inVertexID},
			}
		}
		ms := []core.Mutation{core.ElementTimestampMutation{Time: ts}}
		if cur.Visibility != b.visibility {
			ms = append(ms, core.AlterVisibilityMutation{Time: ts, Visibility: b.visibility})
		}
		if cur.Label != b.label {
			ms = append(ms, core.AlterEdgeLabelMutation{Time: ts, Label: b.label})
		}
		if cur.OutVertexID != b.outVertexID || cur.InVertexID != b.inVertexID {
			ms = append(ms, core.EdgeSetupMutation{Time: ts, OutVertexID: b.outVertexID, InVertexID: b.inVertexID})
		}
		return ms
	})
	if state == nil {
		return nil, err
	}
	view := e.savedView(state, auths)
	if view == nil {
		return nil, err
	}
	return e.newEdge(view, core.FetchHintsAllIncludingHidden, core.Latest, auths), err
}

// after returns ts+n and keeps the clock ahead of it.
func (e *Engine) after(ts int64, n int64) int64 {
	e.clock.Observe(ts + n)
	return ts + n
}

// propertyMutations turns the pending property changes into mutations
// against cur, the unfiltered current state (nil for a new element).
// Metadata changes come first, then visibility alterations, then adds and
// deletes.
func (b *ElementBuilder) propertyMutations(cur *core.ElementState, ts int64) ([]core.Mutation, int64, error) {
	working := make(map[core.PropertyKey]core.Property)
	if cur != nil {
		for _, p := range cur.Properties {
			working[p.Identity()] = p
		}
	}
	adds := make([]pendingProperty, len(b.properties))
	copy(adds, b.properties)
	lastAdd := func(key core.PropertyKey) int {
		for i := len(adds) - 1; i >= 0; i-- {
			if adds[i].key == key {
				return i
			}
		}
		return -1
	}
	notFound := func(key core.PropertyKey) error {
		return fmt.Errorf("%s %q: %w", b.typ, b.id, &core.NotFoundError{What: "property", ID: key.String()})
	}

	var ms []core.Mutation

	// 1. Metadata
	var changed []core.PropertyKey
	for _, pm := range b.metadata {
		if i := lastAdd(pm.prop); i >= 0 {
			adds[i].metadata = adds[i].metadata.Clone()
			adds[i].metadata.Add(pm.entry.Key, pm.entry.Value, pm.entry.Visibility)
			continue
		}
		p, ok := working[pm.prop]
		if !ok {
			return nil, ts, notFound(pm.prop)
		}
		p.Metadata = p.Metadata.Clone()
		p.Metadata.Add(pm.entry.Key, pm.entry.Value, pm.entry.Visibility)
		working[pm.prop] = p
		changed = append(changed, pm.prop)
	}
	seen := make(map[core.PropertyKey]bool)
	for _, key := range changed {
		if seen[key] {
			continue
		}
		seen[key] = true
		ms = append(ms, core.AddPropertyMetadataMutation{Time: ts, Property: key, Metadata: working[key].Metadata})
	}

	// 2. Visibility alterations: soft delete the old cell, add a copy under
	// the new visibility one millisecond later.
	valueTs := ts
	for _, pa := range b.alterations {
		p, ok := working[pa.prop]
		if !ok {
			return nil, ts, notFound(pa.prop)
		}
		if pa.visibility == pa.prop.Visibility {
			continue
		}
		moved := core.PropertyKey{Key: pa.prop.Key, Name: pa.prop.Name, Visibility: pa.visibility}
		ms = append(ms,
			core.SoftDeletePropertyMutation{Time: ts, Property: pa.prop},
			core.AddPropertyValueMutation{Time: ts + 1, Property: moved, Value: p.Value, Metadata: p.Metadata},
		)
		delete(working, pa.prop)
		p.Visibility = pa.visibility
		p.Timestamp = ts + 1
		working[moved] = p
		valueTs = b.engine.after(ts, 1)
	}

	// 3. Values
	for _, add := range adds {
		ms = append(ms, core.AddPropertyValueMutation{Time: valueTs, Property: add.key, Value: add.value, Metadata: add.metadata})
	}
	exists := func(key core.PropertyKey) bool {
		_, ok := working[key]
		return ok || lastAdd(key) >= 0
	}
	for _, key := range b.deletes {
		if !exists(key) {
			return nil, ts, notFound(key)
		}
		ms = append(ms, core.DeletePropertyMutation{Time: valueTs, Property: key})
	}
	for _, key := range b.softDeletes {
		if !exists(key) {
			return nil, ts, notFound(key)
		}
		ms = append(ms, core.SoftDeletePropertyMutation{Time: valueTs, Property: key})
	}
	return ms, valueTs, nil
}

func (b *ElementBuilder) extendedDataMutations(ts int64) []core.Mutation {
	var ms []core.Mutation
	for _, d := range b.extendedData {
		ms = append(ms, core.AddExtendedDataMutation{
			Time: ts, TableName: d.table, RowID: d.row, Column: d.column, Key: d.key, Value: d.value, Visibility: d.visibility,
		})
	}
	for _, d := range b.extendedDeletes {
		ms = append(ms, core.DeleteExtendedDataMutation{
			Time: ts, TableName: d.table, RowID: d.row, Column: d.column, Key: d.key, Visibility: d.visibility,
		})
	}
	return ms
}
