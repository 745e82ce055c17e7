package engine

import (
	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// ElementRef addresses an element in one of the two namespaces.
type ElementRef struct {
	Type core.ElementType
	ID   string
}

// VertexRef returns the reference of vertex id.
func VertexRef(id string) ElementRef {
	return ElementRef{Type: core.ElementTypeVertex, ID: id}
}

// EdgeRef returns the reference of edge id.
func EdgeRef(id string) ElementRef {
	return ElementRef{Type: core.ElementTypeEdge, ID: id}
}

// Element is the read view common to vertices and edges. Views are
// immutable snapshots taken with the fetch hints, end time and
// authorizations of the read that produced them.
type Element interface {
	Ref() ElementRef
	ID() string
	Visibility() visibility.Visibility
	Timestamp() int64
	CreatedAt() int64
	Properties() []core.Property
	Property(key, name string, vis visibility.Visibility) (core.Property, error)
	PropertyValue(name string) any
	HiddenVisibilities() []visibility.Visibility
	IsHidden() (bool, error)
	FetchHints() core.FetchHints
	Authorizations() visibility.Authorizations
	ExtendedDataTableNames() ([]string, error)
	ExtendedData(tableName string) ([]core.ExtendedDataRow, error)
	State() *core.ElementState
}

type element struct {
	engine  *Engine
	state   *core.ElementState
	hints   core.FetchHints
	endTime int64
	auths   visibility.Authorizations
}

func (el *element) Ref() ElementRef {
	return ElementRef{Type: el.state.Type, ID: el.state.ID}
}

func (el *element) ID() string                        { return el.state.ID }
func (el *element) Visibility() visibility.Visibility { return el.state.Visibility }
func (el *element) Timestamp() int64                  { return el.state.Timestamp }
func (el *element) CreatedAt() int64                  { return el.state.CreatedAt }
func (el *element) FetchHints() core.FetchHints       { return el.hints }

func (el *element) Authorizations() visibility.Authorizations {
	return el.auths
}

// Properties returns the materialized properties ordered by name, key and
// visibility.
func (el *element) Properties() []core.Property {
	return append([]core.Property(nil), el.state.Properties...)
}

// Property returns one property by identity. A name outside the fetch hints
// is a *core.MissingFetchHintError and an absent property a
// *core.NotFoundError.
func (el *element) Property(key, name string, vis visibility.Visibility) (core.Property, error) {
	if err := el.hints.CheckProperty(name); err != nil {
		return core.Property{}, err
	}
	return el.state.FindProperty(core.PropertyKey{Key: key, Name: name, Visibility: vis})
}

// PropertyValue returns the value of the first property named name, or nil.
func (el *element) PropertyValue(name string) any {
	for _, p := range el.state.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return nil
}

func (el *element) HiddenVisibilities() []visibility.Visibility {
	return append([]visibility.Visibility(nil), el.state.Lifecycle.HiddenBy...)
}

// IsHidden reports whether the element is hidden from the authorizations it
// was read with. Only possible when hidden elements were fetched.
func (el *element) IsHidden() (bool, error) {
	return el.state.Lifecycle.HiddenFor(el.engine.evaluator, el.auths)
}

func (el *element) ExtendedDataTableNames() ([]string, error) {
	if err := el.hints.CheckExtendedDataTableNames("ExtendedDataTableNames"); err != nil {
		return nil, err
	}
	return el.engine.extended.TableNames(el.state.Type, el.state.ID, el.auths)
}

func (el *element) ExtendedData(tableName string) ([]core.ExtendedDataRow, error) {
	return el.engine.extended.Table(el.state.Type, el.state.ID, tableName, el.auths)
}

// State returns the underlying projection. Callers must not modify it.
func (el *element) State() *core.ElementState {
	return el.state
}

// Vertex is the read view of a vertex.
type Vertex struct {
	element
}

// ConceptType returns the vertex concept type.
func (v *Vertex) ConceptType() string {
	return v.state.ConceptType
}

// EdgeInfos returns the edges of the vertex in direction dir, optionally
// restricted to labels. Requires IncludeEdgeRefs.
func (v *Vertex) EdgeInfos(dir core.Direction, labels ...string) ([]EdgeInfo, error) {
	if err := v.hints.CheckEdgeRefs("EdgeInfos"); err != nil {
		return nil, err
	}
	edges, err := v.engine.vertexEdges(v.state.ID, dir, labels, edgeRefHints(v.hints), v.endTime, v.auths)
	if err != nil {
		return nil, err
	}
	infos := make([]EdgeInfo, 0, len(edges))
	for _, e := range edges {
		infos = append(infos, newEdgeInfo(v.state.ID, e))
	}
	return infos, nil
}

// EdgeIDs returns the ids of the vertex edges. Requires IncludeEdgeRefs.
func (v *Vertex) EdgeIDs(dir core.Direction, labels ...string) ([]string, error) {
	infos, err := v.EdgeInfos(dir, labels...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.EdgeID)
	}
	return ids, nil
}

// AdjacentVertexIDs returns, without duplicates, the ids at the other end of
// the vertex edges. Requires IncludeEdgeRefs.
func (v *Vertex) AdjacentVertexIDs(dir core.Direction, labels ...string) ([]string, error) {
	if err := v.hints.CheckEdgeRefs("AdjacentVertexIDs"); err != nil {
		return nil, err
	}
	infos, err := v.EdgeInfos(dir, labels...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(infos))
	var ids []string
	for _, info := range infos {
		if _, ok := seen[info.OtherVertexID]; ok {
			continue
		}
		seen[info.OtherVertexID] = struct{}{}
		ids = append(ids, info.OtherVertexID)
	}
	return ids, nil
}

// Edges returns the full edge views of the vertex. Requires IncludeEdgeRefs.
func (v *Vertex) Edges(dir core.Direction, hints core.FetchHints, labels ...string) ([]*Edge, error) {
	if err := v.hints.CheckEdgeRefs("Edges"); err != nil {
		return nil, err
	}
	states, err := v.engine.vertexEdges(v.state.ID, dir, labels, hints, v.endTime, v.auths)
	if err != nil {
		return nil, err
	}
	edges := make([]*Edge, 0, len(states))
	for _, s := range states {
		edges = append(edges, v.engine.newEdge(s, hints, v.endTime, v.auths))
	}
	return edges, nil
}

// PrepareMutation returns a builder seeded with the vertex current state.
func (v *Vertex) PrepareMutation() *VertexBuilder {
	b := v.engine.PrepareVertex(v.state.ID, v.state.Visibility, v.state.ConceptType)
	b.existing = true
	return b
}

// Edge is the read view of an edge.
type Edge struct {
	element
}

// Label returns the edge label.
func (e *Edge) Label() string {
	return e.state.Label
}

// OutVertexID returns the id of the vertex the edge starts from.
func (e *Edge) OutVertexID() string {
	return e.state.OutVertexID
}

// InVertexID returns the id of the vertex the edge points to.
func (e *Edge) InVertexID() string {
	return e.state.InVertexID
}

// VertexID returns the endpoint in direction dir: DirectionOut is the
// source, DirectionIn the destination.
func (e *Edge) VertexID(dir core.Direction) (string, error) {
	switch dir {
	case core.DirectionOut:
		return e.state.OutVertexID, nil
	case core.DirectionIn:
		return e.state.InVertexID, nil
	}
	return "", invalidArgument("edge endpoint direction must be out or in, got %s", dir)
}

// OtherVertexID returns the endpoint opposite to vertexID.
func (e *Edge) OtherVertexID(vertexID string) string {
	return e.state.OtherVertexID(vertexID)
}

// PrepareMutation returns a builder seeded with the edge current state.
func (e *Edge) PrepareMutation() *EdgeBuilder {
	b := e.engine.PrepareEdge(e.state.ID, e.state.OutVertexID, e.state.InVertexID, e.state.Label, e.state.Visibility)
	b.existing = true
	return b
}

func (e *Engine) newVertex(s *core.ElementState, hints core.FetchHints, endTime int64, auths visibility.Authorizations) *Vertex {
	return &Vertex{element{engine: e, state: s, hints: hints, endTime: endTime, auths: auths}}
}

func (e *Engine) newEdge(s *core.ElementState, hints core.FetchHints, endTime int64, auths visibility.Authorizations) *Edge {
	return &Edge{element{engine: e, state: s, hints: hints, endTime: endTime, auths: auths}}
}

// edgeRefHints keeps only the parts of hints that decide which edges are
// visible: no properties are materialized for edge refs.
func edgeRefHints(hints core.FetchHints) core.FetchHints {
	return core.FetchHints{IncludeHidden: hints.IncludeHidden}
}
