package engine

import (
	"fmt"
	"slices"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// Graph read model
// Vertices and edges live in two tables of mutation logs. A read folds the
// log of one element with the caller's fetch hints, end time and
// authorizations; a nil result means "absent as far as the caller can tell".
// Vertex adjacency is answered by the adjacency index and every candidate
// edge is folded and re-checked before it is returned.

func (e *Engine) project(typ core.ElementType, id string, hints core.FetchHints, endTime int64, auths visibility.Authorizations) (*core.ElementState, error) {
	row, ok := e.table(typ).Get(id)
	if !ok {
		return nil, nil
	}
	state, err := row.Project(core.ProjectOptions{
		FetchHints:     hints,
		EndTime:        endTime,
		Authorizations: auths,
		Evaluator:      e.evaluator,
	})
	if err != nil {
		return nil, fmt.Errorf("read %s %q: %w", typ, id, err)
	}
	return state, nil
}

// GetVertex returns the current view of vertex id, or nil when it does not
// exist or is not readable with auths.
func (e *Engine) GetVertex(id string, hints core.FetchHints, auths visibility.Authorizations) (*Vertex, error) {
	return e.GetVertexAt(id, hints, core.Latest, auths)
}

// GetVertexAt returns vertex id as it was at endTime (milliseconds).
func (e *Engine) GetVertexAt(id string, hints core.FetchHints, endTime int64, auths visibility.Authorizations) (*Vertex, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	state, err := e.project(core.ElementTypeVertex, id, hints, endTime, auths)
	if err != nil || state == nil {
		return nil, err
	}
	return e.newVertex(state, hints, endTime, auths), nil
}

// GetVertices returns the readable vertices among ids, in the order given.
func (e *Engine) GetVertices(ids []string, hints core.FetchHints, auths visibility.Authorizations) ([]*Vertex, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	var out []*Vertex
	for _, id := range ids {
		state, err := e.project(core.ElementTypeVertex, id, hints, core.Latest, auths)
		if err != nil {
			return nil, err
		}
		if state != nil {
			out = append(out, e.newVertex(state, hints, core.Latest, auths))
		}
	}
	return out, nil
}

// Vertices returns every readable vertex ordered by id.
func (e *Engine) Vertices(hints core.FetchHints, auths visibility.Authorizations) ([]*Vertex, error) {
	return e.GetVertices(e.vertices.IDs(), hints, auths)
}

// GetEdge returns the current view of edge id, or nil.
func (e *Engine) GetEdge(id string, hints core.FetchHints, auths visibility.Authorizations) (*Edge, error) {
	return e.GetEdgeAt(id, hints, core.Latest, auths)
}

// GetEdgeAt returns edge id as it was at endTime (milliseconds).
func (e *Engine) GetEdgeAt(id string, hints core.FetchHints, endTime int64, auths visibility.Authorizations) (*Edge, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	state, err := e.project(core.ElementTypeEdge, id, hints, endTime, auths)
	if err != nil || state == nil {
		return nil, err
	}
	return e.newEdge(state, hints, endTime, auths), nil
}

// GetEdges returns the readable edges among ids, in the order given.
func (e *Engine) GetEdges(ids []string, hints core.FetchHints, auths visibility.Authorizations) ([]*Edge, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, err
	}
	var out []*Edge
	for _, id := range ids {
		state, err := e.project(core.ElementTypeEdge, id, hints, core.Latest, auths)
		if err != nil {
			return nil, err
		}
		if state != nil {
			out = append(out, e.newEdge(state, hints, core.Latest, auths))
		}
	}
	return out, nil
}

// Edges returns every readable edge ordered by id.
func (e *Engine) Edges(hints core.FetchHints, auths visibility.Authorizations) ([]*Edge, error) {
	return e.GetEdges(e.edges.IDs(), hints, auths)
}

// GetVertexEdges returns the edges of vertexID in direction dir, optionally
// restricted to labels. The vertex itself must be readable with hints.
func (e *Engine) GetVertexEdges(vertexID string, dir core.Direction, hints core.FetchHints, auths visibility.Authorizations, labels ...string) ([]*Edge, error) {
	v, err := e.GetVertex(vertexID, hints, auths)
	if err != nil || v == nil {
		return nil, err
	}
	states, err := e.vertexEdges(vertexID, dir, labels, hints, core.Latest, auths)
	if err != nil {
		return nil, err
	}
	edges := make([]*Edge, 0, len(states))
	for _, s := range states {
		edges = append(edges, e.newEdge(s, hints, core.Latest, auths))
	}
	return edges, nil
}

// vertexEdges folds every candidate edge of vertexID and keeps those that
// are readable and currently attached to vertexID in direction dir.
func (e *Engine) vertexEdges(vertexID string, dir core.Direction, labels []string, hints core.FetchHints, endTime int64, auths visibility.Authorizations) ([]*core.ElementState, error) {
	var out []*core.ElementState
	for _, edgeID := range e.adjacency.EdgeIDs(vertexID, dir) {
		state, err := e.project(core.ElementTypeEdge, edgeID, hints, endTime, auths)
		if err != nil {
			return nil, err
		}
		if state == nil || !attached(state, vertexID, dir) {
			continue
		}
		if len(labels) > 0 && !slices.Contains(labels, state.Label) {
			continue
		}
		out = append(out, state)
	}
	return out, nil
}

func attached(s *core.ElementState, vertexID string, dir core.Direction) bool {
	switch dir {
	case core.DirectionOut:
		return s.OutVertexID == vertexID
	case core.DirectionIn:
		return s.InVertexID == vertexID
	}
	return s.OutVertexID == vertexID || s.InVertexID == vertexID
}
