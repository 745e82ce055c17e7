package engine

import (
	"errors"
	"slices"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// MarkVertexHidden hides a vertex from readers whose authorizations satisfy
// hidden: its properties first, then its edges, then the vertex. Edges that
// are already hidden from auths are not revisited. Hiding is reversible with
// MarkVertexVisible.
func (e *Engine) MarkVertexHidden(id string, hidden visibility.Visibility, auths visibility.Authorizations) error {
	return e.markVertex(id, hidden, true, auths)
}

// MarkVertexVisible removes a hide mark set by MarkVertexHidden. Edges are
// fetched with hidden ones included so that they can be restored too.
func (e *Engine) MarkVertexVisible(id string, hidden visibility.Visibility, auths visibility.Authorizations) error {
	return e.markVertex(id, hidden, false, auths)
}

func (e *Engine) markVertex(id string, hidden visibility.Visibility, hide bool, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeVertex, id, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	ts := e.clock.Next()
	var errs []error

	// 1. Properties
	if ms := markProperties(state, hidden, hide, ts); len(ms) > 0 {
		if !e.appendExisting(core.ElementTypeVertex, id, ms...) {
			return nil
		}
		errs = append(errs, e.indexPropertyMarks(state, ms))
	}

	// 2. Edges
	edgeHints := core.FetchHintsAll
	if !hide {
		edgeHints = core.FetchHintsAllIncludingHidden
	}
	edges, err := e.vertexEdges(id, core.DirectionBoth, nil, edgeHints, core.Latest, auths)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		errs = append(errs, e.markElement(edge, hidden, hide, ts))
	}

	// 3. Vertex
	errs = append(errs, e.markElementOnly(state, hidden, hide, ts))
	e.logger.Debug("vertex hide mark changed", "id", id, "hidden", hide, "visibility", hidden, "edges", len(edges))
	return errors.Join(errs...)
}

// MarkEdgeHidden hides an edge and its properties from readers whose
// authorizations satisfy hidden.
func (e *Engine) MarkEdgeHidden(id string, hidden visibility.Visibility, auths visibility.Authorizations) error {
	return e.markEdge(id, hidden, true, auths)
}

// MarkEdgeVisible removes a hide mark set by MarkEdgeHidden.
func (e *Engine) MarkEdgeVisible(id string, hidden visibility.Visibility, auths visibility.Authorizations) error {
	return e.markEdge(id, hidden, false, auths)
}

func (e *Engine) markEdge(id string, hidden visibility.Visibility, hide bool, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeEdge, id, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	return e.markElement(state, hidden, hide, e.clock.Next())
}

// markElement applies the hide mark change to the properties of state and
// then to the element.
func (e *Engine) markElement(state *core.ElementState, hidden visibility.Visibility, hide bool, ts int64) error {
	var errs []error
	if ms := markProperties(state, hidden, hide, ts); len(ms) > 0 {
		if !e.appendExisting(state.Type, state.ID, ms...) {
			return nil
		}
		errs = append(errs, e.indexPropertyMarks(state, ms))
	}
	errs = append(errs, e.markElementOnly(state, hidden, hide, ts))
	return errors.Join(errs...)
}

func (e *Engine) markElementOnly(state *core.ElementState, hidden visibility.Visibility, hide bool, ts int64) error {
	var m core.Mutation = core.MarkVisibleMutation{Time: ts, HiddenVisibility: hidden}
	if hide {
		m = core.MarkHiddenMutation{Time: ts, HiddenVisibility: hidden}
	}
	if !e.appendExisting(state.Type, state.ID, m) {
		return nil
	}

	var err error
	if hide {
		err = e.index.MarkElementHidden(state.Type, state.ID, hidden)
	} else {
		err = e.index.MarkElementVisible(state.Type, state.ID, hidden)
	}
	if err != nil {
		err = e.indexFailed("mark_element", err)
	}
	e.fire(Event{Kind: markEventKind(state.Type, hide), ElementType: state.Type, ElementID: state.ID, Timestamp: ts, HiddenVisibility: hidden})
	return err
}

func markEventKind(typ core.ElementType, hide bool) EventKind {
	switch {
	case typ == core.ElementTypeEdge && hide:
		return EventMarkHiddenEdge
	case typ == core.ElementTypeEdge:
		return EventMarkVisibleEdge
	case hide:
		return EventMarkHiddenVertex
	}
	return EventMarkVisibleVertex
}

// markProperties builds the property mark mutations of a cascade. Hiding
// skips properties already carrying the mark; unhiding only touches
// properties that carry it.
func markProperties(state *core.ElementState, hidden visibility.Visibility, hide bool, ts int64) []core.Mutation {
	var ms []core.Mutation
	for _, p := range state.Properties {
		marked := slices.Contains(p.HiddenVisibilities, hidden)
		switch {
		case hide && !marked:
			ms = append(ms, core.MarkPropertyHiddenMutation{Time: ts, Property: p.Identity(), HiddenVisibility: hidden})
		case !hide && marked:
			ms = append(ms, core.MarkPropertyVisibleMutation{Time: ts, Property: p.Identity(), HiddenVisibility: hidden})
		}
	}
	return ms
}

func (e *Engine) indexPropertyMarks(state *core.ElementState, ms []core.Mutation) error {
	var errs []error
	for _, m := range ms {
		var (
			err error
			ev  = Event{ElementType: state.Type, ElementID: state.ID, Timestamp: m.Timestamp()}
		)
		switch m := m.(type) {
		case core.MarkPropertyHiddenMutation:
			err = e.index.MarkPropertyHidden(state.Type, state.ID, m.Property, m.HiddenVisibility)
			ev.Kind, ev.Property, ev.HiddenVisibility = EventMarkPropertyHidden, m.Property, m.HiddenVisibility
		case core.MarkPropertyVisibleMutation:
			err = e.index.MarkPropertyVisible(state.Type, state.ID, m.Property, m.HiddenVisibility)
			ev.Kind, ev.Property, ev.HiddenVisibility = EventMarkPropertyVisible, m.Property, m.HiddenVisibility
		default:
			continue
		}
		if err != nil {
			errs = append(errs, e.indexFailed("mark_property", err))
		}
		e.fire(ev)
	}
	return errors.Join(errs...)
}
