package engine

import (
	"errors"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// Cascades
// Deleting or hiding a vertex touches its properties, its edges and the
// vertex itself, in that order. Cascades are not atomic: a concurrent reader
// may observe a partially applied cascade. Every step is idempotent, and a
// dependent element that is already gone is skipped.

var (
	// refHintsWithHidden finds elements whatever their hide marks, without
	// materializing properties.
	refHintsWithHidden = core.FetchHints{IncludeHidden: true}
)

// appendExisting appends ms to the row of id and reports whether the row
// still existed. Rows are never created here.
func (e *Engine) appendExisting(typ core.ElementType, id string, ms ...core.Mutation) bool {
	row, ok := e.table(typ).Get(id)
	if !ok {
		return false
	}
	row.Append(ms...)
	e.appended(typ, ms)
	return true
}

// DeleteVertex hard-deletes a vertex: its edges (both directions, hidden
// ones included), its extended data, then the row itself. A vertex that does
// not exist or is not readable with auths is left alone and no error is
// returned.
func (e *Engine) DeleteVertex(id string, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeVertex, id, refHintsWithHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}

	var errs []error

	// 1. Edges
	edges, err := e.vertexEdges(id, core.DirectionBoth, nil, refHintsWithHidden, core.Latest, auths)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		errs = append(errs, e.removeEdge(edge.ID))
	}
	tombstoned := e.tombstonedEdges(id, auths)
	for _, edgeID := range tombstoned {
		errs = append(errs, e.removeEdge(edgeID))
	}

	// 2. Extended data
	errs = append(errs, e.removeExtendedData(core.ElementTypeVertex, id))

	// 3. Row
	if _, ok := e.vertices.Remove(id); !ok {
		return errors.Join(errs...)
	}
	metrics.DeletesTotal.WithLabelValues(e.opts.Name, core.ElementTypeVertex.String(), "hard").Inc()
	e.updateRowGauges()
	e.logger.Debug("vertex deleted", "id", id, "edges", len(edges), "soft_deleted_edges", len(tombstoned))

	// 4. Index and event
	if err := e.index.DeleteElement(core.ElementTypeVertex, id); err != nil {
		errs = append(errs, e.indexFailed("delete_element", err))
	}
	e.fire(Event{Kind: EventDeleteVertex, ElementType: core.ElementTypeVertex, ElementID: id, Timestamp: e.clock.Current()})
	return errors.Join(errs...)
}

// tombstonedEdges returns the soft-deleted edges still attached to vertexID
// whose visibility auths can read. Reads never return them, so the vertex
// cascade collects them from the unfiltered logs.
func (e *Engine) tombstonedEdges(vertexID string, auths visibility.Authorizations) []string {
	var out []string
	for _, edgeID := range e.adjacency.EdgeIDs(vertexID, core.DirectionBoth) {
		row, ok := e.edges.Get(edgeID)
		if !ok {
			continue
		}
		s := row.Unfiltered(core.Latest)
		if s == nil || s.Lifecycle.Kind != core.LifecycleSoftDeleted || !attached(s, vertexID, core.DirectionBoth) {
			continue
		}
		if ok, err := e.evaluator.CanRead(s.Visibility, auths); err != nil || !ok {
			continue
		}
		out = append(out, edgeID)
	}
	return out
}

// DeleteEdge hard-deletes an edge and its extended data. An edge that does
// not exist or is not readable with auths is left alone.
func (e *Engine) DeleteEdge(id string, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeEdge, id, refHintsWithHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	return e.removeEdge(id)
}

// removeEdge physically removes an edge row. Removing a missing row is a
// no-op without events.
func (e *Engine) removeEdge(id string) error {
	var errs []error
	errs = append(errs, e.removeExtendedData(core.ElementTypeEdge, id))

	row, ok := e.edges.Remove(id)
	if !ok {
		return errors.Join(errs...)
	}
	e.adjacency.Remove(id, core.Endpoints(row.Mutations())...)
	metrics.DeletesTotal.WithLabelValues(e.opts.Name, core.ElementTypeEdge.String(), "hard").Inc()
	e.updateRowGauges()

	if err := e.index.DeleteElement(core.ElementTypeEdge, id); err != nil {
		errs = append(errs, e.indexFailed("delete_element", err))
	}
	e.fire(Event{Kind: EventDeleteEdge, ElementType: core.ElementTypeEdge, ElementID: id, Timestamp: e.clock.Current()})
	return errors.Join(errs...)
}

func (e *Engine) removeExtendedData(typ core.ElementType, id string) error {
	var errs []error
	for _, rowID := range e.extended.RemoveElement(typ, id) {
		if err := e.index.DeleteExtendedData(rowID, "", "", ""); err != nil {
			errs = append(errs, e.indexFailed("delete_extended_data", err))
		}
	}
	return errors.Join(errs...)
}

// SoftDeleteVertex tombstones a vertex at timestamp (0 means now): every
// readable property first, then every incident edge at the same timestamp,
// then the vertex. Reads at an end time before the timestamp still see the
// full prior state.
func (e *Engine) SoftDeleteVertex(id string, timestamp int64, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeVertex, id, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	ts := e.timestamp(timestamp)

	// 1. Properties
	if ms := softDeleteProperties(state, ts); len(ms) > 0 {
		if !e.appendExisting(core.ElementTypeVertex, id, ms...) {
			return nil
		}
	}

	// 2. Edges
	edges, err := e.vertexEdges(id, core.DirectionBoth, nil, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil {
		return err
	}
	var errs []error
	for _, edge := range edges {
		errs = append(errs, e.softDeleteEdge(edge, ts))
	}

	// 3. Vertex
	if !e.appendExisting(core.ElementTypeVertex, id, core.SoftDeleteMutation{Time: ts}) {
		return errors.Join(errs...)
	}
	metrics.DeletesTotal.WithLabelValues(e.opts.Name, core.ElementTypeVertex.String(), "soft").Inc()
	e.logger.Debug("vertex soft deleted", "id", id, "timestamp", ts, "edges", len(edges))

	if err := e.index.DeleteElement(core.ElementTypeVertex, id); err != nil {
		errs = append(errs, e.indexFailed("delete_element", err))
	}
	e.fire(Event{Kind: EventSoftDeleteVertex, ElementType: core.ElementTypeVertex, ElementID: id, Timestamp: ts})
	return errors.Join(errs...)
}

// SoftDeleteEdge tombstones an edge and its readable properties at timestamp
// (0 means now).
func (e *Engine) SoftDeleteEdge(id string, timestamp int64, auths visibility.Authorizations) error {
	if err := e.checkAuthorizations(auths); err != nil {
		return err
	}
	state, err := e.project(core.ElementTypeEdge, id, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil || state == nil {
		return err
	}
	return e.softDeleteEdge(state, e.timestamp(timestamp))
}

func (e *Engine) softDeleteEdge(state *core.ElementState, ts int64) error {
	ms := append(softDeleteProperties(state, ts), core.SoftDeleteMutation{Time: ts})
	if !e.appendExisting(core.ElementTypeEdge, state.ID, ms...) {
		return nil
	}
	metrics.DeletesTotal.WithLabelValues(e.opts.Name, core.ElementTypeEdge.String(), "soft").Inc()

	var err error
	if ierr := e.index.DeleteElement(core.ElementTypeEdge, state.ID); ierr != nil {
		err = e.indexFailed("delete_element", ierr)
	}
	e.fire(Event{Kind: EventSoftDeleteEdge, ElementType: core.ElementTypeEdge, ElementID: state.ID, Timestamp: ts})
	return err
}

func softDeleteProperties(state *core.ElementState, ts int64) []core.Mutation {
	ms := make([]core.Mutation, 0, len(state.Properties))
	for _, p := range state.Properties {
		ms = append(ms, core.SoftDeletePropertyMutation{Time: ts, Property: p.Identity()})
	}
	return ms
}
