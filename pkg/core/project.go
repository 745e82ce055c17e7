package core

import (
	"cmp"
	"slices"

	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// ProjectOptions control how a mutation log is folded into a read view.
type ProjectOptions struct {
	FetchHints FetchHints
	// EndTime truncates the log: mutations after it are ignored.
	// Zero means Latest.
	EndTime        int64
	Authorizations visibility.Authorizations
	// Evaluator evaluates visibility expressions. Nil uses the package
	// level evaluator of the visibility package.
	Evaluator *visibility.Evaluator
}

func (o ProjectOptions) endTime() int64 {
	if o.EndTime <= 0 {
		return Latest
	}
	return o.EndTime
}

// ElementState is the folded view of one element.
type ElementState struct {
	ID          string
	Type        ElementType
	Visibility  visibility.Visibility
	CreatedAt   int64
	Timestamp   int64
	ConceptType string
	Label       string
	OutVertexID string
	InVertexID  string
	// Properties are ordered by name, key and visibility.
	Properties []Property
	Lifecycle  Lifecycle
}

// PropertiesNamed returns the properties matching name and, when key is not
// empty, key.
func (s *ElementState) PropertiesNamed(key, name string) []Property {
	var out []Property
	for _, p := range s.Properties {
		if p.Name == name && (key == "" || p.Key == key) {
			out = append(out, p)
		}
	}
	return out
}

// FindProperty returns the property with the exact identity. A missing
// property is a *NotFoundError.
func (s *ElementState) FindProperty(id PropertyKey) (Property, error) {
	for _, p := range s.Properties {
		if p.Identity() == id {
			return p, nil
		}
	}
	return Property{}, &NotFoundError{What: "property", ID: id.String()}
}

// OtherVertexID returns the endpoint opposite to vertexID.
func (s *ElementState) OtherVertexID(vertexID string) string {
	if s.OutVertexID == vertexID {
		return s.InVertexID
	}
	return s.OutVertexID
}

// folded is the raw result of a fold before any visibility filtering.
type folded struct {
	exists bool
	state  ElementState
	props  map[PropertyKey]*Property
}

// fold replays the mutations with a timestamp at or before endTime.
func fold(id string, typ ElementType, ms []Mutation, endTime int64) folded {
	f := folded{
		state: ElementState{ID: id, Type: typ},
		props: make(map[PropertyKey]*Property),
	}

	// Hard deletes erase earlier mutations of the cell at every end time, so
	// they are collected from the full log.
	erasedUntil := make(map[PropertyKey]int64)
	for _, m := range ms {
		if d, ok := m.(DeletePropertyMutation); ok && d.Time > erasedUntil[d.Property] {
			erasedUntil[d.Property] = d.Time
		}
	}
	erased := func(key PropertyKey, ts int64) bool {
		until, ok := erasedUntil[key]
		return ok && ts <= until
	}

	softDeletedAt := make(map[PropertyKey]int64)
	lifecycle := Lifecycle{Kind: LifecycleLive}

	for _, m := range ms {
		ts := m.Timestamp()
		if ts > endTime {
			continue
		}
		// A creation after a tombstone starts a new generation of the element.
		if _, ok := m.(AlterVisibilityMutation); ok && lifecycle.Kind == LifecycleSoftDeleted {
			f = folded{
				state: ElementState{ID: id, Type: typ},
				props: make(map[PropertyKey]*Property),
			}
			softDeletedAt = make(map[PropertyKey]int64)
			lifecycle = Lifecycle{Kind: LifecycleLive}
		}
		if ts > f.state.Timestamp {
			f.state.Timestamp = ts
		}
		lifecycle = lifecycle.Next(m)

		switch m := m.(type) {
		case AlterVisibilityMutation:
			if !f.exists {
				f.exists = true
				f.state.CreatedAt = m.Time
			}
			f.state.Visibility = m.Visibility
		case AlterConceptTypeMutation:
			f.state.ConceptType = m.ConceptType
		case AlterEdgeLabelMutation:
			f.state.Label = m.Label
		case EdgeSetupMutation:
			f.state.OutVertexID = m.OutVertexID
			f.state.InVertexID = m.InVertexID

		case AddPropertyValueMutation:
			if erased(m.Property, m.Time) {
				continue
			}
			if sd, ok := softDeletedAt[m.Property]; ok && m.Time <= sd {
				continue
			}
			cur, ok := f.props[m.Property]
			if ok && cur.Timestamp > m.Time {
				continue
			}
			// Hide marks older than the new value do not apply to it.
			f.props[m.Property] = &Property{
				Key:        m.Property.Key,
				Name:       m.Property.Name,
				Value:      m.Value,
				Visibility: m.Property.Visibility,
				Metadata:   m.Metadata.Clone(),
				Timestamp:  m.Time,
			}
		case AddPropertyMetadataMutation:
			if erased(m.Property, m.Time) {
				continue
			}
			if cur, ok := f.props[m.Property]; ok {
				cur.Metadata = m.Metadata.Clone()
			}
		case DeletePropertyMutation:
			delete(f.props, m.Property)
		case SoftDeletePropertyMutation:
			if erased(m.Property, m.Time) {
				continue
			}
			if m.Time > softDeletedAt[m.Property] {
				softDeletedAt[m.Property] = m.Time
			}
			if cur, ok := f.props[m.Property]; ok && cur.Timestamp <= m.Time {
				delete(f.props, m.Property)
			}
		case MarkPropertyHiddenMutation:
			if erased(m.Property, m.Time) {
				continue
			}
			if cur, ok := f.props[m.Property]; ok && !slices.Contains(cur.HiddenVisibilities, m.HiddenVisibility) {
				cur.HiddenVisibilities = append(slices.Clone(cur.HiddenVisibilities), m.HiddenVisibility)
			}
		case MarkPropertyVisibleMutation:
			if erased(m.Property, m.Time) {
				continue
			}
			if cur, ok := f.props[m.Property]; ok {
				cur.HiddenVisibilities = slices.DeleteFunc(slices.Clone(cur.HiddenVisibilities), func(v visibility.Visibility) bool {
					return v == m.HiddenVisibility
				})
			}
		}
	}

	f.state.Lifecycle = lifecycle
	return f
}

func sortProperties(props []Property) {
	slices.SortFunc(props, func(a, b Property) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Key, b.Key),
			cmp.Compare(a.Visibility, b.Visibility),
		)
	})
}

// Project folds a mutation log into the view seen by opts.Authorizations at
// opts.EndTime. It returns nil, without error, when the element does not
// exist at that time, when its visibility is not satisfied, when it is
// soft-deleted, or when it is hidden from the reader and hidden elements were
// not requested. Properties are filtered by the same three rules and by the
// fetch hints. A malformed visibility expression aborts the fold with a
// *visibility.ParseError.
func Project(id string, typ ElementType, ms []Mutation, opts ProjectOptions) (*ElementState, error) {
	f := fold(id, typ, ms, opts.endTime())
	if !f.exists {
		return nil, nil
	}

	ok, err := canRead(opts.Evaluator, f.state.Visibility, opts.Authorizations)
	if err != nil || !ok {
		return nil, err
	}
	if f.state.Lifecycle.Kind == LifecycleSoftDeleted {
		return nil, nil
	}
	if !opts.FetchHints.IncludeHidden {
		hidden, err := f.state.Lifecycle.HiddenFor(opts.Evaluator, opts.Authorizations)
		if err != nil || hidden {
			return nil, err
		}
	}

	state := f.state
	state.Properties = make([]Property, 0, len(f.props))
	for _, p := range f.props {
		if !opts.FetchHints.IncludesProperty(p.Name) {
			continue
		}
		ok, err := canRead(opts.Evaluator, p.Visibility, opts.Authorizations)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !opts.FetchHints.IncludeHidden {
			hidden, err := p.IsHidden(opts.Evaluator, opts.Authorizations)
			if err != nil {
				return nil, err
			}
			if hidden {
				continue
			}
		}
		meta, err := p.Metadata.Filter(opts.Evaluator, opts.Authorizations)
		if err != nil {
			return nil, err
		}
		out := p.clone()
		out.Metadata = meta
		state.Properties = append(state.Properties, out)
	}
	sortProperties(state.Properties)
	return &state, nil
}

// ProjectUnfiltered folds a mutation log without evaluating any visibility
// expression: every property that is not deleted is returned, hidden or
// not. It returns nil when the element does not exist at endTime.
func ProjectUnfiltered(id string, typ ElementType, ms []Mutation, endTime int64) *ElementState {
	if endTime <= 0 {
		endTime = Latest
	}
	f := fold(id, typ, ms, endTime)
	if !f.exists {
		return nil
	}
	state := f.state
	state.Properties = make([]Property, 0, len(f.props))
	for _, p := range f.props {
		state.Properties = append(state.Properties, p.clone())
	}
	sortProperties(state.Properties)
	return &state
}

// Endpoints returns every vertex id the edge log has ever pointed at.
func Endpoints(ms []Mutation) []string {
	var ids []string
	for _, m := range ms {
		if s, ok := m.(EdgeSetupMutation); ok {
			ids = append(ids, s.OutVertexID, s.InVertexID)
		}
	}
	return sortedUnique(ids)
}
