// Package fixture loads graphs described in YAML into an engine.
//
// A fixture lists the authorization labels to register, the vertices and
// edges with their properties and extended data, and optional hide marks:
//
//	authorizations: [public, ws1]
//	vertices:
//	  - id: alice
//	    visibility: public
//	    concept_type: person
//	    properties:
//	      - {name: age, value: 34, visibility: public}
//	edges:
//	  - {id: e1, out: alice, in: bob, label: knows, visibility: public}
//	hidden:
//	  - {edge: e1, visibility: ws1}
package fixture

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// Property is one property cell of a fixture element.
type Property struct {
	Key        string         `yaml:"key,omitempty"`
	Name       string         `yaml:"name"`
	Value      any            `yaml:"value"`
	Visibility string         `yaml:"visibility,omitempty"`
	Metadata   map[string]any `yaml:"metadata,omitempty"`
}

// ExtendedData is one column of an extended data row.
type ExtendedData struct {
	Table      string `yaml:"table"`
	Row        string `yaml:"row"`
	Column     string `yaml:"column"`
	Key        string `yaml:"key,omitempty"`
	Value      any    `yaml:"value"`
	Visibility string `yaml:"visibility,omitempty"`
}

// Vertex describes a vertex to create.
type Vertex struct {
	ID          string         `yaml:"id"`
	Visibility  string         `yaml:"visibility,omitempty"`
	ConceptType string         `yaml:"concept_type,omitempty"`
	Properties  []Property     `yaml:"properties,omitempty"`
	Extended    []ExtendedData `yaml:"extended,omitempty"`
}

// Edge describes an edge to create.
type Edge struct {
	ID         string         `yaml:"id"`
	Out        string         `yaml:"out"`
	In         string         `yaml:"in"`
	Label      string         `yaml:"label"`
	Visibility string         `yaml:"visibility,omitempty"`
	Properties []Property     `yaml:"properties,omitempty"`
	Extended   []ExtendedData `yaml:"extended,omitempty"`
}

// HideMark hides one vertex or edge behind a visibility.
type HideMark struct {
	Vertex     string `yaml:"vertex,omitempty"`
	Edge       string `yaml:"edge,omitempty"`
	Visibility string `yaml:"visibility"`
}

// Fixture is a whole graph.
type Fixture struct {
	Authorizations []string   `yaml:"authorizations,omitempty"`
	Vertices       []Vertex   `yaml:"vertices,omitempty"`
	Edges          []Edge     `yaml:"edges,omitempty"`
	Hidden         []HideMark `yaml:"hidden,omitempty"`
}

// Load reads a fixture file with strict parsing.
func Load(path string) (*Fixture, error) {
	// 1. Open File
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes a fixture. Unknown fields are an error.
func Parse(r io.Reader) (*Fixture, error) {
	// 2. Setup Strict Decoder
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	// 3. Decode
	var f Fixture
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML syntax error in fixture: %w", err)
	}

	// 4. Validate
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks ids and edge endpoints.
func (f *Fixture) Validate() error {
	vertices := make(map[string]bool, len(f.Vertices))
	for i, v := range f.Vertices {
		if v.ID == "" {
			return fmt.Errorf("vertex #%d: missing id", i)
		}
		if vertices[v.ID] {
			return fmt.Errorf("vertex %q: duplicate id", v.ID)
		}
		vertices[v.ID] = true
	}
	edges := make(map[string]bool, len(f.Edges))
	for i, e := range f.Edges {
		if e.ID == "" {
			return fmt.Errorf("edge #%d: missing id", i)
		}
		if edges[e.ID] {
			return fmt.Errorf("edge %q: duplicate id", e.ID)
		}
		edges[e.ID] = true
		if e.Label == "" {
			return fmt.Errorf("edge %q: missing label", e.ID)
		}
		if !vertices[e.Out] || !vertices[e.In] {
			return fmt.Errorf("edge %q: unknown endpoint %q -> %q", e.ID, e.Out, e.In)
		}
	}
	for i, h := range f.Hidden {
		switch {
		case (h.Vertex == "") == (h.Edge == ""):
			return fmt.Errorf("hide mark #%d: set exactly one of vertex or edge", i)
		case h.Vertex != "" && !vertices[h.Vertex]:
			return fmt.Errorf("hide mark #%d: unknown vertex %q", i, h.Vertex)
		case h.Edge != "" && !edges[h.Edge]:
			return fmt.Errorf("hide mark #%d: unknown edge %q", i, h.Edge)
		case h.Visibility == "":
			return fmt.Errorf("hide mark #%d: missing visibility", i)
		}
	}
	return nil
}

// Apply registers the fixture authorizations and saves every element into
// eng. The returned authorizations hold every registered label.
func (f *Fixture) Apply(eng *engine.Engine) (visibility.Authorizations, error) {
	auths := eng.CreateAuthorizations(f.Authorizations...)

	for _, v := range f.Vertices {
		b := eng.PrepareVertex(v.ID, visibility.Visibility(v.Visibility), v.ConceptType)
		addContent(&b.ElementBuilder, v.Properties, v.Extended)
		if _, err := b.Save(auths); err != nil {
			return auths, fmt.Errorf("vertex %q: %w", v.ID, err)
		}
	}
	for _, e := range f.Edges {
		b := eng.PrepareEdge(e.ID, e.Out, e.In, e.Label, visibility.Visibility(e.Visibility))
		addContent(&b.ElementBuilder, e.Properties, e.Extended)
		if _, err := b.Save(auths); err != nil {
			return auths, fmt.Errorf("edge %q: %w", e.ID, err)
		}
	}
	for _, h := range f.Hidden {
		var err error
		if h.Vertex != "" {
			err = eng.MarkVertexHidden(h.Vertex, visibility.Visibility(h.Visibility), auths)
		} else {
			err = eng.MarkEdgeHidden(h.Edge, visibility.Visibility(h.Visibility), auths)
		}
		if err != nil {
			return auths, fmt.Errorf("hide mark: %w", err)
		}
	}
	return auths, nil
}

func addContent(b *engine.ElementBuilder, props []Property, extended []ExtendedData) {
	for _, p := range props {
		var md core.Metadata
		for _, k := range slices.Sorted(maps.Keys(p.Metadata)) {
			md.Add(k, p.Metadata[k], "")
		}
		b.AddPropertyValue(p.Key, p.Name, p.Value, md, visibility.Visibility(p.Visibility))
	}
	for _, d := range extended {
		b.AddExtendedData(d.Table, d.Row, d.Column, d.Key, d.Value, visibility.Visibility(d.Visibility))
	}
}
