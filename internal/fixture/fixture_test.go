package fixture

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

func openEngine(t *testing.T) *engine.Engine {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := engine.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestLoad(t *testing.T) {
	f, err := Load("testdata/social.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"public", "hr", "ws1"}, f.Authorizations)
	require.Len(t, f.Vertices, 4)
	require.Len(t, f.Edges, 5)

	want := Vertex{
		ID:          "alice",
		Visibility:  "public",
		ConceptType: "person",
		Properties: []Property{
			{Name: "name", Value: "Alice", Visibility: "public"},
			{Name: "age", Value: 34, Visibility: "public", Metadata: map[string]any{"source": "import"}},
			{Name: "salary", Value: 5200, Visibility: "hr"},
		},
		Extended: []ExtendedData{{Table: "visits", Row: "r1", Column: "city", Value: "rome", Visibility: "public"}},
	}
	if diff := cmp.Diff(want, f.Vertices[0]); diff != "" {
		t.Errorf("vertex mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []HideMark{{Edge: "e5", Visibility: "ws1"}}, f.Hidden)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "vertices:\n  - id: a\n    colour: red\n"},
		{"missing id", "vertices:\n  - visibility: x\n"},
		{"duplicate vertex", "vertices:\n  - id: a\n  - id: a\n"},
		{"unknown endpoint", "vertices:\n  - id: a\nedges:\n  - {id: e, out: a, in: b, label: x}\n"},
		{"missing label", "vertices:\n  - id: a\nedges:\n  - {id: e, out: a, in: a}\n"},
		{"hide both", "vertices:\n  - id: a\nhidden:\n  - {vertex: a, edge: a, visibility: x}\n"},
		{"hide without visibility", "vertices:\n  - id: a\nhidden:\n  - {vertex: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}

	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err, "an empty fixture is valid")
	assert.Empty(t, f.Vertices)
}

func TestApply(t *testing.T) {
	f, err := Load("testdata/social.yaml")
	require.NoError(t, err)
	eng := openEngine(t)

	auths, err := f.Apply(eng)
	require.NoError(t, err)
	assert.Equal(t, []string{"hr", "public", "ws1"}, auths.Labels())

	public := visibility.NewAuthorizations("public")
	alice, err := eng.GetVertex("alice", core.FetchHintsAll, public)
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "person", alice.ConceptType())
	assert.Equal(t, 34, alice.PropertyValue("age"))
	assert.Nil(t, alice.PropertyValue("salary"), "hr property readable with public")

	age, err := alice.Property(engine.DefaultPropertyKey, "age", "public")
	require.NoError(t, err)
	source, ok := age.Metadata.Value("source")
	assert.True(t, ok)
	assert.Equal(t, "import", source)

	rows, err := eng.GetExtendedData(engine.VertexRef("alice"), "visits", public)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	dave, err := eng.GetVertex("dave", core.FetchHintsAll, public)
	require.NoError(t, err)
	assert.Nil(t, dave)

	e5, err := eng.GetEdge("e5", core.FetchHintsAll, auths)
	require.NoError(t, err)
	assert.Nil(t, e5, "hide mark not applied")
	e5, err = eng.GetEdge("e5", core.FetchHintsAll, public)
	require.NoError(t, err)
	assert.NotNil(t, e5)
}

func TestApplyPaths(t *testing.T) {
	f, err := Load("testdata/social.yaml")
	require.NoError(t, err)
	eng := openEngine(t)
	auths, err := f.Apply(eng)
	require.NoError(t, err)

	paths, err := eng.FindPaths(engine.FindPathOptions{SourceVertexID: "alice", DestVertexID: "carol", MaxHops: 2}, auths)
	require.NoError(t, err)
	assert.Equal(t, []engine.Path{{"alice", "bob", "carol"}, {"alice", "dave", "carol"}}, paths)

	paths, err = eng.FindPaths(engine.FindPathOptions{SourceVertexID: "alice", DestVertexID: "carol", MaxHops: 2}, visibility.NewAuthorizations("public"))
	require.NoError(t, err)
	assert.Equal(t, []engine.Path{{"alice", "bob", "carol"}, {"alice", "carol"}}, paths)
}
