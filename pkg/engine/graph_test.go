package engine

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

func TestVertexVisibility(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("public")
	mustSaveVertex(t, eng, "v1", "public", auths)

	v, err := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}
	if v == nil {
		t.Fatal("vertex should be readable with {public}")
	}

	v, err = eng.GetVertex("v1", core.FetchHintsAll, visibility.NewAuthorizations())
	if err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}
	if v != nil {
		t.Error("vertex should not be readable without authorizations")
	}

	missing, err := eng.GetVertex("nope", core.FetchHintsAll, auths)
	if err != nil || missing != nil {
		t.Errorf("missing vertex: got %v, %v", missing, err)
	}
}

func TestUnknownAuthorizations(t *testing.T) {
	eng := newTestEngine(t)
	eng.CreateAuthorizations("public")

	_, err := eng.GetVertex("v1", core.FetchHintsAll, visibility.NewAuthorizations("public", "secret"))
	if !IsSecurityError(err) {
		t.Fatalf("expected SecurityError, got %v", err)
	}
	var se *SecurityError
	if errors.As(err, &se) && !slices.Equal(se.Labels, []string{"secret"}) {
		t.Errorf("unexpected labels %v", se.Labels)
	}

	_, err = eng.PrepareVertex("v1", "", "").Save(visibility.NewAuthorizations("secret"))
	if !IsSecurityError(err) {
		t.Errorf("Save should fail with SecurityError, got %v", err)
	}
	if got := eng.KnownAuthorizations(); !slices.Equal(got, []string{"public"}) {
		t.Errorf("KnownAuthorizations = %v", got)
	}
}

func TestPointInTimeProperty(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("public")

	b := eng.PrepareVertex("v1", "public", "person")
	b.AddPropertyValue("k", "age", 30, core.Metadata{}, "public")
	saved, err := b.Save(auths)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	before := saved.Timestamp()

	age := core.PropertyKey{Key: "k", Name: "age", Visibility: "public"}
	if err := eng.SoftDeleteProperty(VertexRef("v1"), age, auths); err != nil {
		t.Fatalf("SoftDeleteProperty failed: %v", err)
	}

	past, err := eng.GetVertexAt("v1", core.FetchHintsAll, before, auths)
	if err != nil || past == nil {
		t.Fatalf("GetVertexAt: %v, %v", past, err)
	}
	if got := past.PropertyValue("age"); got != 30 {
		t.Errorf("age before soft delete = %v, want 30", got)
	}

	now, err := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if err != nil || now == nil {
		t.Fatalf("GetVertex: %v, %v", now, err)
	}
	if got := now.PropertyValue("age"); got != nil {
		t.Errorf("age after soft delete = %v, want nothing", got)
	}
	if now.ConceptType() != "person" {
		t.Errorf("concept type = %q", now.ConceptType())
	}
}

func TestHiddenEdge(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("ws1")
	mustSaveVertex(t, eng, "v1", "", auths)
	mustSaveVertex(t, eng, "v2", "", auths)
	mustSaveEdge(t, eng, "e1", "v1", "v2", "knows", auths)

	if err := eng.MarkEdgeHidden("e1", "ws1", auths); err != nil {
		t.Fatalf("MarkEdgeHidden failed: %v", err)
	}

	e, err := eng.GetEdge("e1", core.FetchHintsAll, auths)
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Error("hidden edge returned without IncludeHidden")
	}
	v1, _ := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if ids, _ := v1.EdgeIDs(core.DirectionBoth); len(ids) != 0 {
		t.Errorf("hidden edge listed on vertex: %v", ids)
	}

	e, err = eng.GetEdge("e1", core.FetchHintsAllIncludingHidden, auths)
	if err != nil || e == nil {
		t.Fatalf("hidden edge not returned with IncludeHidden: %v", err)
	}
	if hidden, _ := e.IsHidden(); !hidden {
		t.Error("IsHidden should be true")
	}

	// Readers that cannot see the hide mark still see the edge.
	e, _ = eng.GetEdge("e1", core.FetchHintsAll, visibility.NewAuthorizations())
	if e == nil {
		t.Error("hide mark must only apply to readers satisfying it")
	}

	if err := eng.MarkEdgeVisible("e1", "ws1", auths); err != nil {
		t.Fatalf("MarkEdgeVisible failed: %v", err)
	}
	e, _ = eng.GetEdge("e1", core.FetchHintsAll, auths)
	if e == nil {
		t.Fatal("edge should be visible again")
	}
	if len(e.HiddenVisibilities()) != 0 {
		t.Errorf("hidden visibilities left: %v", e.HiddenVisibilities())
	}
}

func propertyNames(el Element) []string {
	var names []string
	for _, p := range el.Properties() {
		names = append(names, p.Name)
	}
	return names
}

func TestSaveRoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()

	b := eng.PrepareVertex("v1", "", "")
	b.SetProperty("name", "alice", "")
	b.SetProperty("age", 30, "")
	v, err := b.Save(auths)
	if err != nil {
		t.Fatal(err)
	}

	steps := []func(*VertexBuilder){
		func(b *VertexBuilder) { b.SetProperty("age", 31, "") },
		func(b *VertexBuilder) { b.DeleteProperty(DefaultPropertyKey, "name", "") },
		func(b *VertexBuilder) { b.SetProperty("city", "rome", "") },
		func(b *VertexBuilder) {
			b.SetProperty("tmp", true, "")
			b.SoftDeleteProperty(DefaultPropertyKey, "tmp", "")
		},
	}
	for i, step := range steps {
		b := v.PrepareMutation()
		step(b)
		if v, err = b.Save(auths); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	got, err := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if err != nil || got == nil {
		t.Fatalf("GetVertex: %v", err)
	}
	if names := propertyNames(got); !slices.Equal(names, []string{"age", "city"}) {
		t.Errorf("properties = %v, want [age city]", names)
	}
	if got.PropertyValue("age") != 31 {
		t.Errorf("age = %v", got.PropertyValue("age"))
	}
	if _, err := got.Property(DefaultPropertyKey, "name", ""); !core.IsNotFound(err) {
		t.Errorf("deleted property lookup: %v", err)
	}
}

func TestSaveExistingAppendsOnlyChanges(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("a")

	mustSaveVertex(t, eng, "v1", "", auths)
	mustSaveVertex(t, eng, "v1", "", auths)
	row, _ := eng.vertices.Get("v1")
	if row.Len() != 3 {
		t.Fatalf("want 2 creation mutations and 1 timestamp bump, got %d", row.Len())
	}

	mustSaveVertex(t, eng, "v1", "a", auths)
	if row.Len() != 5 {
		t.Fatalf("visibility change should append 2 mutations, log has %d", row.Len())
	}
	v, _ := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if v.Visibility() != "a" {
		t.Errorf("visibility = %q", v.Visibility())
	}
}

func TestEdgeCreationMutations(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	for _, id := range []string{"v1", "v2", "v3"} {
		mustSaveVertex(t, eng, id, "", auths)
	}
	e := mustSaveEdge(t, eng, "e1", "v1", "v2", "knows", auths)

	row, _ := eng.edges.Get("e1")
	ms := row.Mutations()
	if len(ms) != 4 {
		t.Fatalf("edge creation should append 4 mutations, got %d", len(ms))
	}
	for i := 1; i < len(ms); i++ {
		if ms[i].Timestamp() <= ms[i-1].Timestamp() {
			t.Errorf("timestamps not strictly increasing: %d then %d", ms[i-1].Timestamp(), ms[i].Timestamp())
		}
	}
	created := ms[len(ms)-1].Timestamp()

	mustSaveEdge(t, eng, "e1", "v1", "v2", "knows", auths)
	if row.Len() != 5 {
		t.Errorf("unchanged endpoints should only bump the timestamp, log has %d", row.Len())
	}

	b := e.PrepareMutation()
	b.SetVertexIDs("v1", "v3")
	if _, err := b.Save(auths); err != nil {
		t.Fatal(err)
	}

	v2, _ := eng.GetVertex("v2", core.FetchHintsAll, auths)
	if ids, _ := v2.EdgeIDs(core.DirectionBoth); len(ids) != 0 {
		t.Errorf("v2 still lists %v", ids)
	}
	v3, _ := eng.GetVertex("v3", core.FetchHintsAll, auths)
	if ids, _ := v3.EdgeIDs(core.DirectionIn); !slices.Equal(ids, []string{"e1"}) {
		t.Errorf("v3 in edges = %v", ids)
	}

	old, err := eng.GetEdgeAt("e1", core.FetchHintsAll, created, auths)
	if err != nil || old == nil {
		t.Fatalf("GetEdgeAt: %v", err)
	}
	if old.InVertexID() != "v2" {
		t.Errorf("edge at creation time points to %s", old.InVertexID())
	}
	v2Then, _ := eng.GetVertexAt("v2", core.FetchHintsAll, created, auths)
	if ids, _ := v2Then.EdgeIDs(core.DirectionIn); !slices.Equal(ids, []string{"e1"}) {
		t.Errorf("v2 in edges at creation time = %v", ids)
	}
}

func TestEdgePreconditions(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()

	_, err := eng.PrepareEdge("e1", "", "v2", "knows", "").Save(auths)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing endpoint: got %v", err)
	}
	_, err = eng.PrepareEdge("e1", "v1", "v2", "", "").Save(auths)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing label: got %v", err)
	}
}

func TestVertexEdgeAccessors(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	for _, id := range []string{"v1", "v2", "v3"} {
		mustSaveVertex(t, eng, id, "", auths)
	}
	mustSaveEdge(t, eng, "e1", "v1", "v2", "knows", auths)
	mustSaveEdge(t, eng, "e2", "v3", "v1", "likes", auths)

	v1, _ := eng.GetVertex("v1", core.FetchHintsAll, auths)
	cases := []struct {
		dir    core.Direction
		labels []string
		want   []string
	}{
		{core.DirectionOut, nil, []string{"e1"}},
		{core.DirectionIn, nil, []string{"e2"}},
		{core.DirectionBoth, nil, []string{"e1", "e2"}},
		{core.DirectionBoth, []string{"likes"}, []string{"e2"}},
	}
	for _, c := range cases {
		got, err := v1.EdgeIDs(c.dir, c.labels...)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, c.want) {
			t.Errorf("EdgeIDs(%s, %v) = %v, want %v", c.dir, c.labels, got, c.want)
		}
	}

	adjacent, _ := v1.AdjacentVertexIDs(core.DirectionBoth)
	if !slices.Equal(adjacent, []string{"v2", "v3"}) {
		t.Errorf("AdjacentVertexIDs = %v", adjacent)
	}

	infos, _ := v1.EdgeInfos(core.DirectionBoth)
	if infos[1].Direction != core.DirectionIn || infos[1].OtherVertexID != "v3" {
		t.Errorf("unexpected edge info %+v", infos[1])
	}

	edges, err := eng.GetVertexEdges("v1", core.DirectionOut, core.FetchHintsAll, auths)
	if err != nil || len(edges) != 1 || edges[0].OtherVertexID("v1") != "v2" {
		t.Errorf("GetVertexEdges = %v, %v", edges, err)
	}
}

func TestFetchHintGating(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	b := eng.PrepareVertex("v1", "", "")
	b.SetProperty("name", "alice", "")
	b.Save(auths)

	v, _ := eng.GetVertex("v1", core.FetchHintsNone, auths)
	if _, err := v.EdgeIDs(core.DirectionBoth); !core.IsMissingFetchHint(err) {
		t.Errorf("EdgeIDs without IncludeEdgeRefs: %v", err)
	}
	if _, err := v.AdjacentVertexIDs(core.DirectionBoth); !core.IsMissingFetchHint(err) {
		t.Errorf("AdjacentVertexIDs without IncludeEdgeRefs: %v", err)
	}
	if _, err := v.ExtendedDataTableNames(); !core.IsMissingFetchHint(err) {
		t.Errorf("ExtendedDataTableNames without hint: %v", err)
	}
	if _, err := v.Property(DefaultPropertyKey, "name", ""); !core.IsMissingFetchHint(err) {
		t.Errorf("Property without hint: %v", err)
	}
	if len(v.Properties()) != 0 {
		t.Errorf("properties materialized without hint: %v", v.Properties())
	}
}

func TestAlterPropertyVisibility(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("ws1")
	public := visibility.NewAuthorizations()

	b := eng.PrepareVertex("v1", "", "")
	b.AddPropertyValue("k", "age", 30, core.NewMetadata(core.MetadataEntry{Key: "source", Value: "import"}), "")
	v, err := b.Save(auths)
	if err != nil {
		t.Fatal(err)
	}

	age := core.PropertyKey{Key: "k", Name: "age"}
	mb := v.PrepareMutation()
	mb.SetPropertyMetadata(age, core.MetadataEntry{Key: "reviewed", Value: true})
	mb.AlterPropertyVisibility(age, "ws1")
	if _, err := mb.Save(auths); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := eng.GetVertex("v1", core.FetchHintsAll, public)
	if got.PropertyValue("age") != nil {
		t.Error("property should have moved out of the public visibility")
	}

	got, _ = eng.GetVertex("v1", core.FetchHintsAll, auths)
	p, err := got.Property("k", "age", "ws1")
	if err != nil {
		t.Fatalf("moved property not found: %v", err)
	}
	if p.Value != 30 {
		t.Errorf("value = %v", p.Value)
	}
	for _, key := range []string{"source", "reviewed"} {
		if _, ok := p.Metadata.Value(key); !ok {
			t.Errorf("metadata %q lost", key)
		}
	}
	if len(got.Properties()) != 1 {
		t.Errorf("expected exactly one age cell, got %v", got.Properties())
	}
}

func TestAlterationOfMissingProperty(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	v := mustSaveVertex(t, eng, "v1", "", auths)

	b := v.PrepareMutation()
	b.SetPropertyMetadata(core.PropertyKey{Name: "nope"}, core.MetadataEntry{Key: "x", Value: 1})
	if _, err := b.Save(auths); !core.IsNotFound(err) {
		t.Errorf("metadata on missing property: %v", err)
	}

	b = v.PrepareMutation()
	b.AlterPropertyVisibility(core.PropertyKey{Name: "nope"}, "a")
	if _, err := b.Save(auths); !core.IsNotFound(err) {
		t.Errorf("alter visibility of missing property: %v", err)
	}

	err := eng.DeleteProperty(VertexRef("v1"), core.PropertyKey{Name: "nope"}, auths)
	if !core.IsNotFound(err) {
		t.Errorf("delete missing property: %v", err)
	}

	ok, err := eng.MarkPropertyHidden(VertexRef("v1"), core.PropertyKey{Name: "nope"}, "a", auths)
	if ok || err != nil {
		t.Errorf("hiding a missing property should be a no-op, got %v, %v", ok, err)
	}
}

func TestMarkPropertyHidden(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("ws1")
	rec := &eventRecorder{}
	eng.AddListener(rec)

	b := eng.PrepareVertex("v1", "", "")
	b.SetProperty("name", "alice", "")
	b.Save(auths)
	name := core.PropertyKey{Name: "name"}

	ok, err := eng.MarkPropertyHidden(VertexRef("v1"), name, "ws1", auths)
	if !ok || err != nil {
		t.Fatalf("MarkPropertyHidden = %v, %v", ok, err)
	}
	v, _ := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if v.PropertyValue("name") != nil {
		t.Error("hidden property returned")
	}
	v, _ = eng.GetVertex("v1", core.FetchHintsAllIncludingHidden, auths)
	if v.PropertyValue("name") != "alice" {
		t.Error("hidden property missing with IncludeHidden")
	}

	ok, err = eng.MarkPropertyVisible(VertexRef("v1"), name, "ws1", auths)
	if !ok || err != nil {
		t.Fatalf("MarkPropertyVisible = %v, %v", ok, err)
	}
	v, _ = eng.GetVertex("v1", core.FetchHintsAll, auths)
	if v.PropertyValue("name") != "alice" {
		t.Error("property should be visible again")
	}
	if rec.count(EventMarkPropertyHidden) != 1 || rec.count(EventMarkPropertyVisible) != 1 {
		t.Errorf("events = %v", rec.kinds())
	}
}

func TestNewValueAfterHiddenProperty(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("ws1")

	b := eng.PrepareVertex("v1", "", "")
	b.SetProperty("age", 30, "")
	v, err := b.Save(auths)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := eng.MarkPropertyHidden(VertexRef("v1"), core.PropertyKey{Name: "age"}, "ws1", auths); !ok || err != nil {
		t.Fatalf("MarkPropertyHidden = %v, %v", ok, err)
	}

	upd := v.PrepareMutation()
	upd.SetProperty("age", 31, "")
	if _, err := upd.Save(auths); err != nil {
		t.Fatal(err)
	}
	got, _ := eng.GetVertex("v1", core.FetchHintsAll, auths)
	if got.PropertyValue("age") != 31 {
		t.Errorf("age = %v, want 31: the hide mark predates the new value", got.PropertyValue("age"))
	}
}

func TestPrepareMutationOfDeletedVertex(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	v := mustSaveVertex(t, eng, "v1", "", auths)

	if err := eng.DeleteVertex("v1", auths); err != nil {
		t.Fatal(err)
	}
	if _, err := v.PrepareMutation().Save(auths); !core.IsNotFound(err) {
		t.Errorf("mutating a deleted vertex: %v", err)
	}
}

func TestGeneratedIDs(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()

	v, err := eng.PrepareVertex("", "", "").Save(auths)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(v.ID()); err != nil {
		t.Errorf("generated id %q is not a UUID: %v", v.ID(), err)
	}
	e, err := eng.PrepareEdge("", v.ID(), v.ID(), "self", "").Save(auths)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID() == "" || e.ID() == v.ID() {
		t.Errorf("unexpected edge id %q", e.ID())
	}
}

func TestMalformedVisibilityFailsOnRead(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()

	if _, err := eng.PrepareVertex("v1", "a&", "").Save(auths); err != nil {
		t.Fatalf("malformed visibility should be stored: %v", err)
	}
	_, err := eng.GetVertex("v1", core.FetchHintsAll, auths)
	var pe *visibility.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestVerticesListing(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations("a")
	mustSaveVertex(t, eng, "v2", "", auths)
	mustSaveVertex(t, eng, "v1", "", auths)
	mustSaveVertex(t, eng, "secret", "a", auths)

	all, err := eng.Vertices(core.FetchHintsNone, visibility.NewAuthorizations())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, v := range all {
		ids = append(ids, v.ID())
	}
	if !slices.Equal(ids, []string{"v1", "v2"}) {
		t.Errorf("Vertices = %v", ids)
	}

	some, _ := eng.GetVertices([]string{"secret", "missing", "v2"}, core.FetchHintsNone, auths)
	if len(some) != 2 || some[0].ID() != "secret" {
		t.Errorf("GetVertices returned %d vertices", len(some))
	}
}

func TestTruncateAndDrop(t *testing.T) {
	idx := &recordingIndex{}
	eng := newTestEngine(t, func(o *Options) { o.SearchIndex = idx })
	auths := eng.CreateAuthorizations("a")
	mustSaveVertex(t, eng, "v1", "", auths)
	mustSaveVertex(t, eng, "v2", "", auths)
	mustSaveEdge(t, eng, "e1", "v1", "v2", "knows", auths)
	if err := eng.SetMetadata("schema.version", 2); err != nil {
		t.Fatal(err)
	}

	if err := eng.Truncate(); err != nil {
		t.Fatal(err)
	}
	if vs, _ := eng.Vertices(core.FetchHintsNone, auths); len(vs) != 0 {
		t.Errorf("vertices left after Truncate: %d", len(vs))
	}
	if eng.adjacency.Len() != 0 {
		t.Error("adjacency entries left after Truncate")
	}
	if keys := eng.MetadataKeys(""); len(keys) != 1 {
		t.Errorf("Truncate must keep metadata, got %v", keys)
	}

	if err := eng.Drop(); err != nil {
		t.Fatal(err)
	}
	if keys := eng.MetadataKeys(""); len(keys) != 0 {
		t.Errorf("metadata left after Drop: %v", keys)
	}
	if _, err := eng.GetVertex("v1", core.FetchHintsNone, auths); !IsSecurityError(err) {
		t.Errorf("authorizations should be forgotten after Drop, got %v", err)
	}
}

func TestMetadataStore(t *testing.T) {
	eng := newTestEngine(t)

	type marker struct {
		Version int    `json:"version"`
		Name    string `json:"name"`
	}
	if err := eng.SetMetadata("schema.marker", marker{Version: 3, Name: "graph"}); err != nil {
		t.Fatal(err)
	}
	eng.SetMetadata("schema.flag", true)
	eng.SetMetadata("other", "x")

	var got marker
	found, err := eng.GetMetadata("schema.marker", &got)
	if !found || err != nil {
		t.Fatalf("GetMetadata = %v, %v", found, err)
	}
	if got.Version != 3 || got.Name != "graph" {
		t.Errorf("decoded %+v", got)
	}
	if keys := eng.MetadataKeys("schema."); !slices.Equal(keys, []string{"schema.flag", "schema.marker"}) {
		t.Errorf("MetadataKeys = %v", keys)
	}
	if !eng.RemoveMetadata("other") || eng.RemoveMetadata("other") {
		t.Error("RemoveMetadata should report presence once")
	}
	if err := eng.SetMetadata("", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty key: %v", err)
	}
}

func TestClosedEngine(t *testing.T) {
	eng := newTestEngine(t)
	auths := eng.CreateAuthorizations()
	eng.Close()
	eng.Close()

	if _, err := eng.GetVertex("v1", core.FetchHintsAll, auths); !errors.Is(err, ErrClosed) {
		t.Errorf("read on closed engine: %v", err)
	}
}
