package engine

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// newTestEngine opens an engine whose clock starts at 1000 and advances by
// one millisecond per timestamp.
func newTestEngine(t *testing.T, mutate ...func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Name = t.Name()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Now = func() time.Time { return time.UnixMilli(1000) }
	for _, m := range mutate {
		m(&opts)
	}
	eng, err := Open(opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func mustSaveVertex(t *testing.T, eng *Engine, id string, vis visibility.Visibility, auths visibility.Authorizations) *Vertex {
	t.Helper()
	v, err := eng.PrepareVertex(id, vis, "").Save(auths)
	if err != nil {
		t.Fatalf("save vertex %s: %v", id, err)
	}
	return v
}

func mustSaveEdge(t *testing.T, eng *Engine, id, out, in, label string, auths visibility.Authorizations) *Edge {
	t.Helper()
	e, err := eng.PrepareEdge(id, out, in, label, "").Save(auths)
	if err != nil {
		t.Fatalf("save edge %s: %v", id, err)
	}
	return e
}

// eventRecorder collects events in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *eventRecorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// recordingIndex records notifications as "op:id" strings and fails the
// call named by failOn.
type recordingIndex struct {
	NopSearchIndex

	mu     sync.Mutex
	calls  []string
	failOn string
}

var errIndexDown = errors.New("index down")

func (r *recordingIndex) record(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if call == r.failOn {
		return errIndexDown
	}
	return nil
}

func (r *recordingIndex) AddElement(el *core.ElementState) error {
	return r.record("add:" + el.ID)
}

func (r *recordingIndex) UpdateElement(el *core.ElementState) error {
	return r.record("update:" + el.ID)
}

func (r *recordingIndex) DeleteElement(_ core.ElementType, id string) error {
	return r.record("delete:" + id)
}

func (r *recordingIndex) MarkElementHidden(_ core.ElementType, id string, _ visibility.Visibility) error {
	return r.record("hide:" + id)
}

func (r *recordingIndex) MarkElementVisible(_ core.ElementType, id string, _ visibility.Visibility) error {
	return r.record("unhide:" + id)
}

func (r *recordingIndex) DeleteProperty(_ core.ElementType, id string, prop core.PropertyKey) error {
	return r.record("delete_property:" + id + ":" + prop.Name)
}

func (r *recordingIndex) AddElementExtendedData(rows []core.ExtendedDataRow) error {
	for _, row := range rows {
		if err := r.record("add_extended:" + row.ID.ElementID + ":" + row.ID.RowID); err != nil {
			return err
		}
	}
	return nil
}

func (r *recordingIndex) DeleteExtendedData(row core.ExtendedDataRowID, _, _ string, _ visibility.Visibility) error {
	return r.record("delete_extended:" + row.ElementID + ":" + row.RowID)
}

func (r *recordingIndex) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
