package engine

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// EventKind identifies what changed.
type EventKind uint8

const (
	EventAddVertex EventKind = iota + 1
	EventAddEdge
	EventAddProperty
	EventDeleteProperty
	EventSoftDeleteProperty
	EventMarkPropertyHidden
	EventMarkPropertyVisible
	EventAddExtendedData
	EventDeleteExtendedData
	EventDeleteVertex
	EventDeleteEdge
	EventSoftDeleteVertex
	EventSoftDeleteEdge
	EventMarkHiddenVertex
	EventMarkVisibleVertex
	EventMarkHiddenEdge
	EventMarkVisibleEdge
)

var eventNames = [...]string{
	EventAddVertex:           "add_vertex",
	EventAddEdge:             "add_edge",
	EventAddProperty:         "add_property",
	EventDeleteProperty:      "delete_property",
	EventSoftDeleteProperty:  "soft_delete_property",
	EventMarkPropertyHidden:  "mark_property_hidden",
	EventMarkPropertyVisible: "mark_property_visible",
	EventAddExtendedData:     "add_extended_data",
	EventDeleteExtendedData:  "delete_extended_data",
	EventDeleteVertex:        "delete_vertex",
	EventDeleteEdge:          "delete_edge",
	EventSoftDeleteVertex:    "soft_delete_vertex",
	EventSoftDeleteEdge:      "soft_delete_edge",
	EventMarkHiddenVertex:    "mark_hidden_vertex",
	EventMarkVisibleVertex:   "mark_visible_vertex",
	EventMarkHiddenEdge:      "mark_hidden_edge",
	EventMarkVisibleEdge:     "mark_visible_edge",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) && eventNames[k] != "" {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event describes one change. Only the fields relevant to Kind are set.
type Event struct {
	Kind        EventKind
	ElementType core.ElementType
	ElementID   string
	Timestamp   int64

	Property         core.PropertyKey
	HiddenVisibility visibility.Visibility
	ExtendedData     core.ExtendedDataRowID
}

// Listener receives events synchronously, on the goroutine that made the
// change, after the change is in the mutation log.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

// ListenerID identifies a registration made with AddListener.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	l  Listener
}

// AddListener registers l and returns an id for RemoveListener.
func (e *Engine) AddListener(l Listener) ListenerID {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()

	e.nextListenerID++
	id := e.nextListenerID
	e.listeners = append(e.listeners, listenerEntry{id: id, l: l})
	return id
}

// RemoveListener unregisters a listener. Unknown ids are ignored.
func (e *Engine) RemoveListener(id ListenerID) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()

	for i, entry := range e.listeners {
		if entry.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *Engine) fire(ev Event) {
	e.listenersMu.RLock()
	listeners := e.listeners
	e.listenersMu.RUnlock()

	for _, entry := range listeners {
		entry.l.OnEvent(ev)
	}
}
