package engine

import (
	"fmt"

	"github.com/sanonone/kektorgraph/pkg/core"
	"github.com/sanonone/kektorgraph/pkg/visibility"
)

// lookupProperty reads the element with hidden properties included and
// finds prop among the properties readable with auths. A nil state means
// the element is absent for the caller.
func (e *Engine) lookupProperty(ref ElementRef, prop core.PropertyKey, auths visibility.Authorizations) (*core.ElementState, bool, error) {
	if err := e.checkAuthorizations(auths); err != nil {
		return nil, false, err
	}
	state, err := e.project(ref.Type, ref.ID, core.FetchHintsAllIncludingHidden, core.Latest, auths)
	if err != nil || state == nil {
		return nil, false, err
	}
	_, err = state.FindProperty(prop)
	return state, err == nil, nil
}

// DeleteProperty hard-deletes a property of an element, erasing its
// history. The element being unreadable is a no-op; the property being
// absent is a *core.NotFoundError.
func (e *Engine) DeleteProperty(ref ElementRef, prop core.PropertyKey, auths visibility.Authorizations) error {
	return e.removeProperty(ref, prop, false, auths)
}

// SoftDeleteProperty tombstones a property of an element at the current
// time. Reads at an earlier end time still return it.
func (e *Engine) SoftDeleteProperty(ref ElementRef, prop core.PropertyKey, auths visibility.Authorizations) error {
	return e.removeProperty(ref, prop, true, auths)
}

func (e *Engine) removeProperty(ref ElementRef, prop core.PropertyKey, soft bool, auths visibility.Authorizations) error {
	state, found, err := e.lookupProperty(ref, prop, auths)
	if err != nil || state == nil {
		return err
	}
	if !found {
		return fmt.Errorf("delete property of %s %q: %w", ref.Type, ref.ID, &core.NotFoundError{What: "property", ID: prop.String()})
	}

	ts := e.clock.Next()
	var (
		m    core.Mutation = core.DeletePropertyMutation{Time: ts, Property: prop}
		kind               = EventDeleteProperty
	)
	if soft {
		m, kind = core.SoftDeletePropertyMutation{Time: ts, Property: prop}, EventSoftDeleteProperty
	}
	if !e.appendExisting(ref.Type, ref.ID, m) {
		return nil
	}

	var idxErr error
	if err := e.index.DeleteProperty(ref.Type, ref.ID, prop); err != nil {
		idxErr = e.indexFailed("delete_property", err)
	}
	e.fire(Event{Kind: kind, ElementType: ref.Type, ElementID: ref.ID, Timestamp: ts, Property: prop})
	return idxErr
}

// MarkPropertyHidden hides one property from readers whose authorizations
// satisfy hidden. It reports false, without error, when the element or the
// property cannot be found; nothing is written and no event fires then.
func (e *Engine) MarkPropertyHidden(ref ElementRef, prop core.PropertyKey, hidden visibility.Visibility, auths visibility.Authorizations) (bool, error) {
	return e.markProperty(ref, prop, hidden, true, auths)
}

// MarkPropertyVisible removes a hide mark from one property. Like
// MarkPropertyHidden it is a no-op when the property cannot be found.
func (e *Engine) MarkPropertyVisible(ref ElementRef, prop core.PropertyKey, hidden visibility.Visibility, auths visibility.Authorizations) (bool, error) {
	return e.markProperty(ref, prop, hidden, false, auths)
}

func (e *Engine) markProperty(ref ElementRef, prop core.PropertyKey, hidden visibility.Visibility, hide bool, auths visibility.Authorizations) (bool, error) {
	state, found, err := e.lookupProperty(ref, prop, auths)
	if err != nil || state == nil || !found {
		return false, err
	}

	ts := e.clock.Next()
	var m core.Mutation = core.MarkPropertyVisibleMutation{Time: ts, Property: prop, HiddenVisibility: hidden}
	if hide {
		m = core.MarkPropertyHiddenMutation{Time: ts, Property: prop, HiddenVisibility: hidden}
	}
	if !e.appendExisting(ref.Type, ref.ID, m) {
		return false, nil
	}
	return true, e.indexPropertyMarks(state, []core.Mutation{m})
}
